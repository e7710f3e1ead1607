package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Job Posting Methods
// -----------------------------------------------------------------------------

// ListJobPostings returns the whole corpus in insertion order
func (db *DB) ListJobPostings(ctx context.Context) ([]JobPosting, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, company, description, required_experience, link, fields,
		        created_at, updated_at
		 FROM job_postings
		 ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	var postings []JobPosting
	for rows.Next() {
		var p JobPosting
		var fieldsJSON []byte
		if err := rows.Scan(&p.ID, &p.Title, &p.Company, &p.Description,
			&p.RequiredExperience, &p.Link, &fieldsJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		if fieldsJSON != nil {
			_ = json.Unmarshal(fieldsJSON, &p.Fields)
		}
		if p.Fields == nil {
			p.Fields = map[string]string{}
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job postings: %w", err)
	}
	return postings, nil
}

// GetJobPostingByLink retrieves a posting by its link
func (db *DB) GetJobPostingByLink(ctx context.Context, link string) (*JobPosting, error) {
	var p JobPosting
	var fieldsJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, title, company, description, required_experience, link, fields,
		        created_at, updated_at
		 FROM job_postings WHERE link = $1`,
		link,
	).Scan(&p.ID, &p.Title, &p.Company, &p.Description,
		&p.RequiredExperience, &p.Link, &fieldsJSON, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}

	if fieldsJSON != nil {
		_ = json.Unmarshal(fieldsJSON, &p.Fields)
	}
	return &p, nil
}

// InsertJobPostings inserts postings in one transaction, skipping links that
// already exist. It returns the number of rows inserted.
func (db *DB) InsertJobPostings(ctx context.Context, inputs []JobPostingInput) (int, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inserted := 0
	for _, input := range inputs {
		fieldsJSON, err := json.Marshal(input.Fields)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal fields: %w", err)
		}
		id := input.ID
		if id == uuid.Nil {
			id = uuid.New()
		}

		tag, err := tx.Exec(ctx,
			`INSERT INTO job_postings (id, title, company, description, required_experience, link, fields)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT DO NOTHING`,
			id, input.Title, input.Company, input.Description,
			input.RequiredExperience, nullableLink(input.Link), fieldsJSON,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert job posting %q: %w", input.Link, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit job postings: %w", err)
	}
	return inserted, nil
}

// DeleteJobPosting removes a posting by ID
func (db *DB) DeleteJobPosting(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM job_postings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job posting: %w", err)
	}
	return nil
}

// CountJobPostings returns the corpus size
func (db *DB) CountJobPostings(ctx context.Context) (int, error) {
	var n int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM job_postings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count job postings: %w", err)
	}
	return n, nil
}
