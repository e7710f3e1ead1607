package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the corpus in a local SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the database at path and ensures the schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite corpus path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("sqlite corpus: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite corpus: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := initSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite corpus: init schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func initSQLiteSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS job_postings (
		id                  TEXT PRIMARY KEY,
		title               TEXT NOT NULL DEFAULT '',
		company             TEXT NOT NULL DEFAULT '',
		description         TEXT NOT NULL DEFAULT '',
		required_experience REAL NOT NULL DEFAULT 0,
		link                TEXT UNIQUE,
		fields              TEXT NOT NULL DEFAULT '{}',
		created_at          TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// Load returns every posting in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, company, description, required_experience, COALESCE(link, ''), fields
		 FROM job_postings ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite corpus: list postings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []Job
	for rows.Next() {
		var job Job
		var fieldsJSON string
		if err := rows.Scan(&job.ID, &job.Title, &job.Company, &job.Description,
			&job.RequiredExperience, &job.Link, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("sqlite corpus: scan posting: %w", err)
		}
		if err := json.Unmarshal([]byte(fieldsJSON), &job.Fields); err != nil {
			slog.Debug("sqlite corpus: bad fields column", slog.String("id", job.ID), slog.Any("error", err))
		}
		if job.Fields == nil {
			job.Fields = map[string]string{}
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite corpus: iterate postings: %w", err)
	}
	return jobs, nil
}

// Append inserts postings whose link is not already stored.
func (s *SQLiteStore) Append(ctx context.Context, jobs []Job) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite corpus: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO job_postings (id, title, company, description, required_experience, link, fields)
		 VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?)
		 ON CONFLICT DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("sqlite corpus: prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	added := 0
	for _, job := range jobs {
		fieldsJSON, err := json.Marshal(job.Fields)
		if err != nil {
			return 0, fmt.Errorf("sqlite corpus: marshal fields: %w", err)
		}
		id := job.ID
		if id == "" {
			id = JobID(job.Link).String()
		}
		res, err := stmt.ExecContext(ctx, id, job.Title, job.Company, job.Description,
			job.RequiredExperience, job.Link, string(fieldsJSON))
		if err != nil {
			return 0, fmt.Errorf("sqlite corpus: insert posting: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite corpus: commit: %w", err)
	}
	return added, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
