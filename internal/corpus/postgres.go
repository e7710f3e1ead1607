package corpus

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/job-recommender/internal/db"
)

// PostgresStore keeps the corpus in the job_postings table.
type PostgresStore struct {
	db *db.DB
}

// OpenPostgres connects to databaseURL and ensures the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	conn, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := conn.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return &PostgresStore{db: conn}, nil
}

// Load returns every posting.
func (s *PostgresStore) Load(ctx context.Context) ([]Job, error) {
	postings, err := s.db.ListJobPostings(ctx)
	if err != nil {
		return nil, err
	}
	jobs := make([]Job, 0, len(postings))
	for i := range postings {
		jobs = append(jobs, jobFromPosting(&postings[i]))
	}
	return jobs, nil
}

// Append inserts postings whose link is not already stored.
func (s *PostgresStore) Append(ctx context.Context, jobs []Job) (int, error) {
	inputs := make([]db.JobPostingInput, 0, len(jobs))
	for _, job := range jobs {
		inputs = append(inputs, postingInput(job))
	}
	return s.db.InsertJobPostings(ctx, inputs)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func jobFromPosting(p *db.JobPosting) Job {
	return Job{
		ID:                 p.ID.String(),
		Title:              p.Title,
		Company:            p.Company,
		Description:        p.Description,
		RequiredExperience: p.RequiredExperience,
		Link:               p.LinkValue(),
		Fields:             p.Fields,
	}
}

func postingInput(job Job) db.JobPostingInput {
	id, err := uuid.Parse(job.ID)
	if err != nil {
		id = JobID(job.Link)
	}
	return db.JobPostingInput{
		ID:                 id,
		Title:              job.Title,
		Company:            job.Company,
		Description:        job.Description,
		RequiredExperience: job.RequiredExperience,
		Link:               job.Link,
		Fields:             job.Fields,
	}
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*CSVFile)(nil)
)
