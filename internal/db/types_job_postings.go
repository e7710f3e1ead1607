package db

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobPosting is one row of the job_postings corpus table
type JobPosting struct {
	ID                 uuid.UUID         `json:"id"`
	Title              string            `json:"title"`
	Company            string            `json:"company"`
	Description        string            `json:"description"`
	RequiredExperience float64           `json:"required_experience"`
	Link               *string           `json:"link,omitempty"`
	Fields             map[string]string `json:"fields"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// JobPostingInput is the input for inserting a posting
type JobPostingInput struct {
	ID                 uuid.UUID
	Title              string
	Company            string
	Description        string
	RequiredExperience float64
	Link               string
	Fields             map[string]string
}

// LinkValue returns the link or "" when unset
func (p *JobPosting) LinkValue() string {
	if p.Link == nil {
		return ""
	}
	return *p.Link
}

// nullableLink maps an empty link to NULL so unlinked postings never collide
// on the unique index.
func nullableLink(link string) *string {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil
	}
	return &link
}
