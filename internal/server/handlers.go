package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/job-recommender/internal/matching"
	"github.com/jonathan/job-recommender/internal/resume"
	"github.com/jonathan/job-recommender/internal/scraper"
	"github.com/jonathan/job-recommender/internal/upskill"
)

const (
	maxJSONBytes   = 1 << 20
	maxResumeBytes = 5 << 20
)

// ProcessResumeRequest is the JSON form of a resume upload.
type ProcessResumeRequest struct {
	Text string `json:"text"`
}

// ProcessResumeResponse carries the skills and experience found in a resume.
type ProcessResumeResponse struct {
	Skills     []string `json:"skills"`
	Experience int      `json:"experience"`
}

// RecommendJobsRequest is the body of POST /recommend_jobs.
type RecommendJobsRequest struct {
	UserSkills     []string `json:"user_skills" validate:"required"`
	UserExperience *int     `json:"user_experience" validate:"required,gte=0"`
}

// RecommendJobsResponse wraps the ranked rows.
type RecommendJobsResponse struct {
	Recommendations []matching.Recommendation `json:"recommendations"`
}

// UpskillSuggestionsRequest is the body of POST /upskill_suggestions.
type UpskillSuggestionsRequest struct {
	Skills []string `json:"skills" validate:"required"`
}

// UpskillSuggestionsResponse carries the model's free-text answer.
type UpskillSuggestionsResponse struct {
	Suggestions string `json:"suggestions"`
}

// FetchJobsResponse reports how many postings a scrape added.
type FetchJobsResponse struct {
	NewJobsCount int    `json:"new_jobs_count"`
	Message      string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	SkillsKnown int    `json:"skills_known"`
}

// handleProcessResume accepts resume text as JSON {"text": ...}, a multipart
// upload in the "file" field, or a plain text body.
func (s *Server) handleProcessResume(w http.ResponseWriter, r *http.Request) {
	text, err := s.readResume(r)
	if err != nil {
		s.failure(w, r, err, "")
		return
	}

	result := s.engine.ProcessResume(text)
	skills := result.Skills
	if skills == nil {
		skills = []string{}
	}
	s.jsonResponse(w, http.StatusOK, ProcessResumeResponse{
		Skills:     skills,
		Experience: result.ExperienceYears,
	})
}

func (s *Server) handleRecommendJobs(w http.ResponseWriter, r *http.Request) {
	var req RecommendJobsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err, "")
		return
	}

	recs, err := s.engine.Recommend(r.Context(), matching.UserProfile{
		Skills:          req.UserSkills,
		ExperienceYears: *req.UserExperience,
	})
	if err != nil {
		s.failure(w, r, err, "")
		return
	}
	if recs == nil {
		recs = []matching.Recommendation{}
	}
	s.jsonResponse(w, http.StatusOK, RecommendJobsResponse{Recommendations: recs})
}

func (s *Server) handleUpskillSuggestions(w http.ResponseWriter, r *http.Request) {
	var req UpskillSuggestionsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err, "")
		return
	}

	suggestions, err := s.upskill.Suggest(r.Context(), req.Skills)
	if err != nil {
		message := ""
		var genErr *upskill.GenerationError
		if errors.As(err, &genErr) {
			message = fmt.Sprintf("Error generating upskilling suggestions: %v", genErr.Cause)
		}
		s.failure(w, r, err, message)
		return
	}
	s.jsonResponse(w, http.StatusOK, UpskillSuggestionsResponse{Suggestions: suggestions})
}

func (s *Server) handleFetchNewJobs(w http.ResponseWriter, r *http.Request) {
	store, err := s.openStore(r.Context())
	if err != nil {
		s.failure(w, r, err, fmt.Sprintf("Error fetching new jobs: %v", err))
		return
	}
	defer func() { _ = store.Close() }()

	added, err := scraper.Update(r.Context(), s.scraper, store)
	if err != nil {
		s.failure(w, r, err, fmt.Sprintf("Error fetching new jobs: %v", err))
		return
	}

	s.jsonResponse(w, http.StatusOK, FetchJobsResponse{
		NewJobsCount: added,
		Message:      fmt.Sprintf("Successfully fetched and updated %d new job listings.", added),
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		SkillsKnown: s.engine.Catalog().Get().Len(),
	})
}

func (s *Server) readResume(r *http.Request) (string, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil && r.Header.Get("Content-Type") != "" {
		return "", &ErrUnsupportedMediaType{ContentType: r.Header.Get("Content-Type")}
	}

	switch {
	case mediaType == "application/json":
		var req ProcessResumeRequest
		dec := json.NewDecoder(io.LimitReader(r.Body, maxResumeBytes))
		if err := dec.Decode(&req); err != nil {
			return "", &ErrValidation{Field: "body", Message: err.Error()}
		}
		return resume.CleanText(req.Text), nil

	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(maxResumeBytes); err != nil {
			return "", &ErrValidation{Field: "file", Message: err.Error()}
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", &ErrValidation{Field: "file", Message: "missing resume file"}
		}
		defer func() { _ = file.Close() }()
		return resume.ReadText(io.LimitReader(file, maxResumeBytes))

	case mediaType == "", strings.HasPrefix(mediaType, "text/"):
		return resume.ReadText(io.LimitReader(r.Body, maxResumeBytes))

	default:
		return "", &ErrUnsupportedMediaType{ContentType: mediaType}
	}
}

// decodeJSON reads a JSON body into dst and validates it.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}

	if err := s.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ErrValidation{Field: fe.Field(), Message: validationMessage(fe)}
		}
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
