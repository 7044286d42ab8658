package db

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account row. The current resume lives on the user
// itself; uploading a new resume replaces it.
type User struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"` // Never serialize to JSON
	FullName         string     `json:"full_name"`
	Plan             string     `json:"plan"`
	ResumeYAML       *string    `json:"-"`
	ResumeFilename   *string    `json:"resume_filename,omitempty"`
	ResumeUploadedAt *time.Time `json:"resume_uploaded_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// HasResume reports whether the user has an uploaded resume on file.
func (u *User) HasResume() bool {
	return u.ResumeYAML != nil && *u.ResumeYAML != ""
}

// OptimizationRecord is one completed optimization run. Append-only.
type OptimizationRecord struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	JobTitle         string    `json:"job_title"`
	JobDescription   string    `json:"job_description"`
	OriginalScore    float64   `json:"original_score"`
	OptimizedScore   float64   `json:"optimized_score"`
	ScoreImprovement float64   `json:"score_improvement"`
	MatchLevel       string    `json:"match_level"`
	OptimizedYAML    string    `json:"optimized_yaml"`
	KeywordsAdded    []string  `json:"keywords_added"`
	ImprovementsMade []string  `json:"improvements_made"`
	CreatedAt        time.Time `json:"created_at"`
}

// UsageCounter tracks generations for one user in one ISO week.
type UsageCounter struct {
	UserID    uuid.UUID `json:"user_id"`
	WeekStart time.Time `json:"week_start"`
	Count     int       `json:"count"`
}
