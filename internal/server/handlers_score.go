package server

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/uditb/resumesculpt/internal/server/middleware"
	"github.com/uditb/resumesculpt/internal/types"
)

// Normalizer extracts a structured job description from free text.
type Normalizer interface {
	Normalize(ctx context.Context, rawText string) (*types.JobDescription, error)
}

// Scorer produces ATS scores, detailed and legacy single-number.
type Scorer interface {
	ScoreDetailed(ctx context.Context, resumeYAML string, jd *types.JobDescription) (*types.DetailedScore, error)
	Score(ctx context.Context, resumeYAML string, jd *types.JobDescription) (*types.LegacyScore, error)
}

// handleCalculateATSDetailed scores the stored resume against a job
// description with the full breakdown.
func (s *Server) handleCalculateATSDetailed(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req types.CalculateATSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := s.userService.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !user.HasResume() {
		writeError(w, &ErrNoResume{})
		return
	}

	// Empty job descriptions are rejected here, before any model call
	jd, err := s.normalizer.Normalize(r.Context(), req.JobDesc)
	if err != nil {
		writeError(w, err)
		return
	}

	score, err := s.scorer.ScoreDetailed(r.Context(), *user.ResumeYAML, jd)
	if err != nil {
		s.logger.Error("detailed scoring failed", zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, score)
}

// handleCalculateATS is the superseded single-number scoring endpoint.
func (s *Server) handleCalculateATS(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req types.CalculateATSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := s.userService.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !user.HasResume() {
		writeError(w, &ErrNoResume{})
		return
	}

	jd, err := s.normalizer.Normalize(r.Context(), req.JobDesc)
	if err != nil {
		writeError(w, err)
		return
	}

	score, err := s.scorer.Score(r.Context(), *user.ResumeYAML, jd)
	if err != nil {
		s.logger.Error("legacy scoring failed", zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ats_score": score.Score,
		"reason":    score.Reason,
	})
}
