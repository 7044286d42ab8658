package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uditb/resumesculpt/internal/db"
	"github.com/uditb/resumesculpt/internal/pipeline"
	"github.com/uditb/resumesculpt/internal/quota"
	"github.com/uditb/resumesculpt/internal/server/middleware"
	"github.com/uditb/resumesculpt/internal/types"
)

// Orchestrator runs the full optimization flow.
type Orchestrator interface {
	Run(ctx context.Context, user *db.User, jobDescText, addons string) (*pipeline.Result, error)
}

// QuotaGate checks weekly generation limits.
type QuotaGate interface {
	Check(ctx context.Context, userID uuid.UUID, plan string) (used, limit int, err error)
}

// handleOptimizeResume runs the optimization pipeline for the stored resume
// against the submitted job description. The weekly quota is checked before
// any model call.
func (s *Server) handleOptimizeResume(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req types.OptimizeResumeRequest
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

	if _, _, err := s.quotaGate.Check(r.Context(), user.ID, user.Plan); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.orchestrator.Run(r.Context(), user, req.JobDesc, req.Addons)
	if err != nil {
		s.logger.Error("optimization run failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		writeError(w, err)
		return
	}

	rec := result.Record
	writeJSON(w, http.StatusOK, map[string]any{
		"message":                         "Resume optimized successfully",
		"id":                              rec.ID.String(),
		"job_title":                       rec.JobTitle,
		"original_score":                  rec.OriginalScore,
		"optimized_score":                 rec.OptimizedScore,
		"score_improvement":               rec.ScoreImprovement,
		"match_level":                     rec.MatchLevel,
		"optimized_resume_yaml":           rec.OptimizedYAML,
		"keywords_added":                  rec.KeywordsAdded,
		"improvements_made":               rec.ImprovementsMade,
		"critical_improvements_remaining": result.NewScore.CriticalImprovements,
		"weekly_usage":                    result.WeeklyUsage,
		"weekly_limit":                    quota.LimitFor(user.Plan),
		"created_at":                      rec.CreatedAt,
	})
}

// handleMyOptimizations lists the user's optimization history, newest first.
func (s *Server) handleMyOptimizations(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	records, err := s.dbClient.ListOptimizations(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to list optimizations", zap.Error(err))
		writeError(w, err)
		return
	}
	if records == nil {
		records = []*db.OptimizationRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"optimizations": records,
		"total":         len(records),
	})
}
