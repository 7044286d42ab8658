// Package pipeline runs the end-to-end resume optimization flow.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/uditb/resumesculpt/internal/db"
	"github.com/uditb/resumesculpt/internal/quota"
	"github.com/uditb/resumesculpt/internal/types"
)

// Normalizer turns free text into a structured job description.
type Normalizer interface {
	Normalize(ctx context.Context, rawText string) (*types.JobDescription, error)
}

// Scorer produces detailed scores for a resume against a job description.
type Scorer interface {
	ScoreDetailed(ctx context.Context, resumeYAML string, jd *types.JobDescription) (*types.DetailedScore, error)
}

// Optimizer rewrites a resume for a job description.
type Optimizer interface {
	Optimize(ctx context.Context, resumeYAML string, jd *types.JobDescription, addons string) (string, error)
}

// Store persists completed runs together with the usage increment.
type Store interface {
	SaveOptimization(ctx context.Context, rec *db.OptimizationRecord, weekStart time.Time) (*db.OptimizationRecord, int, error)
}

// Result is the outcome of one optimization run.
type Result struct {
	Record        *db.OptimizationRecord
	OriginalScore *types.DetailedScore
	NewScore      *types.DetailedScore
	WeeklyUsage   int
}

// Orchestrator wires the optimization steps together.
type Orchestrator struct {
	normalizer Normalizer
	scorer     Scorer
	optimizer  Optimizer
	store      Store
	logger     *zap.Logger
	now        func() time.Time
}

// NewOrchestrator builds an Orchestrator from its collaborators.
func NewOrchestrator(n Normalizer, s Scorer, o Optimizer, store Store, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		normalizer: n,
		scorer:     s,
		optimizer:  o,
		store:      store,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes the full flow: normalize the job description, score the
// current resume and produce the optimized one in parallel, score the
// optimized resume, then persist the record and bump the weekly counter in
// one transaction. Any failure aborts with nothing persisted.
func (o *Orchestrator) Run(ctx context.Context, user *db.User, jobDescText, addons string) (*Result, error) {
	if !user.HasResume() {
		return nil, fmt.Errorf("user %s has no resume on file", user.ID)
	}
	resumeYAML := *user.ResumeYAML

	jd, err := o.normalizer.Normalize(ctx, jobDescText)
	if err != nil {
		return nil, err
	}

	// The baseline score and the rewrite are independent of each other.
	g, gCtx := errgroup.WithContext(ctx)

	var originalScore *types.DetailedScore
	var optimizedYAML string

	g.Go(func() error {
		score, err := o.scorer.ScoreDetailed(gCtx, resumeYAML, jd)
		if err != nil {
			return fmt.Errorf("baseline scoring failed: %w", err)
		}
		originalScore = score
		return nil
	})

	g.Go(func() error {
		rewritten, err := o.optimizer.Optimize(gCtx, resumeYAML, jd, addons)
		if err != nil {
			return fmt.Errorf("optimization failed: %w", err)
		}
		optimizedYAML = rewritten
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	newScore, err := o.scorer.ScoreDetailed(ctx, optimizedYAML, jd)
	if err != nil {
		return nil, fmt.Errorf("rescoring failed: %w", err)
	}

	keywordsAdded := keywordDiff(
		newScore.KeywordAnalysis.MatchedKeywords,
		originalScore.KeywordAnalysis.MatchedKeywords,
	)
	improvements := improvementMessages(originalScore, newScore, keywordsAdded)

	rec := &db.OptimizationRecord{
		UserID:           user.ID,
		JobTitle:         jd.JobTitle,
		JobDescription:   jobDescText,
		OriginalScore:    originalScore.OverallScore,
		OptimizedScore:   newScore.OverallScore,
		ScoreImprovement: newScore.OverallScore - originalScore.OverallScore,
		MatchLevel:       newScore.MatchLevel,
		OptimizedYAML:    optimizedYAML,
		KeywordsAdded:    keywordsAdded,
		ImprovementsMade: improvements,
	}

	stored, usage, err := o.store.SaveOptimization(ctx, rec, quota.WeekStart(o.now()))
	if err != nil {
		return nil, err
	}

	o.logger.Info("optimization completed",
		zap.String("user_id", user.ID.String()),
		zap.Float64("original_score", originalScore.OverallScore),
		zap.Float64("optimized_score", newScore.OverallScore))

	return &Result{
		Record:        stored,
		OriginalScore: originalScore,
		NewScore:      newScore,
		WeeklyUsage:   usage,
	}, nil
}

// keywordDiff returns the keywords matched after optimization that were not
// matched before, case-insensitively, without duplicates.
func keywordDiff(after, before []string) []string {
	had := make(map[string]bool, len(before))
	for _, kw := range before {
		had[strings.ToLower(kw)] = true
	}
	added := []string{}
	seen := make(map[string]bool)
	for _, kw := range after {
		key := strings.ToLower(kw)
		if had[key] || seen[key] {
			continue
		}
		seen[key] = true
		added = append(added, kw)
	}
	return added
}

func improvementMessages(before, after *types.DetailedScore, keywordsAdded []string) []string {
	msgs := []string{
		fmt.Sprintf("Score improved from %.1f to %.1f", before.OverallScore, after.OverallScore),
		fmt.Sprintf("Added %d new matching keywords", len(keywordsAdded)),
	}
	if len(after.KeywordAnalysis.MissingCriticalKeywords) < len(before.KeywordAnalysis.MissingCriticalKeywords) {
		msgs = append(msgs, "Reduced missing critical keywords")
	}
	if after.SkillsAnalysis.Score > before.SkillsAnalysis.Score {
		msgs = append(msgs, "Improved skills alignment")
	}
	return msgs
}
