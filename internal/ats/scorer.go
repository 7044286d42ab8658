package ats

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/uditb/resumesculpt/internal/llm"
	"github.com/uditb/resumesculpt/internal/prompts"
	"github.com/uditb/resumesculpt/internal/types"
)

// Scorer computes ATS compatibility scores between a resume document and a
// structured job description.
type Scorer struct {
	client llm.Client
	logger *zap.Logger
}

// NewScorer creates a Scorer backed by the given LLM client.
func NewScorer(client llm.Client, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{client: client, logger: logger}
}

// ScoreDetailed produces the full weighted score breakdown. The LLM output
// is schema-validated, then post-processed so the weighted-sum and
// match-level invariants hold by construction regardless of what the model
// reported for the derived fields.
func (s *Scorer) ScoreDetailed(ctx context.Context, resumeYAML string, jd *types.JobDescription) (*types.DetailedScore, error) {
	template := prompts.MustGet("scoring.json", "detailed-score")
	prompt := prompts.Format(template, map[string]string{
		"JobTitle":       jd.JobTitle,
		"Skills":         strings.Join(jd.Skills, ", "),
		"JobDescription": jd.JobDescription,
		"ResumeYAML":     resumeYAML,
	})

	responseText, err := s.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &UpstreamError{Op: "detailed score", Cause: err}
	}

	responseText = llm.CleanJSONBlock(responseText)
	if err := ValidateDetailedScoreJSON(responseText); err != nil {
		return nil, &UpstreamError{Op: "validate score response", Cause: err}
	}

	var score types.DetailedScore
	if err := json.Unmarshal([]byte(responseText), &score); err != nil {
		return nil, &UpstreamError{Op: "parse score response", Cause: err}
	}

	postProcess(&score)

	s.logger.Debug("computed detailed score",
		zap.Float64("overall", score.OverallScore),
		zap.String("match_level", score.MatchLevel))

	return &score, nil
}

// Score is the legacy single-number scoring pass: a 0-100 score plus a
// free-text reason, no breakdown.
func (s *Scorer) Score(ctx context.Context, resumeYAML string, jd *types.JobDescription) (*types.LegacyScore, error) {
	template := prompts.MustGet("scoring.json", "legacy-score")
	prompt := prompts.Format(template, map[string]string{
		"JobTitle":       jd.JobTitle,
		"Skills":         strings.Join(jd.Skills, ", "),
		"JobDescription": jd.JobDescription,
		"ResumeYAML":     resumeYAML,
	})

	responseText, err := s.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &UpstreamError{Op: "legacy score", Cause: err}
	}

	var score types.LegacyScore
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(responseText)), &score); err != nil {
		return nil, &UpstreamError{Op: "parse legacy score response", Cause: err}
	}

	if score.Score < 0 {
		score.Score = 0
	} else if score.Score > 100 {
		score.Score = 100
	}

	return &score, nil
}

// postProcess enforces the scoring invariants: sub-scores clamped to
// [0,100], overall recomputed from the fixed weights, match level
// re-bucketed from the overall, matched keyword list deduplicated.
func postProcess(score *types.DetailedScore) {
	score.KeywordAnalysis.Score = clamp(score.KeywordAnalysis.Score)
	score.SkillsAnalysis.Score = clamp(score.SkillsAnalysis.Score)
	score.ExperienceAlignment.Score = clamp(score.ExperienceAlignment.Score)
	score.FormattingAnalysis.Score = clamp(score.FormattingAnalysis.Score)

	score.OverallScore = score.WeightedOverall()
	score.MatchLevel = types.MatchLevelFor(score.OverallScore)

	score.KeywordAnalysis.MatchedKeywords = dedupe(score.KeywordAnalysis.MatchedKeywords)

	if score.Likelihood == "" {
		switch {
		case score.OverallScore >= 70:
			score.Likelihood = types.LikelihoodHigh
		case score.OverallScore >= 55:
			score.Likelihood = types.LikelihoodMedium
		default:
			score.Likelihood = types.LikelihoodLow
		}
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// dedupe removes duplicate keywords case-insensitively, keeping first
// occurrences in order.
func dedupe(keywords []string) []string {
	if len(keywords) == 0 {
		return keywords
	}
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		key := strings.ToLower(strings.TrimSpace(kw))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}
