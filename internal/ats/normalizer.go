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

// Normalizer turns free-text job descriptions into structured JobDescription
// records via LLM extraction.
type Normalizer struct {
	client llm.Client
	logger *zap.Logger
}

// NewNormalizer creates a Normalizer backed by the given LLM client.
func NewNormalizer(client llm.Client, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{client: client, logger: logger}
}

// Normalize extracts {title, skills, description} from raw job description
// text. Empty input fails fast with InvalidInputError before any LLM call.
// The extraction prompt instructs the model to ignore directives embedded in
// the candidate text.
func (n *Normalizer) Normalize(ctx context.Context, rawText string) (*types.JobDescription, error) {
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return nil, &InvalidInputError{Field: "job_desc", Message: "job description cannot be empty"}
	}

	template := prompts.MustGet("jd.json", "extract-job-description")
	prompt := prompts.Format(template, map[string]string{
		"JobText": rawText,
	})

	responseText, err := n.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return nil, &UpstreamError{Op: "normalize job description", Cause: err}
	}

	var jd types.JobDescription
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(responseText)), &jd); err != nil {
		return nil, &UpstreamError{Op: "parse job description response", Cause: err}
	}

	if jd.JobDescription == "" {
		jd.JobDescription = rawText
	}

	n.logger.Debug("normalized job description",
		zap.String("job_title", jd.JobTitle),
		zap.Int("skills", len(jd.Skills)))

	return &jd, nil
}
