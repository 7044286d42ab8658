package resume

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/uditb/resumesculpt/internal/llm"
	"github.com/uditb/resumesculpt/internal/prompts"
	"github.com/uditb/resumesculpt/internal/types"
)

// defaultAddons is substituted when the user supplied no addon content, so
// the prompt never carries an empty section the model could misread.
const defaultAddons = "No additional information provided."

// Optimizer rewrites a resume document against a target job description.
type Optimizer struct {
	client llm.Client
	logger *zap.Logger
}

// NewOptimizer creates an Optimizer backed by the given LLM client.
func NewOptimizer(client llm.Client, logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{client: client, logger: logger}
}

// Optimize rewrites resumeYAML for the given job description, weaving in
// relevant addon content. The rewrite never fabricates facts; that
// constraint lives in the prompt. Fence stripping and raw fallback follow
// the serializer's behavior.
func (o *Optimizer) Optimize(ctx context.Context, resumeYAML string, jd *types.JobDescription, addons string) (string, error) {
	resumeYAML = strings.TrimSpace(resumeYAML)
	if resumeYAML == "" {
		return "", &EmptyDocumentError{Reason: "no resume to optimize"}
	}

	addons = strings.TrimSpace(addons)
	if addons == "" {
		addons = defaultAddons
	}

	template := prompts.MustGet("optimizing.json", "optimize-resume")
	prompt := prompts.Format(template, map[string]string{
		"Addons":         addons,
		"JobTitle":       jd.JobTitle,
		"Skills":         strings.Join(jd.Skills, ", "),
		"JobDescription": jd.JobDescription,
		"ResumeYAML":     resumeYAML,
	})

	responseText, err := o.client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return "", &UpstreamError{Op: "optimize resume", Cause: err}
	}

	yamlText := llm.CleanYAMLBlock(responseText)

	doc := NewDocument(yamlText)
	if err := doc.Validate(); err != nil {
		return "", err
	}
	if !doc.IsYAML() {
		o.logger.Warn("optimized resume is not valid YAML, returning raw text",
			zap.Int("length", len(yamlText)))
	}

	return doc.Text, nil
}
