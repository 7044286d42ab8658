package resume

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/uditb/resumesculpt/internal/llm"
	"github.com/uditb/resumesculpt/internal/prompts"
)

// Serializer converts extracted plain-text resume content into a structured
// YAML document.
type Serializer struct {
	client llm.Client
	logger *zap.Logger
}

// NewSerializer creates a Serializer backed by the given LLM client.
func NewSerializer(client llm.Client, logger *zap.Logger) *Serializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Serializer{client: client, logger: logger}
}

// Serialize turns plain resume text into YAML. Empty input fails with
// EmptyDocumentError before any LLM call. Responses wrapped in markdown
// fences are unwrapped; responses that still do not parse as YAML are
// stored as-is rather than rejected, so a formatting quirk in the model
// output never loses the user's resume.
func (s *Serializer) Serialize(ctx context.Context, plainText string) (string, error) {
	plainText = strings.TrimSpace(plainText)
	if plainText == "" {
		return "", &EmptyDocumentError{Reason: "no text extracted"}
	}

	template := prompts.MustGet("resume.json", "serialize-resume")
	prompt := prompts.Format(template, map[string]string{
		"ResumeText": plainText,
	})

	responseText, err := s.client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return "", &UpstreamError{Op: "serialize resume", Cause: err}
	}

	yamlText := llm.CleanYAMLBlock(responseText)

	doc := NewDocument(yamlText)
	if err := doc.Validate(); err != nil {
		return "", err
	}
	if !doc.IsYAML() {
		s.logger.Warn("serialized resume is not valid YAML, storing raw text",
			zap.Int("length", len(yamlText)))
	}

	return doc.Text, nil
}
