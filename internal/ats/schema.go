package ats

import (
	_ "embed"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed detailed_score_schema.json
var detailedScoreSchema string

// ValidateDetailedScoreJSON validates raw LLM output against the detailed
// score schema before unmarshalling. A schema violation means the upstream
// response is unusable; the caller wraps it as an UpstreamError.
func ValidateDetailedScoreJSON(jsonText string) error {
	schemaLoader := gojsonschema.NewStringLoader(detailedScoreSchema)
	documentLoader := gojsonschema.NewStringLoader(jsonText)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		var sb strings.Builder
		sb.WriteString("score response failed schema validation:")
		for _, desc := range result.Errors() {
			sb.WriteString(" ")
			sb.WriteString(desc.String())
			sb.WriteString(";")
		}
		return &UpstreamError{Op: strings.TrimSuffix(sb.String(), ";")}
	}

	return nil
}
