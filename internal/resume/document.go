package resume

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Document holds a resume as YAML text. The parsed form is computed on
// demand; Text is always the source of truth.
type Document struct {
	Text string

	parsed   map[string]any
	parseErr error
	parsedOK bool
}

// NewDocument wraps raw YAML text in a Document.
func NewDocument(text string) *Document {
	return &Document{Text: strings.TrimSpace(text)}
}

func (d *Document) parse() {
	if d.parsedOK || d.parseErr != nil {
		return
	}
	var m map[string]any
	if err := yaml.Unmarshal([]byte(d.Text), &m); err != nil {
		d.parseErr = err
		return
	}
	d.parsed = m
	d.parsedOK = true
}

// IsYAML reports whether the document text parses as a YAML mapping.
func (d *Document) IsYAML() bool {
	d.parse()
	return d.parsedOK && d.parsed != nil
}

// Fields returns the top-level keys of the parsed document, or nil when the
// text is not valid YAML.
func (d *Document) Fields() []string {
	d.parse()
	if !d.parsedOK {
		return nil
	}
	keys := make([]string, 0, len(d.parsed))
	for k := range d.parsed {
		keys = append(keys, k)
	}
	return keys
}

// Validate checks that the document carries at least one populated top-level
// field. Unparseable text is accepted as long as it is non-empty, since raw
// fallback documents are valid by design of the serializer.
func (d *Document) Validate() error {
	if d.Text == "" {
		return &EmptyDocumentError{Reason: "no content"}
	}
	d.parse()
	if !d.parsedOK {
		return nil
	}
	for _, v := range d.parsed {
		if !isEmptyValue(v) {
			return nil
		}
	}
	return &EmptyDocumentError{Reason: "no populated fields"}
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
