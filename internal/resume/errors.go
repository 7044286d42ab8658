// Package resume converts extracted resume text into a structured YAML
// document and rewrites that document against a target job description.
package resume

import "fmt"

// EmptyDocumentError indicates the input had no usable content.
type EmptyDocumentError struct {
	Reason string
}

func (e *EmptyDocumentError) Error() string {
	return fmt.Sprintf("empty resume document: %s", e.Reason)
}

// UpstreamError indicates the LLM call failed. Parse defects in otherwise
// successful responses are not upstream errors; they fall back to raw text.
type UpstreamError struct {
	Op    string
	Cause error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure in %s: %v", e.Op, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}
