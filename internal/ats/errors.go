// Package ats turns free-text job descriptions into structured records and
// scores resumes against them using LLM extraction under a fixed rubric.
package ats

import "fmt"

// InvalidInputError indicates a request field failed validation before any
// upstream call was made.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
}

// UpstreamError indicates the LLM call or response handling failed. It is
// never converted into a default score.
type UpstreamError struct {
	Op    string
	Cause error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upstream failure in %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("upstream failure in %s", e.Op)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}
