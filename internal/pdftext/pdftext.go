// Package pdftext extracts plain text from uploaded PDF resumes.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Extractor pulls plain text out of PDF bytes.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// UnreadableError indicates the bytes could not be processed as a PDF.
type UnreadableError struct {
	Cause error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("unreadable PDF: %v", e.Cause)
}

func (e *UnreadableError) Unwrap() error {
	return e.Cause
}

// NoTextError indicates the PDF parsed but contains no extractable text,
// e.g. a scanned image without an OCR layer.
type NoTextError struct{}

func (e *NoTextError) Error() string {
	return "no extractable text in PDF"
}

// LooksLikePDF checks for the PDF file signature.
func LooksLikePDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// PopplerExtractor shells out to pdftotext from poppler-utils.
type PopplerExtractor struct{}

// NewPopplerExtractor creates an extractor backed by the pdftotext binary.
func NewPopplerExtractor() *PopplerExtractor {
	return &PopplerExtractor{}
}

// Extract writes the PDF bytes to a temp file and runs pdftotext on it.
// Returns UnreadableError when the tool rejects the file or is not
// installed, and NoTextError when extraction yields only whitespace.
func (p *PopplerExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if !LooksLikePDF(data) {
		return "", &UnreadableError{Cause: fmt.Errorf("missing %%PDF header")}
	}

	tmp, err := os.CreateTemp("", "resume-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	// "-" sends the extracted text to stdout
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", tmp.Name(), "-")
	output, err := cmd.Output()
	if err != nil {
		if _, lookErr := exec.LookPath("pdftotext"); lookErr != nil {
			return "", &UnreadableError{
				Cause: fmt.Errorf("pdftotext not available. Please install poppler-utils"),
			}
		}
		return "", &UnreadableError{Cause: fmt.Errorf("pdftotext command failed: %w", err)}
	}

	text := strings.TrimSpace(string(output))
	if text == "" {
		return "", &NoTextError{}
	}

	return text, nil
}
