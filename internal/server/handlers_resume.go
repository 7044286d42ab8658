package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/uditb/resumesculpt/internal/pdftext"
	"github.com/uditb/resumesculpt/internal/resume"
	"github.com/uditb/resumesculpt/internal/server/middleware"
)

// maxResumeSize caps uploaded PDFs at 2 MB.
const maxResumeSize = 2 << 20

// Serializer converts extracted resume text into YAML.
type Serializer interface {
	Serialize(ctx context.Context, plainText string) (string, error)
}

// handleUploadResume accepts a PDF upload, extracts its text, serializes it
// to YAML and stores it on the user row, replacing any previous resume.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxResumeSize+4096)
	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		writeError(w, &ErrValidation{Field: "file", Message: "file too large or malformed upload (max 2MB)"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, &ErrValidation{Field: "file", Message: "missing file field"})
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "application/pdf" {
		writeError(w, &ErrValidation{Field: "file", Message: fmt.Sprintf("only PDF files are accepted, got %s", ct)})
		return
	}
	if header.Size > maxResumeSize {
		writeError(w, &ErrValidation{Field: "file", Message: "file too large (max 2MB)"})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, &ErrValidation{Field: "file", Message: "failed to read upload"})
		return
	}

	text, err := s.extractor.Extract(r.Context(), data)
	if err != nil {
		var unreadable *pdftext.UnreadableError
		var noText *pdftext.NoTextError
		switch {
		case errors.As(err, &unreadable):
			writeError(w, &ErrValidation{Field: "file", Message: "could not read PDF content"})
		case errors.As(err, &noText):
			writeError(w, &ErrValidation{Field: "file", Message: "no extractable text in PDF"})
		default:
			writeError(w, err)
		}
		return
	}

	resumeYAML, err := s.serializer.Serialize(r.Context(), text)
	if err != nil {
		var empty *resume.EmptyDocumentError
		if errors.As(err, &empty) {
			writeError(w, &ErrValidation{Field: "file", Message: "no extractable text in PDF"})
			return
		}
		s.logger.Error("resume serialization failed", zap.Error(err))
		writeError(w, err)
		return
	}

	if err := s.dbClient.SetResume(r.Context(), userID, resumeYAML, header.Filename, time.Now()); err != nil {
		s.logger.Error("failed to store resume", zap.Error(err))
		writeError(w, err)
		return
	}

	s.logger.Info("resume uploaded",
		zap.String("user_id", userID.String()),
		zap.String("filename", header.Filename))

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Resume uploaded and processed successfully",
		"filename": header.Filename,
	})
}

// handleMyResume returns the stored resume for the authenticated user.
func (s *Server) handleMyResume(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := s.userService.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	if !user.HasResume() {
		writeError(w, &ErrNoResume{})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filename":           user.ResumeFilename,
		"resume_yaml":        user.ResumeYAML,
		"resume_uploaded_at": user.ResumeUploadedAt,
	})
}
