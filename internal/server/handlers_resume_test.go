package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uditb/resumesculpt/internal/pdftext"
)

func multipartUpload(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, token, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, formContentType := multipartUpload(t, filename, contentType, data)
	req := httptest.NewRequest(http.MethodPost, "/upload-resume", body)
	req.Header.Set("Content-Type", formContentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestUploadResume(t *testing.T) {
	pdfBytes := []byte("%PDF-1.7 fake body")

	t.Run("success stores resume", func(t *testing.T) {
		env := newTestEnv(t)
		token, userID := env.signup(t, "jane@example.com")

		rec := env.upload(t, token, "resume.pdf", "application/pdf", pdfBytes)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "resume.pdf")

		env.db.mu.Lock()
		u := env.db.usersByID[userID]
		env.db.mu.Unlock()
		require.NotNil(t, u.ResumeYAML)
		assert.Equal(t, "name: Jane Doe", *u.ResumeYAML)
	})

	t.Run("replaces previous resume", func(t *testing.T) {
		env := newTestEnv(t)
		token, userID := env.signup(t, "jane@example.com")

		rec := env.upload(t, token, "old.pdf", "application/pdf", pdfBytes)
		require.Equal(t, http.StatusOK, rec.Code)

		env.serializer.yaml = "name: Jane Doe\nsummary: Updated."
		rec = env.upload(t, token, "new.pdf", "application/pdf", pdfBytes)
		require.Equal(t, http.StatusOK, rec.Code)

		env.db.mu.Lock()
		u := env.db.usersByID[userID]
		env.db.mu.Unlock()
		assert.Equal(t, "new.pdf", *u.ResumeFilename)
		assert.Equal(t, "name: Jane Doe\nsummary: Updated.", *u.ResumeYAML)
	})

	t.Run("rejects non-PDF content type", func(t *testing.T) {
		env := newTestEnv(t)
		token, _ := env.signup(t, "jane@example.com")

		rec := env.upload(t, token, "resume.docx", "application/msword", []byte("doc bytes"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "PDF")
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		env := newTestEnv(t)
		token, _ := env.signup(t, "jane@example.com")

		big := make([]byte, maxResumeSize+1)
		copy(big, "%PDF-1.7")
		rec := env.upload(t, token, "big.pdf", "application/pdf", big)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unreadable PDF", func(t *testing.T) {
		env := newTestEnv(t)
		token, _ := env.signup(t, "jane@example.com")
		env.extractor.err = &pdftext.UnreadableError{}

		rec := env.upload(t, token, "resume.pdf", "application/pdf", pdfBytes)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("textless PDF", func(t *testing.T) {
		env := newTestEnv(t)
		token, _ := env.signup(t, "jane@example.com")
		env.extractor.err = &pdftext.NoTextError{}

		rec := env.upload(t, token, "scan.pdf", "application/pdf", pdfBytes)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "no extractable text")
	})

	t.Run("requires auth", func(t *testing.T) {
		env := newTestEnv(t)
		body, formContentType := multipartUpload(t, "resume.pdf", "application/pdf", pdfBytes)
		req := httptest.NewRequest(http.MethodPost, "/upload-resume", body)
		req.Header.Set("Content-Type", formContentType)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
