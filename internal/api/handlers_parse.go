package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/edigest/internal/edifact"
	"github.com/dgallion1/edigest/internal/pipeline"
	"github.com/dgallion1/edigest/internal/source"
)

// handleParse parses an uploaded file synchronously and returns its tree.
// The file is either the multipart "file" field or the raw request body,
// in which case ?filename= picks the extractor (default input.edi).
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	filename, data, err := s.readUpload(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	ex, err := source.ForFile(filename, source.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	text, err := ex.Extract(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "extract: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	strict := s.orchestrator.Strict() || queryFlag(r, "strict")
	a, err := pipeline.Analyze(text, s.orchestrator.Stats(), strict)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := map[string]any{
		"filename":   filename,
		"delimiters": a.Delimiters,
		"counts":     edifact.Count(a.File),
		"file":       a.File,
	}
	if queryFlag(r, "tokens") {
		resp["tokens"] = a.Tokens
	}
	writeJSON(w, http.StatusOK, resp)
}

// readUpload returns the uploaded file name and bytes.
func (s *Server) readUpload(r *http.Request) (string, []byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return "", nil, fmt.Errorf("invalid multipart form: %w", err)
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("file is required: %w", err)
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			return "", nil, fmt.Errorf("failed to read file: %w", err)
		}
		return sanitizeFilename(header.Filename), data, nil
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "input.edi"
	}
	filename = sanitizeFilename(filename)
	if !source.IsSupportedExtension(filename) {
		return "", nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", nil, fmt.Errorf("request body is empty")
	}
	return filename, data, nil
}

func queryFlag(r *http.Request, name string) bool {
	switch r.URL.Query().Get(name) {
	case "1", "true", "yes":
		return true
	}
	return false
}
