package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tsawler/docqc"
)

// Error messages returned to clients.
const (
	msgNoFile       = "No file provided"
	msgNoSelection  = "No file selected"
	msgInvalidType  = "Invalid file type. Only .docx files are allowed."
	msgProcessing   = "Error processing file"
	msgNotFound     = "Not found"
	msgInternal     = "Internal server error"
	msgBadRequest   = "Bad request"
	allowedFileType = ".docx"
)

// tooLargeMessage reports the configured upload limit in the largest
// whole unit that divides it.
func tooLargeMessage(limit int64) string {
	var size string
	switch {
	case limit >= 1<<20 && limit%(1<<20) == 0:
		size = fmt.Sprintf("%dMB", limit>>20)
	case limit >= 1<<10 && limit%(1<<10) == 0:
		size = fmt.Sprintf("%dKB", limit>>10)
	default:
		size = fmt.Sprintf("%d bytes", limit)
	}
	return "File too large. Maximum size is " + size + "."
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"version":   s.cfg.Version,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, msgNotFound)
}

// handleCheck accepts a multipart upload in the "file" field, checks it and
// returns the report mapping.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r.Context(), s.logger)

	if s.cfg.MaxUploadBytes > 0 {
		if r.ContentLength > s.cfg.MaxUploadBytes {
			writeError(w, http.StatusRequestEntityTooLarge, tooLargeMessage(s.cfg.MaxUploadBytes))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, tooLargeMessage(s.cfg.MaxUploadBytes))
			return
		}
		if errors.Is(err, http.ErrNotMultipart) {
			writeError(w, http.StatusBadRequest, msgNoFile)
			return
		}
		logger.Warn("could not parse upload", "error", err)
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		// A part without a filename is parsed as a plain form value.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			writeError(w, http.StatusBadRequest, msgNoSelection)
			return
		}
		writeError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer file.Close()

	name := secureFilename(header.Filename)
	if name == "" {
		writeError(w, http.StatusBadRequest, msgNoSelection)
		return
	}
	if !allowedFile(name) {
		writeError(w, http.StatusBadRequest, msgInvalidType)
		return
	}

	path, err := s.saveUpload(file, name)
	if err != nil {
		logger.Error("could not save upload", "file", name, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			logger.Warn("could not remove temporary file", "path", path, "error", err)
		}
	}()

	logger.Info("processing file", "file", name)

	rep, err := docqc.Open(path).
		WithConfig(s.cfg.Check).
		WithLogger(logger).
		WithClock(s.now).
		Check(r.Context())
	if err != nil {
		logger.Error("error processing file", "file", name, "error", err)
		writeError(w, http.StatusInternalServerError, msgProcessing)
		return
	}

	writeJSON(w, http.StatusOK, rep.ToMap())
}

// saveUpload copies the upload into the upload dir under a unique name.
func (s *Server) saveUpload(src io.Reader, name string) (string, error) {
	path := filepath.Join(s.cfg.UploadDir, fmt.Sprintf("%s_%s", uuid.NewString(), name))
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func allowedFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), allowedFileType)
}

// secureFilename reduces a client-supplied name to a safe base name made
// of ASCII letters, digits, dots, dashes and underscores.
func secureFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
