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

	"github.com/google/uuid"

	"github.com/aemqa/packetcheck/internal/progress"
)

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	mux.HandleFunc("GET /api/progress/{key}", s.handleProgress)
	mux.HandleFunc("GET /api/results/{key}", s.handleResult)
	mux.HandleFunc("GET /download/{file}", s.handleDownload)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
}

// ValidateResponse acknowledges an accepted packet.
type ValidateResponse struct {
	ProgressKey string `json:"progressKey"`
}

// ProgressResponse is the polling payload for a tracked job.
type ProgressResponse struct {
	Percent   int    `json:"percent"`
	Done      bool   `json:"done"`
	Error     string `json:"error,omitempty"`
	ResultRef string `json:"resultRef,omitempty"`
}

// ErrorResponse carries a machine-readable failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleValidate accepts a PDF upload and submits it as a validation
// job. The response carries the progress key to poll.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	name := sanitizeFilename(header.Filename)
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		writeError(w, http.StatusBadRequest, "only PDF uploads are accepted")
		return
	}

	// Prefix with a fresh ID so concurrent uploads of the same file
	// never collide.
	dest := filepath.Join(s.uploadsDir, uuid.NewString()+"_"+name)
	out, err := os.Create(dest)
	if err != nil {
		s.logger.Error("failed to create upload file", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(dest)
		s.logger.Error("failed to write upload", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	key, err := s.orch.Submit(r.Context(), dest, r.FormValue("schemaVersion"))
	if err != nil {
		os.Remove(dest)
		s.logger.Error("submit failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, ValidateResponse{ProgressKey: key})
}

// handleProgress reports a job's completion state. Unknown keys are a
// 404 so pollers can distinguish "never existed" from "running at 0%".
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	e, err := s.orch.GetProgress(r.Context(), key)
	if errors.Is(err, progress.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown progress key")
		return
	}
	if err != nil {
		s.logger.Error("progress lookup failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "progress lookup failed")
		return
	}

	resp := ProgressResponse{
		Percent: e.Percent,
		Done:    e.Status == progress.StatusDone,
	}
	if e.ResultRef != "" {
		resp.ResultRef = filepath.Base(e.ResultRef)
	}
	if e.Status == progress.StatusFailed {
		resp.Error = e.Error
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleResult returns a finished job's full stored result.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	res, err := s.orch.GetResult(r.Context(), key)
	if errors.Is(err, progress.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no result for key")
		return
	}
	if err != nil {
		s.logger.Error("result lookup failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "result lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleDownload serves a report file from the exports directory.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := sanitizeFilename(r.PathValue("file"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing file name")
		return
	}
	path := filepath.Join(s.exportsDir, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "no such report")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status      string `json:"status"`
	SharedStore string `json:"sharedStore,omitempty"`
}

// handleHealth returns basic server health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleReady returns readiness including the shared store, when one is
// configured. Without a shared store the server is ready on its own.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.probe == nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
		return
	}
	if err := s.probe(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", SharedStore: "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", SharedStore: "ok"})
}

// sanitizeFilename strips any path components from a client-supplied
// name.
func sanitizeFilename(name string) string {
	name = filepath.Base(filepath.Clean(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return strings.ReplaceAll(name, "..", "_")
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
