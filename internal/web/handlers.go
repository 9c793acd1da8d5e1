package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/qualitycheck/internal/core"
	"github.com/JonMunkholm/qualitycheck/internal/logging"
	"github.com/JonMunkholm/qualitycheck/internal/web/templates"
)

// reportFileName is the name of the generated workbook inside a run directory.
const reportFileName = "report.xlsx"

// handleIndex renders the run form and recent runs.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.History().Recent(r.Context(), core.DefaultHistoryLimit)
	if err != nil {
		// the form is still usable without the list
		logging.FromContext(r.Context()).Warn("failed to list runs", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Index(runs).Render(r.Context(), w)
}

// handleHealth reports run slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status": "ok",
		"runs":   s.service.Limiter().Status(),
	})
}

// handleRun stores the uploaded inputs in a fresh run directory and runs
// the check synchronously.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	// three inputs at most, each bounded by the loader's size limit
	maxSize := 3*s.cfg.Input.MaxFileSize + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.respondError(w, r, fmt.Errorf("invalid upload form: file too large or malformed: %w", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	runID := uuid.NewString()
	dir := filepath.Join(s.cfg.Server.WorkDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.respondError(w, r, fmt.Errorf("create run directory: %w", err), http.StatusInternalServerError)
		return
	}

	req := core.RunRequest{
		RunID:      runID,
		OutputPath: filepath.Join(dir, reportFileName),
	}

	var err error
	if req.PrimaryPath, err = saveUpload(r, "complot", dir, true); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if req.LayerPath, err = saveUpload(r, "layer", dir, true); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if req.TemplatePath, err = saveUpload(r, "template", dir, false); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	result, err := s.service.Run(r.Context(), req, nil)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	switch {
	case wantsJSON(r):
		writeJSON(w, r, http.StatusOK, result)
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.RunResult(result).Render(r.Context(), w)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.ResultPage(result).Render(r.Context(), w)
	}
}

// handleListRuns returns recent runs as JSON. ?limit=N caps the list.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := core.DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.service.History().Recent(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, runs)
}

// handleGetRun returns one run as JSON.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.History().Get(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// handleDownloadReport sends the report workbook of a run.
func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, func(rec core.RunRecord) string { return rec.ReportPath },
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

// handleDownloadSummary sends the text summary of a run.
func (s *Server) handleDownloadSummary(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, func(rec core.RunRecord) string { return rec.SummaryPath },
		"text/plain; charset=utf-8")
}

func (s *Server) serveArtifact(w http.ResponseWriter, r *http.Request, pick func(core.RunRecord) string, contentType string) {
	runID := chi.URLParam(r, "runID")
	rec, err := s.service.History().Get(r.Context(), runID)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	path := pick(rec)
	if rec.Status != core.RunSucceeded || path == "" {
		s.respondError(w, r, fmt.Errorf("run %s has no output: %w", runID, core.ErrRunNotFound), http.StatusNotFound)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("open artifact: %w", err), http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), f)
}

// saveUpload copies the form file field into dir as <field><ext>. It returns
// "" when an optional field is absent.
func saveUpload(r *http.Request, field, dir string, required bool) (string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		if required {
			return "", fmt.Errorf("%s: %w", field, core.ErrInputMissing)
		}
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s upload: %w", field, err)
	}
	defer file.Close()

	path := filepath.Join(dir, field+uploadExt(header))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("store %s upload: %w", field, err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		return "", fmt.Errorf("store %s upload: %w", field, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("store %s upload: %w", field, err)
	}
	return path, nil
}

// uploadExt returns the lower-case extension of the uploaded file name.
func uploadExt(h *multipart.FileHeader) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(h.Filename)))
	switch ext {
	case ".csv", ".txt", ".xlsx", ".xlsm":
		return ext
	default:
		return ""
	}
}
