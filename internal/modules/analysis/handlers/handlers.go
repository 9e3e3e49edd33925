// Package handlers provides HTTP handlers for fund statement analysis.
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/fundrisk/internal/modules/analysis"
	"github.com/aristath/fundrisk/internal/modules/sources"
)

// ContentTypeMsgpack is negotiated through the Accept header
const ContentTypeMsgpack = "application/msgpack"

// Handler handles analysis HTTP requests
type Handler struct {
	service   *analysis.Service
	uploadDir string
	log       zerolog.Logger
}

// NewHandler creates a new analysis handler. Uploads are staged under
// dataDir/uploads/<request id> and removed once analyzed.
func NewHandler(service *analysis.Service, dataDir string, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		uploadDir: filepath.Join(dataDir, "uploads"),
		log:       log.With().Str("handler", "analysis").Logger(),
	}
}

// HandleCreateAnalysis handles POST /api/analysis
func (h *Handler) HandleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	limits := h.service.Loader().Limits()
	r.Body = http.MaxBytesReader(w, r.Body, int64(limits.MaxFiles)*limits.MaxFileBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid multipart upload: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		h.writeError(w, r, http.StatusBadRequest, "no files uploaded (field \"files\")")
		return
	}

	opts := analysis.Options{
		Source:     "upload",
		IncludeRaw: r.URL.Query().Get("raw") == "true",
	}
	if v := r.FormValue("min_files"); v != "" {
		minFiles, err := strconv.Atoi(v)
		if err != nil || minFiles < 1 {
			h.writeError(w, r, http.StatusBadRequest, "min_files must be a positive integer")
			return
		}
		opts.MinFiles = minFiles
	}

	requestDir := filepath.Join(h.uploadDir, uuid.New().String())
	if err := os.MkdirAll(requestDir, 0755); err != nil {
		h.log.Error().Err(err).Msg("Failed to create upload directory")
		http.Error(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.RemoveAll(requestDir); err != nil {
			h.log.Warn().Err(err).Str("dir", requestDir).Msg("Failed to remove upload directory")
		}
	}()

	paths := make([]string, 0, len(files))
	for i, fh := range files {
		p, err := saveUpload(requestDir, i, fh)
		if err != nil {
			h.log.Error().Err(err).Str("file", fh.Filename).Msg("Failed to store uploaded file")
			http.Error(w, "Failed to store upload", http.StatusInternalServerError)
			return
		}
		paths = append(paths, p)
	}

	batch, err := h.service.Loader().FromPaths(paths...)
	if err != nil {
		h.writeError(w, r, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	relativize(&batch, requestDir)

	report, err := h.service.Analyze(r.Context(), batch, opts)
	if err != nil {
		h.log.Error().Err(err).Msg("Analysis failed")
		http.Error(w, "Analysis failed", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if !report.OK() {
		status = http.StatusUnprocessableEntity
	}
	h.writeReport(w, r, status, report)
}

// HandleGetLatest handles GET /api/analysis/latest
func (h *Handler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	store := h.service.Store()
	if store == nil {
		h.writeError(w, r, http.StatusNotFound, "no analysis available")
		return
	}
	report, ok := store.Latest()
	if !ok {
		h.writeError(w, r, http.StatusNotFound, "no analysis available")
		return
	}
	h.writeReport(w, r, http.StatusOK, report)
}

// HandleGetReport handles GET /api/analysis/{id}
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request, id string) {
	store := h.service.Store()
	if store == nil {
		h.writeError(w, r, http.StatusNotFound, "analysis not found")
		return
	}
	report, ok := store.Get(id)
	if !ok {
		h.writeError(w, r, http.StatusNotFound, "analysis not found")
		return
	}
	h.writeReport(w, r, http.StatusOK, report)
}

// saveUpload copies one multipart file into dir under its base name.
// Repeated names get the upload index as a prefix.
func saveUpload(dir string, index int, fh *multipart.FileHeader) (string, error) {
	name := filepath.Base(filepath.Clean("/" + fh.Filename))
	if name == "/" || name == "." {
		name = uuid.New().String() + ".xml"
	}
	dstPath := filepath.Join(dir, name)
	if _, err := os.Stat(dstPath); err == nil {
		dstPath = filepath.Join(dir, fmt.Sprintf("%d_%s", index, name))
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	return dstPath, dst.Close()
}

// relativize reports staged files by their uploaded names
func relativize(batch *sources.Batch, dir string) {
	prefix := dir + string(filepath.Separator)
	for i := range batch.Documents {
		batch.Documents[i].Name = strings.TrimPrefix(batch.Documents[i].Name, prefix)
	}
	for i := range batch.Failures {
		batch.Failures[i].Source = strings.TrimPrefix(batch.Failures[i].Source, prefix)
	}
}

func (h *Handler) writeReport(w http.ResponseWriter, r *http.Request, status int, report *analysis.Report) {
	h.write(w, r, status, map[string]interface{}{
		"data": report,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.write(w, r, status, map[string]interface{}{
		"error": message,
	})
}

// write encodes msgpack when the client asks for it, JSON otherwise
func (h *Handler) write(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if strings.Contains(r.Header.Get("Accept"), ContentTypeMsgpack) {
		payload, err := msgpack.Marshal(data)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to encode msgpack response")
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", ContentTypeMsgpack)
		w.WriteHeader(status)
		if _, err := w.Write(payload); err != nil {
			h.log.Error().Err(err).Msg("Failed to write msgpack response")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
