package handlers

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/fundrisk/internal/domain"
	"github.com/aristath/fundrisk/internal/modules/aggregation"
	"github.com/aristath/fundrisk/internal/modules/analysis"
	"github.com/aristath/fundrisk/internal/modules/risk"
	"github.com/aristath/fundrisk/internal/modules/sources"
	fixtures "github.com/aristath/fundrisk/internal/testing"
)

type reportResponse struct {
	Data     analysis.Report        `json:"data"`
	Metadata map[string]interface{} `json:"metadata"`
	Error    string                 `json:"error"`
}

func setupRouter(t *testing.T, minFiles int) (*chi.Mux, string) {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	dataDir := t.TempDir()

	service := analysis.NewService(
		sources.NewLoader(sources.DefaultLimits(), logger),
		aggregation.Config{MinFiles: minFiles, Workers: 2},
		risk.NewEngine(risk.DefaultConfig(), logger),
		analysis.NewReportStore(time.Hour),
		nil,
		logger,
	)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		NewHandler(service, dataDir, logger).RegisterRoutes(r)
	})
	return router, dataDir
}

func uploadRequest(t *testing.T, docs []domain.Document, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, doc := range docs {
		part, err := mw.CreateFormFile("files", doc.Name)
		require.NoError(t, err)
		_, err = part.Write(doc.Data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analysis", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleCreateAnalysis(t *testing.T) {
	router, dataDir := setupRouter(t, 5)
	docs := fixtures.NAVSeries(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), 100, 101, 99, 102, 98)
	docs = append(docs, domain.Document{Name: "broken.xml", Data: []byte("<arquivo")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, docs, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp reportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, analysis.StatusOK, resp.Data.ValidationStatus)
	assert.Equal(t, 6, resp.Data.FilesProcessed)
	assert.Equal(t, 5, resp.Data.FilesValid)
	assert.Len(t, resp.Data.Answers, 13)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "broken.xml", resp.Data.Errors[0].Source)
	assert.Nil(t, resp.Data.RawMetrics)
	assert.NotEmpty(t, resp.Metadata["timestamp"])

	// staged uploads are removed
	entries, err := os.ReadDir(filepath.Join(dataDir, "uploads"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	t.Run("latest", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analysis/latest", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var latest reportResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &latest))
		assert.Equal(t, resp.Data.ID, latest.Data.ID)
	})

	t.Run("by id as msgpack", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analysis/"+resp.Data.ID, nil)
		req.Header.Set("Accept", ContentTypeMsgpack)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, ContentTypeMsgpack, w.Header().Get("Content-Type"))

		var decoded struct {
			Data analysis.Report `msgpack:"data"`
		}
		require.NoError(t, msgpack.Unmarshal(w.Body.Bytes(), &decoded))
		assert.Equal(t, resp.Data.ID, decoded.Data.ID)
		assert.Equal(t, resp.Data.Answers, decoded.Data.Answers)
	})
}

func TestHandleCreateAnalysis_ZipAndDuplicateNames(t *testing.T) {
	router, _ := setupRouter(t, 5)
	docs := fixtures.NAVSeries(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), 100, 101, 99, 102, 98)

	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	for _, doc := range docs[:3] {
		f, err := zw.Create("marco/" + doc.Name)
		require.NoError(t, err)
		_, err = f.Write(doc.Data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	uploads := []domain.Document{
		{Name: "posicoes.bin", Data: archive.Bytes()},
		{Name: "dia.xml", Data: docs[3].Data},
		{Name: "dia.xml", Data: docs[4].Data},
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, uploads, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp reportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Data.FilesValid)
	assert.Empty(t, resp.Data.Errors)
	assert.Equal(t, "2024-03-08", resp.Data.StatementDate)
}

func TestHandleCreateAnalysis_InsufficientSample(t *testing.T) {
	router, _ := setupRouter(t, 21)
	docs := fixtures.NAVSeries(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), fixtures.FlatNAVs(20, 1)...)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, docs, nil))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp reportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, analysis.StatusInsufficientSample, resp.Data.ValidationStatus)
	assert.Equal(t, 21, resp.Data.FilesRequired)
	assert.Empty(t, resp.Data.Answers)
}

func TestHandleCreateAnalysis_MinFilesField(t *testing.T) {
	router, _ := setupRouter(t, 21)
	docs := fixtures.NAVSeries(time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), 1.0, 1.1)

	w := httptest.NewRecorder()
	req := uploadRequest(t, docs, map[string]string{"min_files": "2"})
	req.URL.RawQuery = "raw=true"
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp reportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.FilesRequired)
	require.NotNil(t, resp.Data.RawMetrics)
	assert.Equal(t, risk.MethodCrossSectional, resp.Data.RawMetrics.Method)
}

func TestHandleCreateAnalysis_BadRequests(t *testing.T) {
	router, _ := setupRouter(t, 21)

	tests := []struct {
		name string
		req  func() *http.Request
	}{
		{"not multipart", func() *http.Request {
			return httptest.NewRequest(http.MethodPost, "/api/analysis", bytes.NewBufferString("{}"))
		}},
		{"no files", func() *http.Request {
			return uploadRequest(t, nil, map[string]string{"min_files": "2"})
		}},
		{"bad min_files", func() *http.Request {
			return uploadRequest(t, []domain.Document{{Name: "a.xml", Data: []byte("<a/>")}}, map[string]string{"min_files": "zero"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tt.req())
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleGetReport_NotFound(t *testing.T) {
	router, _ := setupRouter(t, 21)

	for _, path := range []string{"/api/analysis/latest", "/api/analysis/unknown"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}
