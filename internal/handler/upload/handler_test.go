package upload

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalops/estadia-api/internal/config"
	"github.com/hospitalops/estadia-api/internal/middleware"
	"github.com/hospitalops/estadia-api/internal/upstream"
)

func testEngine(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.ErrorHandler())
	h.RegisterRoutes(engine.Group("/api"))
	return engine
}

func postJSON(engine *gin.Engine, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestUploadStoresTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(dir, nil, zerolog.Nop())
	h.now = func() time.Time {
		return time.Date(2025, 8, 20, 12, 30, 5, 0, time.Local)
	}
	engine := testEngine(h)

	w := postJSON(engine, "/api/upload-csv",
		`{"csvData":"a;b\n1;2\n","filename":"gestion.csv"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gestion_2025-08-20T12-30-05.csv")

	stored, err := os.ReadFile(filepath.Join(dir, "gestion_2025-08-20T12-30-05.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a;b\n1;2\n", string(stored))
}

func TestUploadStripsPathFromFilename(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(dir, nil, zerolog.Nop())
	h.now = func() time.Time {
		return time.Date(2025, 8, 20, 12, 30, 5, 0, time.Local)
	}
	engine := testEngine(h)

	w := postJSON(engine, "/api/upload-csv",
		`{"csvData":"x","filename":"../../../etc/gestion.csv"}`)

	require.Equal(t, http.StatusOK, w.Code)
	_, err := os.Stat(filepath.Join(dir, "gestion_2025-08-20T12-30-05.csv"))
	assert.NoError(t, err, "file lands inside the upload dir")
}

func TestUploadRequiresBothFields(t *testing.T) {
	engine := testEngine(NewHandler(t.TempDir(), nil, zerolog.Nop()))

	w := postJSON(engine, "/api/upload-csv", `{"csvData":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "requeridos")
}

func proxyEngine(t *testing.T, backend http.HandlerFunc) *gin.Engine {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	client := upstream.NewClient(config.UpstreamConfig{
		IngestURL:      server.URL,
		TimeoutSeconds: 5,
	}, nil, zerolog.Nop())
	return testEngine(NewHandler(t.TempDir(), client, zerolog.Nop()))
}

func TestProxyUploadForwardsAsMultipart(t *testing.T) {
	var gotFilename, gotContent string
	engine := proxyEngine(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		buf, err := io.ReadAll(file)
		require.NoError(t, err)
		gotContent = string(buf)

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"inserted":42}`))
	})

	w := postJSON(engine, "/api/proxy-upload-csv",
		`{"csvData":"a;b\n","filename":"gestion.csv"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"inserted":42}`, w.Body.String())
	assert.Equal(t, "gestion.csv", gotFilename)
	assert.Equal(t, "a;b\n", gotContent)
}

func TestProxyUploadWrapsPlainTextSuccess(t *testing.T) {
	engine := proxyEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("procesado"))
	})

	w := postJSON(engine, "/api/proxy-upload-csv",
		`{"csvData":"a;b\n","filename":"gestion.csv"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"procesado"}`, w.Body.String())
}

func TestProxyUploadRelaysUpstreamError(t *testing.T) {
	engine := proxyEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("columnas inválidas"))
	})

	w := postJSON(engine, "/api/proxy-upload-csv",
		`{"csvData":"a;b\n","filename":"gestion.csv"}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"columnas inválidas","status":422}`, w.Body.String())
}
