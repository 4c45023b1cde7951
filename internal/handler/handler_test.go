package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalops/estadia-api/internal/model"
	"github.com/hospitalops/estadia-api/internal/store"
)

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	st := store.New()
	loadedAt := time.Now().Add(-time.Minute)
	st.Replace(&store.Snapshot{
		Patients: []*model.PatientEpisode{{ID: "EP-1"}, {ID: "EP-2"}},
		LoadedAt: loadedAt,
	})

	engine := gin.New()
	NewHealthHandler(st).RegisterRoutes(engine.Group("/api"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var res HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "OK", res.Status)
	assert.Equal(t, 2, res.PatientsLoaded)
	assert.WithinDuration(t, loadedAt, res.LastModified, time.Second)
	assert.GreaterOrEqual(t, res.UptimeSeconds, 0.0)
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	NewHealthHandler(store.New()).RegisterRoutes(engine.Group("/api"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
