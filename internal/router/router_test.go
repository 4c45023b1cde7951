package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalops/estadia-api/internal/config"
	"github.com/hospitalops/estadia-api/internal/middleware"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pong": true})
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 3001, TimeoutSeconds: 30},
		API:    config.APIConfig{RateLimitRPS: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 30},
	}
}

func TestRouterRegistersHandlersUnderAPI(t *testing.T) {
	r := New(testConfig(), nil, pingHandler{})
	r.Setup()

	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pong":true}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterPreflight(t *testing.T) {
	r := New(testConfig(), nil, pingHandler{})
	r.Setup()

	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRouterAppliesResponseCache(t *testing.T) {
	cache := middleware.NewResponseCache(time.Minute, "/api/ping")
	r := New(testConfig(), cache, pingHandler{})
	r.Setup()

	first := httptest.NewRecorder()
	r.Engine().ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	second := httptest.NewRecorder()
	r.Engine().ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}
