package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cachedEngine(rc *ResponseCache) (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)
	hits := 0

	engine := gin.New()
	engine.Use(rc.Middleware())
	engine.GET("/api/stats", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"hits": hits})
	})
	engine.GET("/api/patients", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"hits": hits})
	})
	return engine, &hits
}

func get(engine *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestResponseCacheMemoizesConfiguredPath(t *testing.T) {
	rc := NewResponseCache(time.Minute, "/api/stats")
	engine, hits := cachedEngine(rc)

	first := get(engine, "/api/stats")
	second := get(engine, "/api/stats")

	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 1, *hits, "second request served from cache")
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestResponseCacheIgnoresOtherPaths(t *testing.T) {
	rc := NewResponseCache(time.Minute, "/api/stats")
	engine, hits := cachedEngine(rc)

	get(engine, "/api/patients")
	get(engine, "/api/patients")
	assert.Equal(t, 2, *hits)
}

func TestResponseCacheKeyIncludesQuery(t *testing.T) {
	rc := NewResponseCache(time.Minute, "/api/stats")
	engine, hits := cachedEngine(rc)

	for i := 0; i < 3; i++ {
		get(engine, "/api/stats?x="+strconv.Itoa(i))
	}
	assert.Equal(t, 3, *hits)
}

func TestResponseCacheFlush(t *testing.T) {
	rc := NewResponseCache(time.Minute, "/api/stats")
	engine, hits := cachedEngine(rc)

	get(engine, "/api/stats")
	rc.Flush()
	get(engine, "/api/stats")
	assert.Equal(t, 2, *hits)
}
