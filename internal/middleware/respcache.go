package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

type cacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *cacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// ResponseCache memoizes GET responses for the hot aggregate endpoints.
// The loader flushes it on every snapshot swap, so the TTL only bounds
// staleness between identical requests against the same snapshot.
type ResponseCache struct {
	cache *gocache.Cache
	paths map[string]struct{}
}

// NewResponseCache caches only the listed request paths; everything else
// passes through untouched.
func NewResponseCache(ttl time.Duration, paths ...string) *ResponseCache {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return &ResponseCache{
		cache: gocache.New(ttl, 2*ttl),
		paths: set,
	}
}

// Flush drops every cached response. Called after each reload.
func (rc *ResponseCache) Flush() {
	rc.cache.Flush()
}

func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		if _, ok := rc.paths[c.Request.URL.Path]; !ok {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if hit, ok := rc.cache.Get(key); ok {
			resp := hit.(*cachedResponse)
			c.Data(resp.status, resp.contentType, resp.body)
			c.Abort()
			return
		}

		w := &cacheWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w
		c.Next()

		if status := c.Writer.Status(); status == http.StatusOK {
			rc.cache.SetDefault(key, &cachedResponse{
				status:      status,
				contentType: w.Header().Get("Content-Type"),
				body:        w.body.Bytes(),
			})
		}
	}
}
