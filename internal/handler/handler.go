package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hospitalops/estadia-api/internal/store"
)

// HealthResponse reports service liveness plus snapshot freshness, which is
// what the operators actually look at when the dashboard shows stale data.
type HealthResponse struct {
	Status         string    `json:"status"`
	PatientsLoaded int       `json:"patientsLoaded"`
	LastModified   time.Time `json:"lastModified"`
	UptimeSeconds  float64   `json:"uptime"`
}

type HealthHandler struct {
	store   *store.Store
	started time.Time
}

func NewHealthHandler(store *store.Store) *HealthHandler {
	return &HealthHandler{store: store, started: time.Now()}
}

func (h *HealthHandler) Health(c *gin.Context) {
	snap := h.store.Current()
	c.JSON(http.StatusOK, HealthResponse{
		Status:         "OK",
		PatientsLoaded: len(snap.Patients),
		LastModified:   snap.LoadedAt,
		UptimeSeconds:  time.Since(h.started).Seconds(),
	})
}

// Metrics exposes the Prometheus registry.
func (h *HealthHandler) Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func (h *HealthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health", h.Health)
	r.GET("/health/metrics", h.Metrics())
}
