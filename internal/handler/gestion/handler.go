package gestion

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hospitalops/estadia-api/internal/service/gestion"
	"github.com/hospitalops/estadia-api/pkg/errors"
)

type Handler struct {
	service *gestion.Service
}

func NewHandler(service *gestion.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/patient/:episodioCmbd/gestion", h.ForEpisode)
}

// ForEpisode handles GET /api/patient/:episodioCmbd/gestion. An unknown
// episode returns an empty set, not a 404.
func (h *Handler) ForEpisode(c *gin.Context) {
	episodeID := strings.TrimSpace(c.Param("episodioCmbd"))
	if episodeID == "" {
		c.Error(errors.BadRequest("episodioCmbd es requerido", nil))
		return
	}
	c.JSON(http.StatusOK, h.service.ForEpisode(episodeID))
}
