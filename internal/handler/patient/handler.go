package patient

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hospitalops/estadia-api/internal/handler"
	"github.com/hospitalops/estadia-api/internal/model"
	"github.com/hospitalops/estadia-api/internal/service/loader"
	"github.com/hospitalops/estadia-api/internal/service/patient"
	"github.com/hospitalops/estadia-api/internal/store"
	"github.com/hospitalops/estadia-api/pkg/errors"
)

type Handler struct {
	service *patient.Service
	loader  *loader.Service
	store   *store.Store
}

func NewHandler(service *patient.Service, loader *loader.Service, store *store.Store) *Handler {
	return &Handler{service: service, loader: loader, store: store}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/patients", h.List)
	r.POST("/patients", h.Create)
	r.GET("/patients/:id", h.Get)
	r.GET("/stats", h.Stats)
	r.GET("/services", h.Services)
	r.POST("/reload", h.Reload)
}

// List handles GET /api/patients with paging and filter query params.
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(patient.DefaultPageSize)))

	filters := model.PatientFilters{
		Search:  c.Query("search"),
		Service: c.Query("service"),
		Risk:    c.Query("risk"),
		Status:  c.Query("status"),
	}
	if v := c.Query("ageMin"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.Error(errors.BadRequest("ageMin debe ser numérico", err))
			return
		}
		filters.AgeMin = &n
	}
	if v := c.Query("ageMax"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.Error(errors.BadRequest("ageMax debe ser numérico", err))
			return
		}
		filters.AgeMax = &n
	}

	c.JSON(http.StatusOK, h.service.List(filters, page, limit))
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Stats())
}

func (h *Handler) Services(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Services())
}

// Create adds a display-only patient that lives until the next reload.
func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.BadRequest("cuerpo de solicitud inválido", err))
		return
	}

	p, err := h.service.CreateOverlay(&req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Reload rebuilds the snapshot from the CSVs on disk.
func (h *Handler) Reload(c *gin.Context) {
	if err := h.loader.Reload(); err != nil {
		c.Error(errors.Internal(err))
		return
	}

	snap := h.store.Current()
	c.JSON(http.StatusOK, handler.ReloadResponse{
		Message:   "Datos recargados correctamente",
		Patients:  len(snap.Patients),
		Gestiones: len(snap.Gestiones),
		RowErrors: len(snap.RowErrors),
	})
}
