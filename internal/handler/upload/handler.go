package upload

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hospitalops/estadia-api/internal/handler"
	"github.com/hospitalops/estadia-api/internal/upstream"
	"github.com/hospitalops/estadia-api/pkg/errors"
)

// uploadRequest is what the dashboard sends: the CSV content inline as a
// string, not a multipart form.
type uploadRequest struct {
	CSVData  string `json:"csvData" binding:"required"`
	Filename string `json:"filename" binding:"required"`
}

// Handler receives CSV uploads. upload-csv stores the file locally next to
// the data files for a later reload; proxy-upload-csv forwards it to the
// remote case-management ingestion backend and relays the reply.
type Handler struct {
	uploadDir string
	client    *upstream.Client
	logger    zerolog.Logger
	now       func() time.Time
}

func NewHandler(uploadDir string, client *upstream.Client, logger zerolog.Logger) *Handler {
	return &Handler{
		uploadDir: uploadDir,
		client:    client,
		logger:    logger,
		now:       time.Now,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/upload-csv", h.Upload)
	r.POST("/proxy-upload-csv", h.ProxyUpload)
}

// Upload stores the CSV under a timestamped name so successive uploads
// never clobber each other. The data itself is only picked up by the next
// reload.
func (h *Handler) Upload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.BadRequest("csvData y filename son requeridos", err))
		return
	}

	name := timestampedName(req.Filename, h.now())
	dest := filepath.Join(h.uploadDir, name)
	if err := os.WriteFile(dest, []byte(req.CSVData), 0o644); err != nil {
		c.Error(errors.Internal(err))
		return
	}

	h.logger.Info().Str("file", dest).Int("size", len(req.CSVData)).Msg("CSV almacenado")
	c.JSON(http.StatusOK, handler.UploadResponse{
		Message:  "Archivo subido correctamente",
		Filename: name,
	})
}

// ProxyUpload forwards the CSV to the remote ingestion backend as a
// multipart upload. A JSON reply is passed through verbatim; a non-JSON
// success is wrapped so the dashboard always receives JSON.
func (h *Handler) ProxyUpload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.BadRequest("csvData y filename son requeridos", err))
		return
	}

	result, err := h.client.ForwardCSV(c.Request.Context(), req.Filename, strings.NewReader(req.CSVData))
	if err != nil {
		c.Error(errors.Upstream("No se pudo contactar el backend de gestión", err))
		return
	}

	if result.StatusCode < 200 || result.StatusCode >= 300 {
		c.JSON(result.StatusCode, gin.H{
			"error":  strings.TrimSpace(string(result.Body)),
			"status": result.StatusCode,
		})
		return
	}

	if json.Valid(result.Body) {
		c.Data(result.StatusCode, "application/json", result.Body)
		return
	}
	c.JSON(result.StatusCode, gin.H{"message": strings.TrimSpace(string(result.Body))})
}

// timestampedName turns "gestion.csv" into "gestion_2025-08-20T12-30-05.csv".
// Colons are replaced so the name is safe on every filesystem.
func timestampedName(original string, now time.Time) string {
	base := filepath.Base(original)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stamp := strings.ReplaceAll(now.Format("2006-01-02T15:04:05"), ":", "-")
	return stem + "_" + stamp + ext
}
