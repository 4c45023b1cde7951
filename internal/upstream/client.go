package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/hospitalops/estadia-api/internal/config"
	"github.com/hospitalops/estadia-api/pkg/circuitbreaker"
	"github.com/hospitalops/estadia-api/pkg/metrics"
)

// Result carries the remote backend's verbatim reply so the handler can pass
// status and body through unchanged.
type Result struct {
	StatusCode int
	Body       []byte
}

// Client forwards CSV uploads to the remote case-management ingestion
// backend. Transient failures are retried with backoff; a consistently
// failing backend trips the breaker so the dashboard fails fast instead of
// holding every upload for the full timeout.
type Client struct {
	ingestURL string
	http      *http.Client
	breaker   *circuitbreaker.CircuitBreaker
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewClient(cfg config.UpstreamConfig, m *metrics.Metrics, logger zerolog.Logger) *Client {
	retry := retryablehttp.NewClient()
	retry.RetryMax = cfg.RetryMax
	retry.HTTPClient = &http.Client{Timeout: cfg.Timeout()}
	retry.Logger = nil

	return &Client{
		ingestURL: cfg.IngestURL,
		http:      retry.StandardClient(),
		breaker: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "gestion-ingest",
			MaxFailures: 3,
			Cooldown:    30 * time.Second,
		}),
		metrics: m,
		logger:  logger,
	}
}

// ForwardCSV uploads the file as multipart field "file". A non-2xx reply is
// returned as a Result, not an error; only transport-level failures error
// out (and count against the breaker).
func (c *Client) ForwardCSV(ctx context.Context, filename string, file io.Reader) (*Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	var result *Result
	err = c.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ingestURL, &body)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read upstream response: %w", err)
		}
		result = &Result{StatusCode: resp.StatusCode, Body: respBody}
		return nil
	})
	if err != nil {
		c.observe("error")
		c.logger.Error().Err(err).Str("url", c.ingestURL).Msg("reenvío al backend de gestión falló")
		return nil, err
	}

	c.observe(strconv.Itoa(result.StatusCode))
	c.logger.Info().
		Str("file", filename).
		Int("status", result.StatusCode).
		Msg("CSV reenviado al backend de gestión")
	return result, nil
}

func (c *Client) observe(status string) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamRequests.WithLabelValues(status).Inc()
}
