package loader

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hospitalops/estadia-api/internal/ingest"
	"github.com/hospitalops/estadia-api/internal/store"
	"github.com/hospitalops/estadia-api/pkg/metrics"
)

// Flusher invalidates cached responses after a snapshot swap. The HTTP
// response cache satisfies it.
type Flusher interface {
	Flush()
}

// OverlayClearer drops manually created patients on reload.
type OverlayClearer interface {
	ClearOverlay()
}

// Service rebuilds the in-memory snapshot from the two CSV exports and swaps
// it into the store. The patients file is mandatory; the gestión file is
// optional and its absence only logs a warning.
type Service struct {
	pipeline     *ingest.Pipeline
	store        *store.Store
	patientsPath string
	gestionPath  string
	overlay      OverlayClearer
	cache        Flusher
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

func NewService(
	pipeline *ingest.Pipeline,
	store *store.Store,
	patientsPath, gestionPath string,
	overlay OverlayClearer,
	cache Flusher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		pipeline:     pipeline,
		store:        store,
		patientsPath: patientsPath,
		gestionPath:  gestionPath,
		overlay:      overlay,
		cache:        cache,
		metrics:      m,
		logger:       logger,
	}
}

// Reload builds a complete replacement snapshot and swaps it in. On error
// the previous snapshot stays active untouched.
func (s *Service) Reload() error {
	start := time.Now()

	patients, rowErrors, err := s.pipeline.IngestPatients(s.patientsPath)
	if err != nil {
		return err
	}

	snap := &store.Snapshot{
		Patients:  patients,
		RowErrors: rowErrors,
		LoadedAt:  time.Now(),
	}

	if s.gestionPath != "" {
		gestiones, gesErrors, err := s.pipeline.IngestGestiones(s.gestionPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				s.logger.Warn().Str("file", s.gestionPath).Msg("archivo de gestiones ausente, panel de gestión quedará vacío")
			} else {
				s.logger.Error().Err(err).Str("file", s.gestionPath).Msg("no se pudo leer el archivo de gestiones")
			}
		} else {
			snap.Gestiones = gestiones
			snap.RowErrors = append(snap.RowErrors, gesErrors...)
		}
	}

	s.store.Replace(snap)
	if s.overlay != nil {
		s.overlay.ClearOverlay()
	}
	if s.cache != nil {
		s.cache.Flush()
	}
	s.observe(snap, start)

	s.logger.Info().
		Int("patients", len(snap.Patients)).
		Int("gestiones", len(snap.Gestiones)).
		Int("row_errors", len(snap.RowErrors)).
		Dur("elapsed", time.Since(start)).
		Msg("snapshot recargado")
	return nil
}

func (s *Service) observe(snap *store.Snapshot, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.Reloads.Inc()
	s.metrics.ReloadLatency.Observe(time.Since(start).Seconds())
	s.metrics.RowsIngested.WithLabelValues("patients").Add(float64(len(snap.Patients)))
	s.metrics.RowsIngested.WithLabelValues("gestion").Add(float64(len(snap.Gestiones)))
	s.metrics.RowErrors.WithLabelValues("patients").Add(float64(len(snap.RowErrors)))
	s.metrics.PatientsLoaded.Set(float64(len(snap.Patients)))
	s.metrics.GestionesLoaded.Set(float64(len(snap.Gestiones)))

	for _, e := range snap.RowErrors {
		if strings.Contains(e, "id sintético") {
			s.metrics.SyntheticIDs.Inc()
		}
	}
}
