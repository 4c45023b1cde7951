package patient

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hospitalops/estadia-api/internal/model"
	"github.com/hospitalops/estadia-api/internal/normalize"
	"github.com/hospitalops/estadia-api/internal/risk"
	"github.com/hospitalops/estadia-api/internal/store"
	"github.com/hospitalops/estadia-api/pkg/errors"
	"github.com/hospitalops/estadia-api/pkg/validator"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Service answers all patient read queries from the current store snapshot.
// It also carries the overlay: patients created through the API that exist
// only in memory, are listed ahead of the CSV data and vanish on reload.
type Service struct {
	store      *store.Store
	classifier *risk.Classifier
	logger     zerolog.Logger

	mu      sync.RWMutex
	overlay []*model.PatientEpisode
}

func NewService(store *store.Store, classifier *risk.Classifier, logger zerolog.Logger) *Service {
	return &Service{
		store:      store,
		classifier: classifier,
		logger:     logger,
	}
}

// List applies filters, then paginates. Pages are 1-based; a page past the
// end returns an empty list with the real total so clients can re-clamp.
func (s *Service) List(filters model.PatientFilters, page, limit int) *model.PatientPage {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	all := s.combined()
	filtered := make([]*model.PatientEpisode, 0, len(all))
	for _, p := range all {
		if matches(p, filters) {
			filtered = append(filtered, p)
		}
	}

	total := len(filtered)
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &model.PatientPage{
		Patients:   filtered[start:end],
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// Get looks an episode up by id, overlay first.
func (s *Service) Get(id string) (*model.PatientEpisode, error) {
	for _, p := range s.combined() {
		if p.ID == id || p.EpisodeID == id {
			return p, nil
		}
	}
	return nil, errors.NotFound("Paciente", nil)
}

// Stats aggregates the filtered view in one pass. Averages are rounded to
// one decimal and zero-guarded so an empty hospital never yields NaN.
func (s *Service) Stats() *model.PatientStats {
	all := s.combined()

	stats := &model.PatientStats{Total: len(all)}
	services := make(map[string]struct{})
	diagnoses := make(map[string]struct{})
	var ageSum, staySum int

	for _, p := range all {
		switch p.Sex {
		case model.SexMale:
			stats.Hombres++
		default:
			stats.Mujeres++
		}

		switch p.Status {
		case model.PatientStatusActive:
			stats.Activos++
		case model.PatientStatusPendingDischarge:
			stats.AltaPendiente++
		case model.PatientStatusDischarged:
			stats.DadosAlta++
		}

		switch p.RiskTier {
		case model.RiskTierRed:
			stats.RiesgoRojo++
		case model.RiskTierYellow:
			stats.RiesgoAmarillo++
		default:
			stats.RiesgoVerde++
		}

		ageSum += p.Age
		staySum += p.LengthOfStayDays
		if p.Service != "" {
			services[p.Service] = struct{}{}
		}
		if p.Diagnosis != "" {
			diagnoses[p.Diagnosis] = struct{}{}
		}
	}

	if stats.Total > 0 {
		stats.EdadPromedio = round1(float64(ageSum) / float64(stats.Total))
		stats.EstanciaPromedio = round1(float64(staySum) / float64(stats.Total))
	}
	stats.ServiciosUnicos = len(services)
	stats.DiagnosticosUnicos = len(diagnoses)
	return stats
}

// Services returns the distinct non-empty service names, sorted.
func (s *Service) Services() []string {
	seen := make(map[string]struct{})
	for _, p := range s.combined() {
		if p.Service != "" {
			seen[p.Service] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for svc := range seen {
		out = append(out, svc)
	}
	sort.Strings(out)
	return out
}

// CreateOverlay registers a display-only patient. It lives until the next
// reload and is never written back to the CSVs.
func (s *Service) CreateOverlay(req *model.CreatePatientRequest) (*model.PatientEpisode, error) {
	if !validator.ValidateRUT(req.RUT) {
		return nil, errors.BadRequest("RUT inválido", nil)
	}

	now := time.Now()
	admission := now
	if t := normalize.ParseDate(req.AdmissionDate); t != nil {
		admission = *t
	}
	stay := normalize.DaysBetween(admission, now)

	sex := req.Sex
	if sex != model.SexMale && sex != model.SexFemale {
		sex = model.SexFemale
	}

	p := &model.PatientEpisode{
		ID:               "manual-" + now.Format("20060102150405"),
		EpisodeID:        "Sin episodio",
		Name:             req.Name,
		RUT:              validator.FormatRUT(req.RUT),
		Age:              req.Age,
		Sex:              sex,
		Diagnosis:        orDefault(req.Diagnosis, "Sin diagnóstico"),
		Service:          orDefault(req.Service, "Sin servicio"),
		AdmissionDate:    admission,
		LengthOfStayDays: stay,
		Insurance:        orDefault(req.Insurance, "Sin previsión"),
		RiskTier:         s.classifier.Classify(stay, nil, "", ""),
		Status:           s.classifier.DeriveStatus(nil, stay),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	s.mu.Lock()
	s.overlay = append(s.overlay, p)
	s.mu.Unlock()

	s.logger.Info().Str("id", p.ID).Msg("paciente manual agregado a la vista")
	return p, nil
}

// ClearOverlay drops all manually created patients. Called on every reload.
func (s *Service) ClearOverlay() {
	s.mu.Lock()
	s.overlay = nil
	s.mu.Unlock()
}

// combined returns overlay patients ahead of the snapshot. The returned
// slice is freshly allocated; callers may not mutate the elements.
func (s *Service) combined() []*model.PatientEpisode {
	snap := s.store.Current()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.PatientEpisode, 0, len(s.overlay)+len(snap.Patients))
	out = append(out, s.overlay...)
	out = append(out, snap.Patients...)
	return out
}

func matches(p *model.PatientEpisode, f model.PatientFilters) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.RUT), q) &&
			!strings.Contains(strings.ToLower(p.Diagnosis), q) {
			return false
		}
	}
	if f.Service != "" && !containsFold(p.Service, f.Service) {
		return false
	}
	if f.Risk != "" && !containsFold(string(p.RiskTier), f.Risk) {
		return false
	}
	if f.Status != "" && !containsFold(string(p.Status), f.Status) {
		return false
	}
	if f.AgeMin != nil && p.Age < *f.AgeMin {
		return false
	}
	if f.AgeMax != nil && p.Age > *f.AgeMax {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
