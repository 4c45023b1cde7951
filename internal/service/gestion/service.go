package gestion

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/hospitalops/estadia-api/internal/model"
	"github.com/hospitalops/estadia-api/internal/store"
)

// Service answers per-episode gestión lookups from the current snapshot.
type Service struct {
	store  *store.Store
	logger zerolog.Logger
}

func NewService(store *store.Store, logger zerolog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ForEpisode returns every gestión record whose episode matches the given
// id. An unknown episode is not an error: the dashboard shows an empty
// gestión panel, so the response is a zero-total envelope.
func (s *Service) ForEpisode(episodeID string) *model.EpisodeGestiones {
	want := strings.TrimSpace(episodeID)

	var matched []*model.GestionRecord
	for _, g := range s.store.Current().Gestiones {
		if strings.EqualFold(g.Episode, want) {
			matched = append(matched, g)
		}
	}

	return &model.EpisodeGestiones{
		EpisodeID: want,
		Total:     len(matched),
		Episodes:  matched,
	}
}
