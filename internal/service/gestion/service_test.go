package gestion

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalops/estadia-api/internal/model"
	"github.com/hospitalops/estadia-api/internal/store"
)

func seededService() *Service {
	st := store.New()
	st.Replace(&store.Snapshot{
		Gestiones: []*model.GestionRecord{
			{Episode: "EP-1", RequestedAction: "Solicitud de rescate"},
			{Episode: "EP-2", RequestedAction: "Evaluación social"},
			{Episode: "EP-1", RequestedAction: "Gestión de convenio"},
		},
	})
	return NewService(st, zerolog.Nop())
}

func TestForEpisode(t *testing.T) {
	svc := seededService()

	res := svc.ForEpisode("EP-1")
	assert.Equal(t, "EP-1", res.EpisodeID)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Episodes, 2)
	assert.Equal(t, "Solicitud de rescate", res.Episodes[0].RequestedAction)
}

func TestForEpisodeNormalizesInput(t *testing.T) {
	svc := seededService()

	res := svc.ForEpisode("  ep-2  ")
	assert.Equal(t, "ep-2", res.EpisodeID)
	assert.Equal(t, 1, res.Total)
}

func TestForEpisodeUnknown(t *testing.T) {
	res := seededService().ForEpisode("EP-999")
	assert.Equal(t, 0, res.Total)
	assert.Empty(t, res.Episodes)
}
