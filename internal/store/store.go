package store

import (
	"sync/atomic"
	"time"

	"github.com/hospitalops/estadia-api/internal/model"
)

// Snapshot is one immutable, fully-built view of the loaded data. Readers
// always see a consistent snapshot: a reload builds a complete replacement
// off to the side and swaps it in atomically, so there is no window where a
// request observes a half-loaded dataset.
type Snapshot struct {
	Patients  []*model.PatientEpisode
	Gestiones []*model.GestionRecord
	RowErrors []string
	LoadedAt  time.Time
}

// Store holds the current snapshot behind an atomic pointer.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// New returns a store seeded with an empty snapshot so readers never see nil.
func New() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{LoadedAt: time.Now()})
	return s
}

// Current returns the active snapshot. Callers must treat it as read-only.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Replace swaps in a new snapshot. In-flight readers keep the one they
// already loaded.
func (s *Store) Replace(snap *Snapshot) {
	if snap.LoadedAt.IsZero() {
		snap.LoadedAt = time.Now()
	}
	s.current.Store(snap)
}
