package portfolio

import (
	"fmt"
	"sync/atomic"

	"RenewraOracle/internal/logger"
	"RenewraOracle/internal/model"
)

// Store owns the active portfolio snapshot. Readers never lock; writers
// publish a complete new snapshot with a single atomic swap.
type Store struct {
	source  Source
	current atomic.Pointer[model.Portfolio]
}

// Open loads the document behind src and returns a Store holding it.
func Open(src Source) (*Store, error) {
	p, err := Load(src)
	if err != nil {
		return nil, err
	}
	s := &Store{source: src}
	s.current.Store(p)
	logger.Info("portfolio loaded from %s: %d projects", src.Name(), len(p.Projects))
	return s, nil
}

// NewStore wraps an already built snapshot. Reload fails on such a store
// unless a source is attached.
func NewStore(p *model.Portfolio) *Store {
	s := &Store{}
	s.current.Store(p)
	return s
}

// Snapshot returns the active portfolio. Callers must not modify it.
func (s *Store) Snapshot() *model.Portfolio {
	return s.current.Load()
}

// Replace publishes p as the active snapshot.
func (s *Store) Replace(p *model.Portfolio) {
	s.current.Store(p)
}

// SourceName returns the configured document location.
func (s *Store) SourceName() string {
	if s.source == nil {
		return ""
	}
	return s.source.Name()
}

// Reload reads the source again. The previous snapshot stays active on error.
func (s *Store) Reload() (*model.Portfolio, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: no source configured", ErrNotFound)
	}
	p, err := Load(s.source)
	if err != nil {
		return nil, err
	}
	s.current.Store(p)
	logger.Info("portfolio reloaded from %s: %d projects", s.source.Name(), len(p.Projects))
	return p, nil
}

// Project looks up a project in the active snapshot.
func (s *Store) Project(id string) (model.Project, bool) {
	return s.Snapshot().FindProject(id)
}
