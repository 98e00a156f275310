// README: Route service; merges built-in, file and Redis routes into the table engines read.
package routes

import (
	"context"
	"fmt"
	"sync"

	"fleetdispatch/internal/logger"
	"fleetdispatch/internal/modules/scheduling"
)

type OverrideStore interface {
	Load(ctx context.Context) ([]Entry, error)
	Put(ctx context.Context, e Entry) error
}

// Service publishes an immutable RouteTable; every change builds a new table.
type Service struct {
	mu    sync.RWMutex
	base  scheduling.RouteTable
	table scheduling.RouteTable
	store OverrideStore
}

// NewService layers the file entries over base. store may be nil.
func NewService(base scheduling.RouteTable, fileEntries []Entry, store OverrideStore) *Service {
	b := base.Clone()
	apply(b, fileEntries)
	return &Service{base: b, table: b, store: store}
}

// Table returns the current table. Callers must not modify it.
func (s *Service) Table() scheduling.RouteTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Refresh reloads overrides from the store on top of the base table.
func (s *Service) Refresh(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	overrides, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load route overrides: %w", err)
	}
	next := s.base.Clone()
	apply(next, overrides)

	s.mu.Lock()
	s.table = next
	s.mu.Unlock()
	logger.InfoContext(ctx, "route table refreshed", "routes", len(next), "overrides", len(overrides))
	return nil
}

func (s *Service) Upsert(ctx context.Context, e Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.Put(ctx, e); err != nil {
			return fmt.Errorf("store route override: %w", err)
		}
	}

	s.mu.Lock()
	next := s.table.Clone()
	next.Set(e.Origin, e.Destination, e.Minutes)
	s.table = next
	s.mu.Unlock()
	logger.InfoContext(ctx, "route override saved", "origin", e.Origin, "destination", e.Destination, "minutes", e.Minutes)
	return nil
}

func apply(t scheduling.RouteTable, entries []Entry) {
	for _, e := range entries {
		t.Set(e.Origin, e.Destination, e.Minutes)
	}
}
