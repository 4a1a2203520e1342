// Package store owns the in-memory market state and keeps it in sync
// with the persisted record. It is the only component that touches the
// persistence backend after startup.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"veg_market/internal/domain/market"
	"veg_market/internal/domain/repository"
)

// State is the authoritative process state: the catalog keyed by
// normalized vegetable name and the append-only order log.
type State struct {
	Catalog map[string]market.Vegetable
	Orders  []market.Order
}

func newState() State {
	return State{Catalog: map[string]market.Vegetable{}}
}

// clone is a deep enough copy for rollback: Vegetable is a value type
// and Order is immutable, so copying the containers suffices.
func (st State) clone() State {
	out := State{
		Catalog: make(map[string]market.Vegetable, len(st.Catalog)),
		Orders:  make([]market.Order, len(st.Orders)),
	}
	for k, v := range st.Catalog {
		out.Catalog[k] = v
	}
	copy(out.Orders, st.Orders)
	return out
}

func (st State) snapshot() repository.Snapshot {
	snap := repository.Snapshot{
		Vegetables: make([]market.Vegetable, 0, len(st.Catalog)),
		Orders:     make([]market.Order, len(st.Orders)),
	}
	for _, v := range st.Catalog {
		snap.Vegetables = append(snap.Vegetables, v)
	}
	sort.Slice(snap.Vegetables, func(i, j int) bool {
		return snap.Vegetables[i].Name < snap.Vegetables[j].Name
	})
	copy(snap.Orders, st.Orders)
	return snap
}

func stateFromSnapshot(snap repository.Snapshot) State {
	st := newState()
	for _, v := range snap.Vegetables {
		st.Catalog[v.Name] = v
	}
	st.Orders = append(st.Orders, snap.Orders...)
	return st
}

// Store guards State with a single lock around every read-validate-write
// cycle; the HTTP adapter serves requests concurrently, so partial
// writes would otherwise break the stock invariant.
type Store struct {
	persistence repository.Persistence

	mu    sync.Mutex
	state State
}

func New(p repository.Persistence) *Store {
	return &Store{
		persistence: p,
		state:       newState(),
	}
}

// Load replaces the in-memory state with the persisted record. A missing
// record means a fresh install; a corrupt one returns
// market.ErrCorruptData and leaves the current state untouched.
func (s *Store) Load(ctx context.Context) error {
	snap, err := s.persistence.Read(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFromSnapshot(snap)
	return nil
}

// Mutate runs fn against the state and persists the result. If fn fails
// or the write fails, the previous state is restored, so callers observe
// all-or-nothing semantics including the persistence step.
func (s *Store) Mutate(ctx context.Context, fn func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state.clone()
	if err := fn(&s.state); err != nil {
		s.state = prev
		return err
	}
	if err := s.persistence.Write(ctx, s.state.snapshot()); err != nil {
		s.state = prev
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// View runs fn with read access to the state. fn must not retain
// references past its return.
func (s *Store) View(fn func(st State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// Backup copies the persisted record to a new backup artifact and
// returns its name. The in-memory state and the primary are untouched.
func (s *Store) Backup(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistence.Backup(ctx)
}

// Restore replaces state and primary record with the named backup. On
// any failure the previous state stays in place.
func (s *Store) Restore(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.persistence.ReadBackup(ctx, name)
	if err != nil {
		return err
	}
	prev := s.state
	s.state = stateFromSnapshot(snap)
	if err := s.persistence.Write(ctx, s.state.snapshot()); err != nil {
		s.state = prev
		return fmt.Errorf("persist restored state: %w", err)
	}
	return nil
}

// ClearAll empties catalog and history and persists the empty record.
// Irreversible without a prior backup; confirmation is the caller's job.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.Mutate(ctx, func(st *State) error {
		*st = newState()
		return nil
	})
}

// Backups lists available backup artifacts, newest first.
func (s *Store) Backups(ctx context.Context) ([]string, error) {
	return s.persistence.Backups(ctx)
}
