// Package store holds the reconciled local view of the railway network. All
// mutation goes through Apply (server events and transport signals) or
// AcceptOptimistically (local speculative acceptance). Rules are applied one at
// a time under a single lock, so no two rules ever interleave.
package store

import (
	"fmt"
	"math"
	"sync"

	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/domain"
)

// OptimisticPolicy controls the speculative KPI adjustment applied on a
// successful local acceptance.
type OptimisticPolicy struct {
	DelayStep      float64
	AcceptanceStep float64
	AcceptanceCap  float64
}

// DefaultOptimisticPolicy matches the backend's own adjustment
func DefaultOptimisticPolicy() OptimisticPolicy {
	return OptimisticPolicy{
		DelayStep:      2,
		AcceptanceStep: 1,
		AcceptanceCap:  95,
	}
}

// Provisional is a local acceptance not yet confirmed by the server
type Provisional struct {
	SuggestionID string `json:"suggestion_id"`
	ConflictID   string `json:"conflict_id"`
	Generation   uint64 `json:"generation"`
}

// Snapshot is an immutable copy of the store's state
type Snapshot struct {
	Version     uint64              `json:"version"`
	Connected   bool                `json:"connected"`
	Transport   string              `json:"transport,omitempty"`
	Trains      []domain.Train      `json:"trains"`
	Conflicts   []domain.Conflict   `json:"conflicts"`
	Suggestions []domain.Suggestion `json:"suggestions"`
	KPIs        domain.KPIMetrics   `json:"kpis"`
	Pending     []Provisional       `json:"pending"`
}

// Store is the single source of truth for the live collections
type Store struct {
	mu          sync.RWMutex
	policy      OptimisticPolicy
	version     uint64
	closed      bool
	connected   bool
	transport   string
	trains      []domain.Train
	conflicts   []domain.Conflict
	suggestions []domain.Suggestion
	kpis        domain.KPIMetrics
	pending     []Provisional

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan uint64
}

// New creates a store seeded with the given KPIs
func New(policy OptimisticPolicy, initial domain.KPIMetrics) *Store {
	return &Store{
		policy: policy,
		kpis:   initial,
		subs:   make(map[int]chan uint64),
	}
}

// Apply applies one event according to the reconciliation rules. Events
// arriving after Close are dropped.
func (s *Store) Apply(ev domain.Event) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrStoreClosed
	}

	switch e := ev.(type) {
	case domain.DataUpdate:
		s.applyDataUpdate(e)
	case domain.ConflictDetected:
		s.conflicts = append(s.conflicts, e.Conflicts...)
		s.suggestions = append(s.suggestions, e.Suggestions...)
	case domain.SuggestionImplemented:
		if e.KPIs != nil {
			s.kpis = *e.KPIs
		}
		s.conflicts = removeFirstConflict(s.conflicts, e.ConflictID)
		s.suggestions = removeFirstSuggestion(s.suggestions, e.SuggestionID)
		s.clearPending(func(p Provisional) bool {
			return p.SuggestionID == e.SuggestionID || p.ConflictID == e.ConflictID
		})
	case domain.KPIUpdate:
		s.kpis = e.KPIs
	case domain.ConnectivityChanged:
		s.connected = e.Connected
		s.transport = e.Transport
		if !e.Connected {
			s.transport = ""
		}
	default:
		s.mu.Unlock()
		return fmt.Errorf("unsupported event %T", ev)
	}

	s.version++
	v := s.version
	s.mu.Unlock()

	s.notify(v)
	return nil
}

func (s *Store) applyDataUpdate(e domain.DataUpdate) {
	if e.Trains != nil {
		s.trains = append([]domain.Train(nil), e.Trains...)
	}
	if e.Conflicts != nil {
		s.conflicts = append([]domain.Conflict(nil), e.Conflicts...)
		// the snapshot is authoritative for every conflict, confirmed or not
		s.pending = nil
	}
	if e.KPIs != nil {
		s.kpis = *e.KPIs
	}
}

// AcceptOptimistically applies a speculative acceptance after the backend
// acknowledged it. A later authoritative event overwrites whatever this sets.
func (s *Store) AcceptOptimistically(suggestionID, conflictID string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrStoreClosed
	}

	s.kpis.AvgDelayReduced -= s.policy.DelayStep
	s.kpis.SuggestionAcceptance = math.Min(s.policy.AcceptanceCap, s.kpis.SuggestionAcceptance+s.policy.AcceptanceStep)

	s.suggestions = removeAllSuggestions(s.suggestions, suggestionID)
	s.conflicts = removeAllConflicts(s.conflicts, conflictID)

	s.pending = append(s.pending, Provisional{
		SuggestionID: suggestionID,
		ConflictID:   conflictID,
		Generation:   s.version,
	})

	s.version++
	v := s.version
	s.mu.Unlock()

	s.notify(v)
	return nil
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Version:     s.version,
		Connected:   s.connected,
		Transport:   s.transport,
		Trains:      append([]domain.Train{}, s.trains...),
		Conflicts:   append([]domain.Conflict{}, s.conflicts...),
		Suggestions: append([]domain.Suggestion{}, s.suggestions...),
		KPIs:        s.kpis,
		Pending:     append([]Provisional{}, s.pending...),
	}
}

// Connected reports the last connectivity signal seen by the store
func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Subscribe returns a channel that receives the latest version after each
// mutation. Notifications coalesce: a slow reader only sees the newest one.
func (s *Store) Subscribe() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
			s.subMu.Unlock()
		})
	}
}

// Close drops all later mutations and closes subscriber channels
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.subMu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.subMu.Unlock()
}

func (s *Store) notify(version uint64) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- version:
		default:
			// drop the stale value so the reader sees the newest version
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- version:
			default:
			}
		}
	}
}

func (s *Store) clearPending(match func(Provisional) bool) {
	kept := s.pending[:0]
	for _, p := range s.pending {
		if !match(p) {
			kept = append(kept, p)
		}
	}
	s.pending = kept
}
