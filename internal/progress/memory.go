package progress

import (
	"context"
	"slices"
	"sync"

	"github.com/slateworks/dimsim/internal/shop"
)

type scenarioKey struct {
	seed       uint32
	difficulty shop.Difficulty
}

// InMemoryStore implements Store without persistence, for tests and for
// callers that disable progress tracking.
type InMemoryStore struct {
	mu        sync.RWMutex
	scenarios map[scenarioKey]*ScenarioProgress
}

// NewInMemoryStore creates a new in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		scenarios: make(map[scenarioKey]*ScenarioProgress),
	}
}

// RecordAttempt folds an attempt into the scenario's history.
func (s *InMemoryStore) RecordAttempt(ctx context.Context, seed uint32, difficulty shop.Difficulty, attempt AttemptRecord) (RecordStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scenarioKey{seed: seed, difficulty: difficulty}
	p, ok := s.scenarios[key]
	if !ok {
		p = &ScenarioProgress{Seed: seed, Difficulty: difficulty}
		s.scenarios[key] = p
	}
	return applyAttempt(p, attempt), nil
}

// Scenario returns a copy of the progress for one scenario, or nil.
func (s *InMemoryStore) Scenario(ctx context.Context, seed uint32, difficulty shop.Difficulty) (*ScenarioProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.scenarios[scenarioKey{seed: seed, difficulty: difficulty}]
	if !ok {
		return nil, nil
	}
	out := *p
	out.Attempts = slices.Clone(p.Attempts)
	return &out, nil
}

// Scenarios returns every tracked scenario ordered by seed, then
// difficulty.
func (s *InMemoryStore) Scenarios(ctx context.Context) ([]ScenarioProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ScenarioProgress, 0, len(s.scenarios))
	for _, p := range s.scenarios {
		cp := *p
		cp.Attempts = slices.Clone(p.Attempts)
		out = append(out, cp)
	}
	slices.SortFunc(out, func(a, b ScenarioProgress) int {
		if a.Seed != b.Seed {
			if a.Seed < b.Seed {
				return -1
			}
			return 1
		}
		switch {
		case a.Difficulty < b.Difficulty:
			return -1
		case a.Difficulty > b.Difficulty:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
