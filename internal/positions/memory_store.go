package positions

import (
	"fmt"
	"sync"

	apperrors "github.com/g-s-k-zoro/gsk-man-page/pkg/errors"
)

// MemoryStore is a process-local Store, used by the CLI and in tests.
type MemoryStore struct {
	mu     sync.Mutex
	points map[string]Point
	saves  int
}

// NewMemoryStore returns a store pre-populated with initial.
func NewMemoryStore(initial map[string]Point) *MemoryStore {
	points := make(map[string]Point, len(initial))
	for id, p := range initial {
		points[id] = p
	}
	return &MemoryStore{points: points}
}

func (s *MemoryStore) Load() map[string]Point {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Point, len(s.points))
	for id, p := range s.points {
		if p.Valid() {
			out[id] = p
		}
	}
	return out
}

func (s *MemoryStore) Save(id string, p Point) error {
	if id == "" {
		return apperrors.NewValidation("node id is required")
	}
	if !p.Valid() {
		return apperrors.NewValidation(fmt.Sprintf("position for %q is not finite", id))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.points[id] = p
	s.saves++
	return nil
}

// Saves returns how many successful writes the store has taken.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
