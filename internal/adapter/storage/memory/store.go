package memory

import (
	"context"
	"slices"
	"sync"

	"todolist/internal/core/domain"
	"todolist/internal/core/port"
)

// Store keeps the collection in process memory. Load and Save copy, so
// callers never share a backing array with the store.
type Store struct {
	mu    sync.RWMutex
	todos []domain.Todo
	saves int
}

func NewStore(seed ...domain.Todo) *Store {
	return &Store{todos: slices.Clone(seed)}
}

var _ port.TodoStore = (*Store)(nil)

func (s *Store) Load(ctx context.Context) ([]domain.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Todo, len(s.todos))
	copy(out, s.todos)

	return out, nil
}

func (s *Store) Save(ctx context.Context, todos []domain.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.todos = slices.Clone(todos)
	s.saves++

	return nil
}

// Saves reports how many times Save succeeded.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.saves
}
