package port

import (
	"context"
	"time"

	"todolist/internal/core/domain"
)

// TodoStore persists the whole to-do collection as one unit.
type TodoStore interface {
	Load(ctx context.Context) ([]domain.Todo, error)
	Save(ctx context.Context, todos []domain.Todo) error
}

type TodoService interface {
	List(ctx context.Context) ([]domain.Todo, error)
	Create(ctx context.Context, todo domain.NewTodo) (domain.Todo, error)
	Update(ctx context.Context, id int, patch domain.TodoPatch) (domain.Todo, error)
	Delete(ctx context.Context, id int) error
	ToggleDone(ctx context.Context, id int) (domain.Todo, error)
	Board(ctx context.Context, mode domain.SortMode) (domain.Buckets, error)
}

// ListCache holds the last loaded collection between reads.
type ListCache interface {
	Get(ctx context.Context) ([]domain.Todo, bool, error)
	Set(ctx context.Context, todos []domain.Todo, ttl time.Duration) error
	Invalidate(ctx context.Context) error
	Close() error
}
