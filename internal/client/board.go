package client

import (
	"context"
	"slices"
	"sync"
	"time"

	"todolist/internal/core/domain"
	"todolist/internal/core/model/request"
)

// Board mirrors the server collection. Every mutation goes to the server
// first and the mirror only changes after the server accepted it.
type Board struct {
	client *Client
	mu     sync.Mutex
	todos  []domain.Todo
	sort   domain.SortMode
}

func NewBoard(client *Client) *Board {
	return &Board{client: client, sort: domain.SortDefault}
}

func (b *Board) Refresh(ctx context.Context) error {
	todos, err := b.client.List(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.todos = todos
	b.mu.Unlock()

	return nil
}

// Add creates a to-do from a form. Empty priority falls back to medium.
func (b *Board) Add(ctx context.Context, form request.CreateTodoRequest) (domain.Todo, error) {
	if form.Priority == "" {
		form.Priority = string(domain.DefaultPriority)
	}

	created, err := b.client.Create(ctx, form)
	if err != nil {
		return domain.Todo{}, err
	}

	b.mu.Lock()
	b.todos = append(b.todos, created)
	b.mu.Unlock()

	return created, nil
}

func (b *Board) Edit(ctx context.Context, id int, patch request.PatchTodoRequest) (domain.Todo, error) {
	updated, err := b.client.Update(ctx, id, patch)
	if err != nil {
		return domain.Todo{}, err
	}

	b.replace(updated)

	return updated, nil
}

// ToggleDone sends the negation of the mirrored isDone.
func (b *Board) ToggleDone(ctx context.Context, id int) (domain.Todo, error) {
	current, ok := b.Get(id)
	if !ok {
		return domain.Todo{}, domain.ErrTodoNotFound
	}

	done := !current.IsDone

	return b.Edit(ctx, id, request.PatchTodoRequest{IsDone: &done})
}

func (b *Board) Delete(ctx context.Context, id int) error {
	if err := b.client.Delete(ctx, id); err != nil {
		return err
	}

	b.mu.Lock()
	b.todos, _ = domain.RemoveByID(b.todos, id)
	b.mu.Unlock()

	return nil
}

func (b *Board) Get(id int) (domain.Todo, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i := domain.IndexOf(b.todos, id); i >= 0 {
		return b.todos[i], true
	}

	return domain.Todo{}, false
}

func (b *Board) Todos() []domain.Todo {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.todos)
}

func (b *Board) Sort() domain.SortMode {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.sort
}

func (b *Board) SetSort(mode domain.SortMode) {
	b.mu.Lock()
	b.sort = mode
	b.mu.Unlock()
}

// View arranges the mirror into today, tomorrow and other relative to now.
func (b *Board) View(now time.Time) domain.Buckets {
	b.mu.Lock()
	defer b.mu.Unlock()

	return domain.Arrange(b.todos, b.sort, now)
}

func (b *Board) replace(todo domain.Todo) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i := domain.IndexOf(b.todos, todo.ID); i >= 0 {
		b.todos[i] = todo
	}
}
