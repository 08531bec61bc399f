package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"todolist/internal/core/domain"
	"todolist/internal/core/port"
	"todolist/internal/core/telemetry"
)

// TodoService runs every operation as load, transform in memory, save.
// Operations are serialized by mu, so writers inside one process never
// overwrite each other.
type TodoService struct {
	store     port.TodoStore
	telemetry port.Telemetry
	logger    *zap.Logger
	cache     port.ListCache
	cacheTTL  time.Duration
	now       func() time.Time
	mu        sync.Mutex
}

type Option func(*TodoService)

func WithTelemetry(probe port.Telemetry) Option {
	return func(ts *TodoService) {
		if probe != nil {
			ts.telemetry = probe
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(ts *TodoService) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

func WithListCache(cache port.ListCache, ttl time.Duration) Option {
	return func(ts *TodoService) {
		ts.cache = cache
		ts.cacheTTL = ttl
	}
}

// WithClock overrides the clock used to bucket to-dos by due date.
func WithClock(now func() time.Time) Option {
	return func(ts *TodoService) {
		if now != nil {
			ts.now = now
		}
	}
}

func NewTodoService(store port.TodoStore, opts ...Option) *TodoService {
	ts := &TodoService{
		store:     store,
		telemetry: telemetry.NewNoOpProbe(),
		logger:    zap.NewNop(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(ts)
	}

	return ts
}

func (ts *TodoService) List(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "List", nil)
	defer span.End()

	start := time.Now()

	ts.mu.Lock()
	todos, err := ts.load(ctx)
	ts.mu.Unlock()

	ts.telemetry.RecordServiceOperation(ctx, "List", time.Since(start), err)

	if err != nil {
		return nil, err
	}

	span.SetAttributes(map[string]interface{}{"todo.count": len(todos)})

	return todos, nil
}

func (ts *TodoService) Create(ctx context.Context, input domain.NewTodo) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "Create", map[string]interface{}{
		"todo.priority": string(input.Priority),
	})
	defer span.End()

	start := time.Now()

	if err := validateNew(input); err != nil {
		ts.telemetry.RecordServiceOperation(ctx, "Create", time.Since(start), err)
		return domain.Todo{}, err
	}

	var created domain.Todo

	err := ts.mutate(ctx, func(todos []domain.Todo) ([]domain.Todo, error) {
		created = input.Build(domain.NextID(todos))
		return append(todos, created), nil
	})

	ts.telemetry.RecordServiceOperation(ctx, "Create", time.Since(start), err)

	if err != nil {
		ts.logger.Error("Repository create failed", zap.Error(err), zap.String("title", input.Title))
		return domain.Todo{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "todo.created", created.ID, map[string]interface{}{
		"priority": string(created.Priority),
		"category": created.Category,
	})

	return created, nil
}

func (ts *TodoService) Update(ctx context.Context, id int, patch domain.TodoPatch) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "Update", map[string]interface{}{
		"todo.id":     id,
		"todo.fields": patch.Fields(),
	})
	defer span.End()

	start := time.Now()

	if err := validatePatch(patch); err != nil {
		ts.telemetry.RecordServiceOperation(ctx, "Update", time.Since(start), err)
		return domain.Todo{}, err
	}

	var updated domain.Todo

	err := ts.mutate(ctx, func(todos []domain.Todo) ([]domain.Todo, error) {
		i := domain.IndexOf(todos, id)

		if i == -1 {
			return nil, fmt.Errorf("update to-do %d: %w", id, domain.ErrTodoNotFound)
		}

		todos[i] = patch.ApplyTo(todos[i])
		updated = todos[i]

		return todos, nil
	})

	ts.telemetry.RecordServiceOperation(ctx, "Update", time.Since(start), err)

	if err != nil {
		return domain.Todo{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "todo.updated", id, map[string]interface{}{
		"fields": strings.Join(patch.Fields(), ","),
	})

	return updated, nil
}

// ToggleDone flips isDone of the stored entry.
func (ts *TodoService) ToggleDone(ctx context.Context, id int) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "ToggleDone", map[string]interface{}{
		"todo.id": id,
	})
	defer span.End()

	start := time.Now()

	var toggled domain.Todo

	err := ts.mutate(ctx, func(todos []domain.Todo) ([]domain.Todo, error) {
		i := domain.IndexOf(todos, id)

		if i == -1 {
			return nil, fmt.Errorf("toggle to-do %d: %w", id, domain.ErrTodoNotFound)
		}

		done := !todos[i].IsDone
		todos[i] = domain.TodoPatch{IsDone: &done}.ApplyTo(todos[i])
		toggled = todos[i]

		return todos, nil
	})

	ts.telemetry.RecordServiceOperation(ctx, "ToggleDone", time.Since(start), err)

	if err != nil {
		return domain.Todo{}, err
	}

	return toggled, nil
}

func (ts *TodoService) Delete(ctx context.Context, id int) error {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "Delete", map[string]interface{}{
		"todo.id": id,
	})
	defer span.End()

	start := time.Now()

	err := ts.mutate(ctx, func(todos []domain.Todo) ([]domain.Todo, error) {
		kept, removed := domain.RemoveByID(todos, id)

		if removed == 0 {
			return nil, fmt.Errorf("delete to-do %d: %w", id, domain.ErrTodoNotFound)
		}

		return kept, nil
	})

	ts.telemetry.RecordServiceOperation(ctx, "Delete", time.Since(start), err)

	if err != nil {
		return err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "todo.deleted", id, nil)

	return nil
}

// Board returns the collection sorted by mode and grouped into today,
// tomorrow and other relative to the service clock.
func (ts *TodoService) Board(ctx context.Context, mode domain.SortMode) (domain.Buckets, error) {
	todos, err := ts.List(ctx)

	if err != nil {
		ts.telemetry.RecordError(ctx, "Board", err, map[string]interface{}{"sort": string(mode)})
		return domain.Buckets{}, err
	}

	return domain.Arrange(todos, mode, ts.now()), nil
}

// mutate must not be called with mu held.
func (ts *TodoService) mutate(ctx context.Context, fn func([]domain.Todo) ([]domain.Todo, error)) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	todos, err := ts.store.Load(ctx)

	if err != nil {
		return err
	}

	next, err := fn(todos)

	if err != nil {
		return err
	}

	if err := ts.store.Save(ctx, next); err != nil {
		return err
	}

	ts.telemetry.RecordCollectionSize(ctx, len(next))
	ts.invalidate(ctx)

	return nil
}

func (ts *TodoService) load(ctx context.Context) ([]domain.Todo, error) {
	if ts.cache != nil {
		cached, found, err := ts.cache.Get(ctx)

		if err != nil {
			ts.logger.Warn("List cache read failed", zap.Error(err))
		} else if found {
			return cached, nil
		}
	}

	todos, err := ts.store.Load(ctx)

	if err != nil {
		return nil, err
	}

	ts.telemetry.RecordCollectionSize(ctx, len(todos))

	if ts.cache != nil {
		if err := ts.cache.Set(ctx, todos, ts.cacheTTL); err != nil {
			ts.logger.Warn("List cache write failed", zap.Error(err))
		}
	}

	return todos, nil
}

func (ts *TodoService) invalidate(ctx context.Context) {
	if ts.cache == nil {
		return
	}

	if err := ts.cache.Invalidate(ctx); err != nil {
		ts.logger.Warn("List cache invalidation failed", zap.Error(err))
	}
}

func validateNew(input domain.NewTodo) error {
	var errs []error

	if strings.TrimSpace(input.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}

	if input.Priority != "" && !input.Priority.IsValid() {
		errs = append(errs, fmt.Errorf("priority %q is not one of high, medium, low", input.Priority))
	}

	if err := validateDueDate(input.DueDate); err != nil {
		errs = append(errs, err)
	}

	return invalid(errs)
}

func validatePatch(patch domain.TodoPatch) error {
	var errs []error

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		errs = append(errs, errors.New("title must not be blank"))
	}

	if patch.Priority != nil && !patch.Priority.IsValid() {
		errs = append(errs, fmt.Errorf("priority %q is not one of high, medium, low", *patch.Priority))
	}

	if patch.DueDate != nil {
		if err := validateDueDate(*patch.DueDate); err != nil {
			errs = append(errs, err)
		}
	}

	return invalid(errs)
}

func validateDueDate(raw string) error {
	if !domain.ValidDueDate(raw) {
		return fmt.Errorf("dueDate %q is not a YYYY-MM-DD date", raw)
	}

	return nil
}

func invalid(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %w", domain.ErrInvalidTodo, errors.Join(errs...))
}
