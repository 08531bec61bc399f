// Package jsonfile keeps the to-do collection in a single pretty-printed
// JSON document on disk.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"todolist/internal/core/domain"
	"todolist/internal/core/port"
	tel "todolist/internal/core/telemetry"
)

const DefaultPath = "todos.json"

type Store struct {
	path        string
	failOpen    bool
	directWrite bool
	schema      *jsonschema.Schema
	logger      *zap.Logger
	telemetry   port.Telemetry
}

type Option func(*Store)

// WithFailOpen makes Load return an empty collection on any read or decode
// failure instead of ErrCorruptStore. The next Save then replaces the file.
func WithFailOpen(enabled bool) Option {
	return func(s *Store) {
		s.failOpen = enabled
	}
}

// WithDirectWrite overwrites the document in place instead of writing a
// temporary file and renaming it over the target.
func WithDirectWrite(enabled bool) Option {
	return func(s *Store) {
		s.directWrite = enabled
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithTelemetry(probe port.Telemetry) Option {
	return func(s *Store) {
		if probe != nil {
			s.telemetry = probe
		}
	}
}

func NewStore(path string, opts ...Option) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	s := &Store{
		path:      path,
		schema:    schema,
		logger:    zap.NewNop(),
		telemetry: tel.NewNoOpProbe(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load(ctx context.Context) ([]domain.Todo, error) {
	ctx, span := s.telemetry.StartStoreSpan(ctx, "Load", map[string]interface{}{
		"store.path":      s.path,
		"store.fail_open": s.failOpen,
	})
	defer span.End()

	start := time.Now()

	todos, err := s.read()

	if err != nil && s.failOpen {
		s.logger.Warn("Discarding unreadable to-do store",
			zap.String("path", s.path),
			zap.Error(err))

		todos, err = []domain.Todo{}, nil
	}

	s.telemetry.RecordStoreOperation(ctx, "Load", time.Since(start), err)

	if err != nil {
		return nil, err
	}

	span.SetAttributes(map[string]interface{}{"store.todos": len(todos)})

	return todos, nil
}

func (s *Store) Save(ctx context.Context, todos []domain.Todo) error {
	ctx, span := s.telemetry.StartStoreSpan(ctx, "Save", map[string]interface{}{
		"store.path":         s.path,
		"store.todos":        len(todos),
		"store.direct_write": s.directWrite,
	})
	defer span.End()

	start := time.Now()

	err := s.write(todos)

	s.telemetry.RecordStoreOperation(ctx, "Save", time.Since(start), err)

	return err
}

func (s *Store) read() ([]domain.Todo, error) {
	data, err := os.ReadFile(s.path)

	if errors.Is(err, os.ErrNotExist) {
		return []domain.Todo{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrCorruptStore, s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Todo{}, nil
	}

	return s.decode(data)
}

func (s *Store) decode(data []byte) ([]domain.Todo, error) {
	var document interface{}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	if err := decoder.Decode(&document); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrCorruptStore, s.path, err)
	}

	if err := s.schema.Validate(document); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrCorruptStore, s.path, schemaViolation(err))
	}

	var todos []domain.Todo

	if err := json.Unmarshal(data, &todos); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrCorruptStore, s.path, err)
	}

	seen := make(map[int]struct{}, len(todos))

	for _, t := range todos {
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate id %d", domain.ErrCorruptStore, s.path, t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	return todos, nil
}

func (s *Store) write(todos []domain.Todo) error {
	if todos == nil {
		todos = []domain.Todo{}
	}

	data, err := json.MarshalIndent(todos, "", "  ")
	if err != nil {
		return fmt.Errorf("encode to-dos: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}

	if s.directWrite {
		if err := os.WriteFile(s.path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", s.path, err)
		}
		return nil
	}

	return writeAtomic(s.path, data)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}

	return nil
}
