package test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"todolist/internal/adapter/storage/jsonfile"
	"todolist/internal/core/domain"
)

// NewTempStore returns a file store rooted in a per-test directory, seeded
// with todos when any are given.
func NewTempStore(t testing.TB, todos ...domain.Todo) *jsonfile.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "todos.json")

	store, err := jsonfile.NewStore(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if len(todos) > 0 {
		if err := store.Save(context.Background(), todos); err != nil {
			t.Fatalf("Failed to seed store: %v", err)
		}
	}

	return store
}

// ReadTodosFile decodes the collection straight from disk.
func ReadTodosFile(t testing.TB, path string) []domain.Todo {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}

	var todos []domain.Todo
	if err := json.Unmarshal(data, &todos); err != nil {
		t.Fatalf("Failed to decode %s: %v", path, err)
	}

	return todos
}
