package factory

import (
	fab "github.com/Goldziher/fabricator"

	"todolist/internal/core/domain"
)

// NewTodo builds a T with random content. Priority and DueDate default to
// values that pass validation unless customData overrides them.
func NewTodo[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	data := map[string]any{
		"DueDate":  "",
		"Priority": domain.PriorityMedium,
		"IsDone":   false,
	}

	for _, custom := range customData {
		for k, v := range custom {
			data[k] = v
		}
	}

	return instance.Build(data)
}
