package request

import "todolist/internal/core/domain"

type CreateTodoRequest struct {
	Title    string `json:"title" validate:"required,notblank,max=255"`
	DueDate  string `json:"dueDate" validate:"duedate"`
	Category string `json:"category" validate:"max=100"`
	Priority string `json:"priority" validate:"omitempty,oneof=high medium low"`
	IsDone   bool   `json:"isDone"`
}

func (r CreateTodoRequest) ToDomain() domain.NewTodo {
	return domain.NewTodo{
		Title:    r.Title,
		DueDate:  r.DueDate,
		Category: r.Category,
		Priority: domain.Priority(r.Priority),
		IsDone:   r.IsDone,
	}
}

// PatchTodoRequest only carries the keys present in the body. ID may echo
// the path id; it is never applied.
type PatchTodoRequest struct {
	ID       *int    `json:"id,omitempty"`
	Title    *string `json:"title,omitempty" validate:"omitnil,notblank,max=255"`
	DueDate  *string `json:"dueDate,omitempty" validate:"omitnil,duedate"`
	Category *string `json:"category,omitempty" validate:"omitnil,max=100"`
	Priority *string `json:"priority,omitempty" validate:"omitnil,oneof=high medium low"`
	IsDone   *bool   `json:"isDone,omitempty"`
}

func (r PatchTodoRequest) ToDomain() domain.TodoPatch {
	patch := domain.TodoPatch{
		Title:    r.Title,
		DueDate:  r.DueDate,
		Category: r.Category,
		IsDone:   r.IsDone,
	}

	if r.Priority != nil {
		p := domain.Priority(*r.Priority)
		patch.Priority = &p
	}

	return patch
}

// MatchesID reports whether the body id, when present, names the path id.
func (r PatchTodoRequest) MatchesID(id int) bool {
	return r.ID == nil || *r.ID == id
}
