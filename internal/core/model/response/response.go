package response

import "todolist/internal/core/domain"

type TodoMessage struct {
	Message string       `json:"message"`
	Todo    *domain.Todo `json:"todo,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Errors  []ValidationError `json:"errors"`
	Details any               `json:"details,omitempty"`
}

// ErrorResponse keeps a top-level message next to the structured error so
// clients that only read "message" keep working.
type ErrorResponse struct {
	Message string        `json:"message"`
	Error   ResponseError `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Todos  int    `json:"todos"`
}

type BoardResponse struct {
	Sort domain.SortMode `json:"sort"`
	domain.Buckets
}
