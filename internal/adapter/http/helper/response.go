package helper

import (
	"net/http"

	"github.com/gin-gonic/gin"

	. "todolist/internal/adapter/http/validation"
	"todolist/internal/core/domain"
	"todolist/internal/core/model/response"
)

const (
	MessageAdded    = "To-do added successfully"
	MessageUpdated  = "To-do updated successfully"
	MessageDeleted  = "To-do deleted successfully"
	MessageNotFound = "To-do not found"
)

func SendTodo(c *gin.Context, message string, todo domain.Todo) {
	c.JSON(http.StatusOK, response.TodoMessage{
		Message: message,
		Todo:    &todo,
	})
}

func SendMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, response.TodoMessage{Message: message})
}

func SendError(c *gin.Context, statusCode int, code, message string, errors []response.ValidationError, details ...any) {
	if errors == nil {
		errors = []response.ValidationError{}
	}

	errorResponse := response.ErrorResponse{
		Message: message,
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid to-do", FormatValidationErrors(err))
}

// SendFieldError reports a single rule failure as VALIDATION_ERROR.
func SendFieldError(c *gin.Context, field string, message string) {
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid to-do", []response.ValidationError{
		{Field: field, Message: message},
	})
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	errors := []response.ValidationError{
		{
			Field:   "server",
			Message: message,
		},
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, errors, details...)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "BAD_REQUEST", message, errors)
}

func SendNotFoundError(c *gin.Context) {
	errors := []response.ValidationError{
		{
			Field:   "id",
			Message: MessageNotFound,
		},
	}

	SendError(c, http.StatusNotFound, "NOT_FOUND", MessageNotFound, errors)
}
