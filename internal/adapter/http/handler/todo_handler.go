package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	. "todolist/internal/adapter/http/helper"
	. "todolist/internal/adapter/http/validation"
	"todolist/internal/core/domain"
	"todolist/internal/core/model/request"
	"todolist/internal/core/model/response"
	"todolist/internal/core/port"
	"todolist/internal/core/util"
	"todolist/internal/shared"
	. "todolist/pkg/tracing"
)

type TodoHandler struct {
	svc    port.TodoService
	Logger *shared.LokiLogger
}

func NewTodoHandler(svc port.TodoService, logger *shared.LokiLogger) *TodoHandler {
	if logger == nil {
		logger = shared.NewNopLogger()
	}

	return &TodoHandler{
		svc:    svc,
		Logger: logger,
	}
}

func (t *TodoHandler) GetAllTodos(c *gin.Context) {
	ctx, span := t.startSpan(c, "GetAllTodos")
	defer span.End()

	todos, err := t.svc.List(ctx)

	if err != nil {
		t.handleError(c, ctx, span, "list to-dos", err)
		return
	}

	span.SetAttributes(attribute.Int("todo.count", len(todos)))

	c.JSON(http.StatusOK, todos)
}

func (t *TodoHandler) GetBoard(c *gin.Context) {
	ctx, span := t.startSpan(c, "GetBoard")
	defer span.End()

	mode, err := domain.ParseSortMode(c.Query("sort"))

	if err != nil {
		SendBadRequestError(c, "sort", err.Error())
		return
	}

	span.SetAttributes(attribute.String("todo.sort", string(mode)))

	buckets, err := t.svc.Board(ctx, mode)

	if err != nil {
		t.handleError(c, ctx, span, "build board", err)
		return
	}

	c.JSON(http.StatusOK, response.BoardResponse{
		Sort:    mode,
		Buckets: buckets,
	})
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx, span := t.startSpan(c, "CreateTodo")
	defer span.End()

	params, err := util.ParamsFromBody[request.CreateTodoRequest](c)

	if err != nil {
		SendBadRequestError(c, "body", err.Error())
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	todo, err := t.svc.Create(ctx, params.ToDomain())

	if err != nil {
		t.handleError(c, ctx, span, "create to-do", err)
		return
	}

	span.SetAttributes(attribute.Int("todo.id", todo.ID))

	SendTodo(c, MessageAdded, todo)
}

func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	ctx, span := t.startSpan(c, "UpdateTodo")
	defer span.End()

	id, ok := todoID(c)

	if !ok {
		SendNotFoundError(c)
		return
	}

	params, err := util.ParamsFromBody[request.PatchTodoRequest](c)

	if err != nil {
		SendBadRequestError(c, "body", err.Error())
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	if !params.MatchesID(id) {
		SendFieldError(c, "id", "id must match the to-do being updated")
		return
	}

	todo, err := t.svc.Update(ctx, id, params.ToDomain())

	if err != nil {
		t.handleError(c, ctx, span, "update to-do", err)
		return
	}

	SendTodo(c, MessageUpdated, todo)
}

func (t *TodoHandler) ToggleTodo(c *gin.Context) {
	ctx, span := t.startSpan(c, "ToggleTodo")
	defer span.End()

	id, ok := todoID(c)

	if !ok {
		SendNotFoundError(c)
		return
	}

	todo, err := t.svc.ToggleDone(ctx, id)

	if err != nil {
		t.handleError(c, ctx, span, "toggle to-do", err)
		return
	}

	SendTodo(c, MessageUpdated, todo)
}

func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	ctx, span := t.startSpan(c, "DeleteTodo")
	defer span.End()

	id, ok := todoID(c)

	if !ok {
		SendNotFoundError(c)
		return
	}

	if err := t.svc.Delete(ctx, id); err != nil {
		t.handleError(c, ctx, span, "delete to-do", err)
		return
	}

	SendMessage(c, http.StatusOK, MessageDeleted)
}

// Health reports whether the store can be read.
func (t *TodoHandler) Health(c *gin.Context) {
	todos, err := t.svc.List(c.Request.Context())

	if err != nil {
		t.Logger.ErrorWithTrace(c.Request.Context(), "Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, response.HealthResponse{Status: "unavailable"})
		return
	}

	c.JSON(http.StatusOK, response.HealthResponse{Status: "ok", Todos: len(todos)})
}

func (t *TodoHandler) startSpan(c *gin.Context, operation string) (context.Context, trace.Span) {
	return CreateChildSpan(c.Request.Context(), "handler.todo."+operation, []attribute.KeyValue{
		attribute.String("handler.operation", operation),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})
}

func (t *TodoHandler) handleError(c *gin.Context, ctx context.Context, span trace.Span, action string, err error) {
	switch {
	case errors.Is(err, domain.ErrTodoNotFound):
		SendNotFoundError(c)

	case errors.Is(err, domain.ErrInvalidTodo):
		SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid to-do", []response.ValidationError{
			{Field: "todo", Message: err.Error()},
		})

	default:
		AddSpanError(span, err)

		t.Logger.ErrorWithTrace(ctx, "Failed to "+action,
			zap.Error(err),
			zap.String("request_id", shared.GetRequestID(c)))

		SendInternalError(c, "Could not "+action)
	}
}

// todoID parses the :id path segment. Anything that is not an integer can
// never match a stored to-do.
func todoID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))

	if err != nil {
		return 0, false
	}

	return id, true
}
