package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	. "todolist/pkg/test"

	"todolist/internal/adapter/storage/jsonfile"
	"todolist/internal/core/domain"
	"todolist/internal/core/model/response"
	"todolist/internal/core/port"
	"todolist/internal/core/service"

	factory "todolist/pkg/test/factory"
)

type TodoHandlerSuite struct {
	suite.Suite
	Store  *jsonfile.Store
	Router *gin.Engine
}

var ctx = context.Background()

func (s *TodoHandlerSuite) SetupTest() {
	s.Store = NewTempStore(s.T())

	svc := service.NewTodoService(s.Store, service.WithClock(func() time.Time {
		return time.Date(2024, 6, 10, 9, 0, 0, 0, time.Local)
	}))

	s.Router = setupTodoTestRouter(NewTodoHandler(svc, nil))
}

func TestTodoHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoHandlerSuite))
}

func setupTodoTestRouter(todoHandler *TodoHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.Use(gin.Recovery())

	router.GET("/healthz", todoHandler.Health)
	router.GET("/todos", todoHandler.GetAllTodos)
	router.GET("/todos/board", todoHandler.GetBoard)
	router.POST("/todos", todoHandler.CreateTodo)
	router.PATCH("/todos/:id", todoHandler.UpdateTodo)
	router.POST("/todos/:id/toggle", todoHandler.ToggleTodo)
	router.DELETE("/todos/:id", todoHandler.DeleteTodo)

	return router
}

func (s *TodoHandlerSuite) seed(todos ...domain.Todo) {
	s.Require().NoError(s.Store.Save(ctx, todos))
}

func (s *TodoHandlerSuite) request(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	return rr
}

func decode[T any](rr *httptest.ResponseRecorder) T {
	var out T
	Expect(json.Unmarshal(rr.Body.Bytes(), &out)).To(Succeed())
	return out
}

func (s *TodoHandlerSuite) TestGetAllTodosEmpty() {
	rr := s.request("GET", "/todos", "")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
	Expect(strings.TrimSpace(rr.Body.String())).To(Equal("[]"))
}

func (s *TodoHandlerSuite) TestGetAllTodosWithData() {
	first := factory.NewTodo[domain.Todo](map[string]any{"ID": 1, "Title": "Buy milk"})
	second := factory.NewTodo[domain.Todo](map[string]any{"ID": 2, "Title": "Call mom"})
	s.seed(first, second)

	rr := s.request("GET", "/todos", "")

	Expect(rr.Code).To(Equal(http.StatusOK))

	todos := decode[[]domain.Todo](rr)
	Expect(todos).To(Equal([]domain.Todo{first, second}))
}

func (s *TodoHandlerSuite) TestCreateTodo() {
	rr := s.request("POST", "/todos", `{"title":"Buy milk","dueDate":"2024-05-01","category":"Home","priority":"high"}`)

	Expect(rr.Code).To(Equal(http.StatusOK))

	data := decode[response.TodoMessage](rr)
	Expect(data.Message).To(Equal("To-do added successfully"))
	Expect(data.Todo).ToNot(BeNil())
	Expect(*data.Todo).To(Equal(domain.Todo{
		ID:       1,
		Title:    "Buy milk",
		DueDate:  "2024-05-01",
		Category: "Home",
		Priority: domain.PriorityHigh,
	}))

	Expect(ReadTodosFile(s.T(), s.Store.Path())).To(Equal([]domain.Todo{*data.Todo}))
}

func (s *TodoHandlerSuite) TestCreateTodoAssignsNextID() {
	s.seed(
		factory.NewTodo[domain.Todo](map[string]any{"ID": 1}),
		factory.NewTodo[domain.Todo](map[string]any{"ID": 5}),
	)

	rr := s.request("POST", "/todos", `{"title":"Next"}`)

	Expect(rr.Code).To(Equal(http.StatusOK))

	data := decode[response.TodoMessage](rr)
	Expect(data.Todo.ID).To(Equal(6))
	Expect(data.Todo.Priority).To(Equal(domain.PriorityMedium))
}

func (s *TodoHandlerSuite) TestCreateTodoValidationError() {
	rr := s.request("POST", "/todos", `{"title":"  ","priority":"urgent","dueDate":"tomorrow"}`)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	errorResponse := decode[response.ErrorResponse](rr)
	Expect(errorResponse.Error.Code).To(Equal("VALIDATION_ERROR"))

	fields := []string{}
	for _, e := range errorResponse.Error.Errors {
		fields = append(fields, e.Field)
	}
	Expect(fields).To(ConsistOf("title", "priority", "dueDate"))

	Expect(ReadTodosFile(s.T(), s.Store.Path())).To(BeEmpty())
}

func (s *TodoHandlerSuite) TestCreateTodoRejectsMalformedBody() {
	for _, body := range []string{`{"title":`, `{"title":"x","owner":"me"}`, `[]`} {
		rr := s.request("POST", "/todos", body)

		Expect(rr.Code).To(Equal(http.StatusBadRequest), body)
		Expect(decode[response.ErrorResponse](rr).Error.Code).To(Equal("BAD_REQUEST"))
	}
}

func (s *TodoHandlerSuite) TestUpdateTodoMergesFields() {
	s.seed(domain.Todo{ID: 3, Title: "Report", DueDate: "2024-03-01", Category: "Work", Priority: domain.PriorityLow})

	rr := s.request("PATCH", "/todos/3", `{"isDone":true,"priority":"high"}`)

	Expect(rr.Code).To(Equal(http.StatusOK))

	data := decode[response.TodoMessage](rr)
	Expect(data.Message).To(Equal("To-do updated successfully"))
	Expect(*data.Todo).To(Equal(domain.Todo{
		ID:       3,
		Title:    "Report",
		DueDate:  "2024-03-01",
		Category: "Work",
		Priority: domain.PriorityHigh,
		IsDone:   true,
	}))
}

func (s *TodoHandlerSuite) TestUpdateTodoAcceptsWholeTodoWithMatchingID() {
	s.seed(domain.Todo{ID: 1, Title: "a", Priority: domain.PriorityLow})

	rr := s.request("PATCH", "/todos/1", `{"id":1,"title":"b","dueDate":"","category":"","priority":"low","isDone":false}`)

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(*decode[response.TodoMessage](rr).Todo).To(Equal(domain.Todo{ID: 1, Title: "b", Priority: domain.PriorityLow}))
	Expect(ReadTodosFile(s.T(), s.Store.Path())).To(Equal([]domain.Todo{{ID: 1, Title: "b", Priority: domain.PriorityLow}}))
}

func (s *TodoHandlerSuite) TestUpdateTodoRejectsMismatchedID() {
	s.seed(domain.Todo{ID: 1, Title: "a", Priority: domain.PriorityLow})

	rr := s.request("PATCH", "/todos/1", `{"id":9,"title":"b"}`)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	data := decode[response.ErrorResponse](rr)
	Expect(data.Error.Code).To(Equal("VALIDATION_ERROR"))
	Expect(data.Error.Errors).To(HaveLen(1))
	Expect(data.Error.Errors[0].Field).To(Equal("id"))

	Expect(ReadTodosFile(s.T(), s.Store.Path())).To(Equal([]domain.Todo{{ID: 1, Title: "a", Priority: domain.PriorityLow}}))
}

func (s *TodoHandlerSuite) TestUpdateTodoRejectsUnknownFields() {
	s.seed(domain.Todo{ID: 1, Title: "a", Priority: domain.PriorityLow})

	rr := s.request("PATCH", "/todos/1", `{"owner":"someone"}`)
	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Error.Code).To(Equal("BAD_REQUEST"))
}

func (s *TodoHandlerSuite) TestUpdateTodoNotFound() {
	s.seed(domain.Todo{ID: 1, Title: "a", Priority: domain.PriorityLow})

	for _, path := range []string{"/todos/42", "/todos/abc"} {
		rr := s.request("PATCH", path, `{"title":"x"}`)

		Expect(rr.Code).To(Equal(http.StatusNotFound), path)
		Expect(decode[response.ErrorResponse](rr).Message).To(Equal("To-do not found"))
	}

	Expect(ReadTodosFile(s.T(), s.Store.Path())).To(Equal([]domain.Todo{{ID: 1, Title: "a", Priority: domain.PriorityLow}}))
}

func (s *TodoHandlerSuite) TestToggleTodo() {
	s.seed(domain.Todo{ID: 1, Title: "a", Priority: domain.PriorityLow})

	rr := s.request("POST", "/todos/1/toggle", "")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[response.TodoMessage](rr).Todo.IsDone).To(BeTrue())

	rr = s.request("POST", "/todos/7/toggle", "")
	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *TodoHandlerSuite) TestDeleteTodoWithSuccess() {
	s.seed(
		domain.Todo{ID: 1, Title: "a", Priority: domain.PriorityLow},
		domain.Todo{ID: 2, Title: "b", Priority: domain.PriorityLow},
	)

	rr := s.request("DELETE", "/todos/1", "")

	Expect(rr.Code).To(Equal(http.StatusOK))

	data := gin.H{}
	json.Unmarshal(rr.Body.Bytes(), &data)
	Expect(data["message"]).To(Equal("To-do deleted successfully"))

	Expect(ReadTodosFile(s.T(), s.Store.Path())).To(Equal([]domain.Todo{{ID: 2, Title: "b", Priority: domain.PriorityLow}}))
}

func (s *TodoHandlerSuite) TestDeleteTodoNotFound() {
	for _, path := range []string{"/todos/99", "/todos/x1"} {
		rr := s.request("DELETE", path, "")

		Expect(rr.Code).To(Equal(http.StatusNotFound), path)
		Expect(decode[response.ErrorResponse](rr).Message).To(Equal("To-do not found"))
	}
}

func (s *TodoHandlerSuite) TestGetBoard() {
	s.seed(
		domain.Todo{ID: 1, Title: "later", DueDate: "2024-06-20", Priority: domain.PriorityHigh},
		domain.Todo{ID: 2, Title: "tomorrow", DueDate: "2024-06-11", Priority: domain.PriorityLow},
		domain.Todo{ID: 3, Title: "today", DueDate: "2024-06-10", Priority: domain.PriorityMedium},
		domain.Todo{ID: 4, Title: "undated", Priority: domain.PriorityHigh},
	)

	rr := s.request("GET", "/todos/board?sort=priority", "")

	Expect(rr.Code).To(Equal(http.StatusOK))

	board := decode[response.BoardResponse](rr)
	Expect(board.Sort).To(Equal(domain.SortPriority))
	Expect(board.Today).To(HaveLen(1))
	Expect(board.Today[0].ID).To(Equal(3))
	Expect(board.Tomorrow).To(HaveLen(1))
	Expect(board.Tomorrow[0].ID).To(Equal(2))
	Expect(board.Other).To(HaveLen(2))
	Expect(board.Other[0].ID).To(Equal(1))
	Expect(board.Other[1].ID).To(Equal(4))
}

func (s *TodoHandlerSuite) TestGetBoardInvalidSort() {
	rr := s.request("GET", "/todos/board?sort=alphabetical", "")

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decode[response.ErrorResponse](rr).Error.Code).To(Equal("BAD_REQUEST"))
}

func (s *TodoHandlerSuite) TestHealth() {
	s.seed(domain.Todo{ID: 1, Title: "a", Priority: domain.PriorityLow})

	rr := s.request("GET", "/healthz", "")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decode[response.HealthResponse](rr)).To(Equal(response.HealthResponse{Status: "ok", Todos: 1}))
}

type brokenService struct {
	port.TodoService
}

func (brokenService) Create(ctx context.Context, input domain.NewTodo) (domain.Todo, error) {
	return domain.Todo{}, errors.New("disk full")
}

func (s *TodoHandlerSuite) TestCreateTodoStoreFailure() {
	router := setupTodoTestRouter(NewTodoHandler(brokenService{TodoService: service.NewTodoService(s.Store)}, nil))

	req, _ := http.NewRequest("POST", "/todos", strings.NewReader(`{"title":"x"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusInternalServerError))
	Expect(decode[response.ErrorResponse](rr).Error.Code).To(Equal("INTERNAL_ERROR"))
}
