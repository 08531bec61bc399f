package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"todolist/internal/adapter/http/handler"
	"todolist/internal/adapter/http/routes"
	"todolist/internal/adapter/storage/memory"
	"todolist/internal/client"
	"todolist/internal/core/domain"
	"todolist/internal/core/service"
)

type CLISuite struct {
	suite.Suite
	Store  *memory.Store
	Server *httptest.Server
	Stdout *bytes.Buffer
	Stderr *bytes.Buffer
}

var ctx = context.Background()

var fixedNow = time.Date(2024, 6, 10, 8, 0, 0, 0, time.Local)

func (s *CLISuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.Store = memory.NewStore(
		domain.Todo{ID: 1, Title: "Buy milk", DueDate: "2024-06-10", Priority: domain.PriorityLow},
		domain.Todo{ID: 2, Title: "Pay rent", DueDate: "2024-06-11", Priority: domain.PriorityHigh},
		domain.Todo{ID: 3, Title: "Read book", Priority: domain.PriorityMedium},
	)

	s.Server = httptest.NewServer(routes.SetupRouterForTests(routes.HandlersConfig{
		TodoHandler: handler.NewTodoHandler(service.NewTodoService(s.Store), nil),
	}))

	s.Stdout = &bytes.Buffer{}
	s.Stderr = &bytes.Buffer{}
}

func (s *CLISuite) TearDownTest() {
	s.Server.Close()
}

func TestCLISuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) run(args ...string) int {
	return s.runWith(Options{}, args...)
}

func (s *CLISuite) runWith(opt Options, args ...string) int {
	opt.Stdout = s.Stdout
	opt.Stderr = s.Stderr
	opt.Now = func() time.Time { return fixedNow }

	return Run(ctx, append([]string{"--server", s.Server.URL}, args...), opt)
}

func (s *CLISuite) stored(id int) domain.Todo {
	todos, _ := s.Store.Load(ctx)
	for _, t := range todos {
		if t.ID == id {
			return t
		}
	}
	s.Require().FailNowf("missing to-do", "id %d", id)
	return domain.Todo{}
}

func (s *CLISuite) TestListGroupsByDay() {
	Expect(s.run("list", "--sort", "priority")).To(Equal(0))

	out := s.Stdout.String()
	Expect(out).To(ContainSubstring("sort: priority"))
	Expect(out).To(ContainSubstring("Today (1)"))
	Expect(out).To(ContainSubstring("Tomorrow (1)"))
	Expect(out).To(ContainSubstring("Other (1)"))
	Expect(out).To(ContainSubstring("Buy milk"))
	Expect(out).To(ContainSubstring("[high]"))
}

func (s *CLISuite) TestListRejectsUnknownSort() {
	Expect(s.run("list", "--sort", "alpha")).To(Equal(2))
	Expect(s.Stderr.String()).To(ContainSubstring("unknown sort mode"))
}

func (s *CLISuite) TestAdd() {
	Expect(s.run("add", "--due", "2024-07-01", "--category", "Home", "Water", "plants")).To(Equal(0))
	Expect(s.Stdout.String()).To(ContainSubstring("added #4 Water plants"))

	created := s.stored(4)
	Expect(created.Priority).To(Equal(domain.PriorityMedium))
	Expect(created.Category).To(Equal("Home"))
	Expect(created.DueDate).To(Equal("2024-07-01"))
}

func (s *CLISuite) TestAddValidationFailure() {
	Expect(s.run("add", "--priority", "urgent", "x")).To(Equal(1))
	Expect(s.Stderr.String()).To(ContainSubstring("priority"))
}

func (s *CLISuite) TestAddWithoutTitle() {
	Expect(s.run("add")).To(Equal(2))
}

func (s *CLISuite) TestEditOnlySetFlags() {
	Expect(s.run("edit", "2", "--due", "")).To(Equal(0))

	edited := s.stored(2)
	Expect(edited.DueDate).To(BeEmpty())
	Expect(edited.Title).To(Equal("Pay rent"))
	Expect(edited.Priority).To(Equal(domain.PriorityHigh))
}

func (s *CLISuite) TestEditWithoutChanges() {
	Expect(s.run("edit", "2")).To(Equal(2))
}

func (s *CLISuite) TestDoneToggles() {
	Expect(s.run("done", "1")).To(Equal(0))
	Expect(s.stored(1).IsDone).To(BeTrue())

	Expect(s.run("done", "1")).To(Equal(0))
	Expect(s.stored(1).IsDone).To(BeFalse())
}

func (s *CLISuite) TestRemove() {
	Expect(s.run("rm", "3")).To(Equal(0))

	todos, _ := s.Store.Load(ctx)
	Expect(todos).To(HaveLen(2))
}

func (s *CLISuite) TestRemoveUnknownID() {
	Expect(s.run("rm", "42")).To(Equal(1))
	Expect(s.Stderr.String()).To(ContainSubstring("to-do not found"))
}

func (s *CLISuite) TestUsageErrors() {
	Expect(s.run()).To(Equal(2))
	Expect(s.run("done", "abc")).To(Equal(2))
	Expect(s.run("frobnicate")).To(Equal(2))
}

func (s *CLISuite) TestTUIGetsRefreshedBoard() {
	var seen []domain.Todo

	code := s.runWith(Options{RunTUI: func(ctx context.Context, board *client.Board) error {
		seen = board.Todos()
		return nil
	}}, "tui")

	Expect(code).To(Equal(0))
	Expect(seen).To(HaveLen(3))
}

func (s *CLISuite) TestTUIErrorExitsOne() {
	code := s.runWith(Options{RunTUI: func(ctx context.Context, board *client.Board) error {
		return errors.New("no terminal")
	}}, "tui")

	Expect(code).To(Equal(1))
}
