package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"todolist/internal/core/domain"
)

type JSONStoreSuite struct {
	suite.Suite
	Dir  string
	Path string
}

var ctx = context.Background()

func (s *JSONStoreSuite) SetupTest() {
	s.Dir = s.T().TempDir()
	s.Path = filepath.Join(s.Dir, "todos.json")
}

func TestJSONStoreSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(JSONStoreSuite))
}

func (s *JSONStoreSuite) newStore(opts ...Option) *Store {
	store, err := NewStore(s.Path, opts...)
	s.Require().NoError(err)
	return store
}

func (s *JSONStoreSuite) writeRaw(content string) {
	s.Require().NoError(os.WriteFile(s.Path, []byte(content), 0o644))
}

func (s *JSONStoreSuite) readRaw() string {
	data, err := os.ReadFile(s.Path)
	s.Require().NoError(err)
	return string(data)
}

func (s *JSONStoreSuite) TestLoad_MissingFileIsEmpty() {
	todos, err := s.newStore().Load(ctx)

	Expect(err).ToNot(HaveOccurred())
	Expect(todos).ToNot(BeNil())
	Expect(todos).To(BeEmpty())
}

func (s *JSONStoreSuite) TestLoad_BlankFileIsEmpty() {
	s.writeRaw("  \n")

	todos, err := s.newStore().Load(ctx)

	Expect(err).ToNot(HaveOccurred())
	Expect(todos).To(BeEmpty())
}

func (s *JSONStoreSuite) TestSave_WritesTwoSpaceIndentedArray() {
	store := s.newStore()

	err := store.Save(ctx, []domain.Todo{
		{ID: 1, Title: "Buy milk", Priority: domain.PriorityMedium},
	})
	Expect(err).ToNot(HaveOccurred())

	expected := `[
  {
    "id": 1,
    "title": "Buy milk",
    "dueDate": "",
    "category": "",
    "priority": "medium",
    "isDone": false
  }
]`
	Expect(s.readRaw()).To(Equal(expected))
}

func (s *JSONStoreSuite) TestSave_EmptyCollectionIsArray() {
	store := s.newStore()

	Expect(store.Save(ctx, nil)).To(Succeed())
	Expect(s.readRaw()).To(Equal("[]"))
}

func (s *JSONStoreSuite) TestRoundTrip_IsStable() {
	store := s.newStore()

	todos := []domain.Todo{
		{ID: 1, Title: "a", DueDate: "2024-01-01", Category: "Work", Priority: domain.PriorityHigh},
		{ID: 4, Title: "b", Priority: domain.PriorityLow, IsDone: true},
	}
	Expect(store.Save(ctx, todos)).To(Succeed())
	first := s.readRaw()

	loaded, err := store.Load(ctx)
	Expect(err).ToNot(HaveOccurred())
	Expect(loaded).To(Equal(todos))

	Expect(store.Save(ctx, loaded)).To(Succeed())
	Expect(s.readRaw()).To(Equal(first))
}

func (s *JSONStoreSuite) TestSave_LeavesNoTempFiles() {
	store := s.newStore()

	Expect(store.Save(ctx, []domain.Todo{{ID: 1, Title: "x"}})).To(Succeed())
	Expect(store.Save(ctx, []domain.Todo{{ID: 1, Title: "y"}})).To(Succeed())

	entries, err := os.ReadDir(s.Dir)
	Expect(err).ToNot(HaveOccurred())
	Expect(entries).To(HaveLen(1))
	Expect(entries[0].Name()).To(Equal("todos.json"))
}

func (s *JSONStoreSuite) TestSave_DirectWrite() {
	store := s.newStore(WithDirectWrite(true))

	Expect(store.Save(ctx, []domain.Todo{{ID: 2, Title: "direct"}})).To(Succeed())

	loaded, err := store.Load(ctx)
	Expect(err).ToNot(HaveOccurred())
	Expect(loaded).To(HaveLen(1))
	Expect(loaded[0].Title).To(Equal("direct"))
}

func (s *JSONStoreSuite) TestSave_CreatesMissingDirectory() {
	s.Path = filepath.Join(s.Dir, "nested", "data", "todos.json")

	Expect(s.newStore().Save(ctx, []domain.Todo{{ID: 1, Title: "x"}})).To(Succeed())
	Expect(s.Path).To(BeAnExistingFile())
}

func (s *JSONStoreSuite) TestLoad_MalformedJSONIsCorrupt() {
	s.writeRaw(`[{"id": 1, "title": "trunc`)

	_, err := s.newStore().Load(ctx)

	Expect(err).To(MatchError(domain.ErrCorruptStore))
}

func (s *JSONStoreSuite) TestLoad_SchemaViolationIsCorrupt() {
	s.writeRaw(`[{"id": "one", "title": "x"}]`)

	_, err := s.newStore().Load(ctx)

	Expect(err).To(MatchError(domain.ErrCorruptStore))
	Expect(err.Error()).To(ContainSubstring("/0/id"))
}

func (s *JSONStoreSuite) TestLoad_ObjectDocumentIsCorrupt() {
	s.writeRaw(`{"todos": []}`)

	_, err := s.newStore().Load(ctx)

	Expect(err).To(MatchError(domain.ErrCorruptStore))
}

func (s *JSONStoreSuite) TestLoad_DuplicateIDsAreCorrupt() {
	s.writeRaw(`[{"id": 1, "title": "a"}, {"id": 1, "title": "b"}]`)

	_, err := s.newStore().Load(ctx)

	Expect(err).To(MatchError(domain.ErrCorruptStore))
	Expect(err.Error()).To(ContainSubstring("duplicate id 1"))
}

func (s *JSONStoreSuite) TestLoad_FailOpenReturnsEmpty() {
	s.writeRaw(`not json at all`)

	todos, err := s.newStore(WithFailOpen(true)).Load(ctx)

	Expect(err).ToNot(HaveOccurred())
	Expect(todos).To(BeEmpty())
}

func (s *JSONStoreSuite) TestLoad_AcceptsNullOptionalFields() {
	s.writeRaw(`[{"id": 3, "title": "legacy", "dueDate": null, "isDone": true}]`)

	todos, err := s.newStore().Load(ctx)

	Expect(err).ToNot(HaveOccurred())
	Expect(todos).To(Equal([]domain.Todo{{ID: 3, Title: "legacy", IsDone: true}}))
}

func (s *JSONStoreSuite) TestNewStore_DefaultPath() {
	store, err := NewStore("")

	Expect(err).ToNot(HaveOccurred())
	Expect(store.Path()).To(Equal(DefaultPath))
}
