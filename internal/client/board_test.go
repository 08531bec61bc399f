package client

import (
	"errors"
	"time"

	. "github.com/onsi/gomega"

	"todolist/internal/core/domain"
	"todolist/internal/core/model/request"
)

func (s *ClientSuite) newBoard() *Board {
	board := NewBoard(s.Client)
	Expect(board.Refresh(ctx)).To(Succeed())
	return board
}

func (s *ClientSuite) TestBoardAddDefaultsToMedium() {
	board := s.newBoard()

	created, err := board.Add(ctx, request.CreateTodoRequest{Title: "Call mom"})

	Expect(err).ToNot(HaveOccurred())
	Expect(created.Priority).To(Equal(domain.PriorityMedium))
	Expect(created.IsDone).To(BeFalse())
	Expect(board.Todos()).To(HaveLen(3))
}

func (s *ClientSuite) TestBoardToggleDone() {
	board := s.newBoard()

	toggled, err := board.ToggleDone(ctx, 1)
	Expect(err).ToNot(HaveOccurred())
	Expect(toggled.IsDone).To(BeTrue())

	mirrored, _ := board.Get(1)
	Expect(mirrored.IsDone).To(BeTrue())

	toggled, err = board.ToggleDone(ctx, 1)
	Expect(err).ToNot(HaveOccurred())
	Expect(toggled.IsDone).To(BeFalse())
}

func (s *ClientSuite) TestBoardMirrorUnchangedOnFailure() {
	board := s.newBoard()
	before := board.Todos()

	_, err := board.Add(ctx, request.CreateTodoRequest{Title: "  "})
	Expect(err).To(HaveOccurred())

	_, err = board.Edit(ctx, 1, request.PatchTodoRequest{Priority: ptr("urgent")})
	Expect(err).To(HaveOccurred())

	// removed behind the mirror's back
	Expect(s.Client.Delete(ctx, 2)).To(Succeed())

	err = board.Delete(ctx, 2)
	Expect(errors.Is(err, domain.ErrTodoNotFound)).To(BeTrue())

	Expect(board.Todos()).To(Equal(before))
}

func (s *ClientSuite) TestBoardDelete() {
	board := s.newBoard()

	Expect(board.Delete(ctx, 1)).To(Succeed())

	_, ok := board.Get(1)
	Expect(ok).To(BeFalse())
	Expect(board.Todos()).To(HaveLen(1))
}

func (s *ClientSuite) TestBoardToggleUnknownID() {
	board := s.newBoard()

	_, err := board.ToggleDone(ctx, 42)

	Expect(errors.Is(err, domain.ErrTodoNotFound)).To(BeTrue())
}

func (s *ClientSuite) TestBoardView() {
	board := s.newBoard()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)

	view := board.View(now)
	Expect(view.Today).To(HaveLen(1))
	Expect(view.Today[0].ID).To(Equal(1))
	Expect(view.Tomorrow).To(HaveLen(1))
	Expect(view.Tomorrow[0].ID).To(Equal(2))
	Expect(view.Other).To(BeEmpty())

	board.SetSort(domain.SortPriority)
	Expect(board.Sort()).To(Equal(domain.SortPriority))
}
