package cli

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/gomega"

	"todolist/internal/client"
	"todolist/internal/core/domain"
)

func (s *CLISuite) newModel() boardModel {
	board := client.NewBoard(client.New(s.Server.URL))
	Expect(board.Refresh(ctx)).To(Succeed())

	return newBoardModel(ctx, board, func() time.Time { return fixedNow })
}

func runes(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

// send feeds msg to the model and drops the command.
func send(m boardModel, msg tea.Msg) boardModel {
	next, _ := m.Update(msg)
	return next.(boardModel)
}

// press feeds msg to the model and runs any resulting command once.
func press(m boardModel, msg tea.Msg) boardModel {
	next, cmd := m.Update(msg)
	m = next.(boardModel)

	if cmd != nil {
		if result, ok := cmd().(resultMsg); ok {
			next, _ = m.Update(result)
			m = next.(boardModel)
		}
	}

	return m
}

func (s *CLISuite) TestTUIToggleSelected() {
	m := s.newModel()

	// cursor starts on the only to-do due today
	m = press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	Expect(m.err).ToNot(HaveOccurred())
	Expect(s.stored(1).IsDone).To(BeTrue())
	Expect(m.View()).To(ContainSubstring("toggled #1"))
}

func (s *CLISuite) TestTUINavigateAndDelete() {
	m := s.newModel()

	m = press(m, runes("j"))
	Expect(m.cursor).To(Equal(1))

	m = press(m, runes("d"))
	Expect(m.err).ToNot(HaveOccurred())

	todos, _ := s.Store.Load(ctx)
	Expect(todos).To(HaveLen(2))
	Expect(m.board.Todos()).To(HaveLen(2))
}

func (s *CLISuite) TestTUICursorStaysInRange() {
	m := s.newModel()

	for range 10 {
		m = press(m, runes("j"))
	}
	Expect(m.cursor).To(Equal(2))

	for range 10 {
		m = press(m, runes("k"))
	}
	Expect(m.cursor).To(Equal(0))
}

func (s *CLISuite) TestTUICyclesSort() {
	m := s.newModel()

	m = press(m, runes("s"))
	Expect(m.board.Sort()).To(Equal(domain.SortPriority))

	m = press(m, runes("s"))
	Expect(m.board.Sort()).To(Equal(domain.SortDueDate))

	m = press(m, runes("s"))
	Expect(m.board.Sort()).To(Equal(domain.SortDefault))
}

func (s *CLISuite) TestTUIAdd() {
	m := s.newModel()

	m = send(m, runes("a"))
	Expect(m.adding).To(BeTrue())

	m = send(m, runes("Call mom"))
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	Expect(m.adding).To(BeFalse())
	Expect(m.err).ToNot(HaveOccurred())
	Expect(s.stored(4).Title).To(Equal("Call mom"))
	Expect(s.stored(4).Priority).To(Equal(domain.PriorityMedium))
}

func (s *CLISuite) TestTUIAddRejectsEmptyTitle() {
	m := s.newModel()

	m = send(m, runes("a"))
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	Expect(m.adding).To(BeTrue())
	Expect(m.err).To(MatchError(errEmptyTitle))

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	Expect(m.adding).To(BeFalse())
}

func (s *CLISuite) TestTUIQuit() {
	m := s.newModel()

	_, cmd := m.Update(runes("q"))

	Expect(cmd).ToNot(BeNil())
	Expect(cmd()).To(Equal(tea.Quit()))
}
