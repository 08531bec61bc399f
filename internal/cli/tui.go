package cli

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todolist/internal/client"
	"todolist/internal/core/domain"
	"todolist/internal/core/model/request"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Delete  key.Binding
	Sort    key.Binding
	Add     key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) help() string {
	var parts []string
	for _, b := range []key.Binding{k.Up, k.Down, k.Toggle, k.Delete, k.Sort, k.Add, k.Refresh, k.Quit} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

var errEmptyTitle = errors.New("title cannot be empty")

// resultMsg reports a finished server call.
type resultMsg struct {
	status string
	err    error
}

type boardModel struct {
	ctx    context.Context
	board  *client.Board
	now    func() time.Time
	cursor int

	adding bool
	input  textinput.Model

	status string
	err    error
}

func newBoardModel(ctx context.Context, board *client.Board, now func() time.Time) boardModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New to-do title..."
	ti.CharLimit = 255

	return boardModel{
		ctx:   ctx,
		board: board,
		now:   now,
		input: ti,
	}
}

func runTUI(ctx context.Context, board *client.Board) error {
	_, err := tea.NewProgram(newBoardModel(ctx, board, time.Now), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m boardModel) Init() tea.Cmd { return nil }

func (m boardModel) visible() []domain.Todo {
	return m.board.View(m.now()).Flatten()
}

func (m boardModel) selected() (domain.Todo, bool) {
	todos := m.visible()
	if m.cursor < 0 || m.cursor >= len(todos) {
		return domain.Todo{}, false
	}
	return todos[m.cursor], true
}

func (m boardModel) call(status string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{status: status, err: fn()}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.status, m.err = msg.status, msg.err
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		return m.updateBrowsing(msg)
	}

	return m, nil
}

func (m boardModel) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			m.err = errEmptyTitle
			return m, nil
		}

		m.adding = false
		m.input.Reset()
		m.input.Blur()

		return m, m.call("added "+title, func() error {
			_, err := m.board.Add(m.ctx, request.CreateTodoRequest{Title: title})
			return err
		})

	case tea.KeyEsc:
		m.adding = false
		m.input.Reset()
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m boardModel) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Sort):
		m.board.SetSort(m.board.Sort().Next())
		m.status, m.err = "sorted by "+string(m.board.Sort()), nil

	case key.Matches(msg, keys.Add):
		m.adding = true
		m.err = nil
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, keys.Refresh):
		return m, m.call("refreshed", func() error {
			return m.board.Refresh(m.ctx)
		})

	case key.Matches(msg, keys.Toggle):
		if t, ok := m.selected(); ok {
			return m, m.call("toggled #"+strconv.Itoa(t.ID), func() error {
				_, err := m.board.ToggleDone(m.ctx, t.ID)
				return err
			})
		}

	case key.Matches(msg, keys.Delete):
		if t, ok := m.selected(); ok {
			return m, m.call("deleted #"+strconv.Itoa(t.ID), func() error {
				return m.board.Delete(m.ctx, t.ID)
			})
		}
	}

	return m, nil
}

func (m *boardModel) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m boardModel) View() string {
	var b strings.Builder

	b.WriteString(RenderBoard(m.board.View(m.now()), m.board.Sort(), m.cursor))
	b.WriteString("\n\n")

	if m.adding {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("✖ " + m.err.Error()))
	case m.status != "":
		b.WriteString(successStyle.Render("✔ " + m.status))
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(keys.help()))

	return b.String()
}
