package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"todolist/internal/core/domain"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	priorityStyles = map[domain.Priority]lipgloss.Style{
		domain.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		domain.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		domain.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
	unknownPriorityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	boxChecked   = "☑"
	boxUnchecked = "☐"
)

var sectionTitles = map[domain.Bucket]string{
	domain.BucketToday:    "Today",
	domain.BucketTomorrow: "Tomorrow",
	domain.BucketOther:    "Other",
}

// PriorityStyle colors a badge: high red, medium yellow, low green, anything
// else gray.
func PriorityStyle(p domain.Priority) lipgloss.Style {
	if style, ok := priorityStyles[p]; ok {
		return style
	}
	return unknownPriorityStyle
}

func priorityBadge(p domain.Priority) string {
	label := string(p)
	if label == "" {
		label = "none"
	}
	return PriorityStyle(p).Render("[" + label + "]")
}

func renderTodo(t domain.Todo, selected bool) string {
	box := mutedStyle.Render(boxUnchecked)
	title := t.Title

	if t.IsDone {
		box = successStyle.Render(boxChecked)
		title = doneStyle.Render(title)
	}

	parts := []string{box, fmt.Sprintf("#%d", t.ID), title, priorityBadge(t.Priority)}

	if t.HasDueDate() {
		parts = append(parts, mutedStyle.Render("due "+t.DueDate))
	}

	if t.Category != "" {
		parts = append(parts, mutedStyle.Render("("+t.Category+")"))
	}

	prefix := "  "
	if selected {
		prefix = selectedStyle.Render(">") + " "
	}

	return prefix + strings.Join(parts, " ")
}

// RenderBoard prints every bucket, empty ones included, with the item at
// cursor (an index into Flatten order) highlighted. Pass -1 for no cursor.
func RenderBoard(b domain.Buckets, mode domain.SortMode, cursor int) string {
	var lines []string

	lines = append(lines, titleStyle.Render("To-dos")+"  "+mutedStyle.Render("sort: "+string(mode)))

	i := 0
	for _, section := range b.Sections() {
		lines = append(lines, "", sectionStyle.Render(fmt.Sprintf("%s (%d)", sectionTitles[section.Bucket], len(section.Todos))))

		if len(section.Todos) == 0 {
			lines = append(lines, mutedStyle.Render("  nothing here"))
		}

		for _, t := range section.Todos {
			lines = append(lines, renderTodo(t, i == cursor))
			i++
		}
	}

	return strings.Join(lines, "\n")
}

func ok(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✔ "+msg))
}

func fail(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("✖ "+msg))
}
