package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrTodoNotFound = errors.New("to-do not found")
	ErrCorruptStore = errors.New("to-do store is corrupt")
	ErrInvalidTodo  = errors.New("invalid to-do")
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"

	DefaultPriority = PriorityMedium
)

// DateLayout is the day-precision layout used for due dates.
const DateLayout = "2006-01-02"

func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p Priority) IsValid() bool {
	return p.Rank() > 0
}

func (p Priority) String() string {
	return string(p)
}

type Todo struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	DueDate  string   `json:"dueDate"`
	Category string   `json:"category"`
	Priority Priority `json:"priority"`
	IsDone   bool     `json:"isDone"`
}

// Due returns the due date truncated to midnight in loc. The second value is
// false when the to-do has no due date or it cannot be parsed.
func (t Todo) Due(loc *time.Location) (time.Time, bool) {
	raw := strings.TrimSpace(t.DueDate)

	if raw == "" {
		return time.Time{}, false
	}

	if loc == nil {
		loc = time.Local
	}

	if d, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
		return d, true
	}

	if d, err := time.Parse(time.RFC3339, raw); err == nil {
		return StartOfDay(d.In(loc)), true
	}

	return time.Time{}, false
}

// ValidDueDate is the accepted input form: empty, or a calendar day in
// DateLayout. Due still reads RFC 3339 values already in the store.
func ValidDueDate(raw string) bool {
	if raw == "" {
		return true
	}

	_, err := time.Parse(DateLayout, raw)

	return err == nil
}

func (t Todo) HasDueDate() bool {
	return strings.TrimSpace(t.DueDate) != ""
}

// NewTodo carries the caller-supplied fields of a create request.
type NewTodo struct {
	Title    string
	DueDate  string
	Category string
	Priority Priority
	IsDone   bool
}

// Build assigns id and fills the creation defaults.
func (n NewTodo) Build(id int) Todo {
	priority := n.Priority

	if priority == "" {
		priority = DefaultPriority
	}

	return Todo{
		ID:       id,
		Title:    n.Title,
		DueDate:  n.DueDate,
		Category: n.Category,
		Priority: priority,
		IsDone:   n.IsDone,
	}
}

// TodoPatch is a partial update. Nil fields were not supplied and are kept.
type TodoPatch struct {
	Title    *string
	DueDate  *string
	Category *string
	Priority *Priority
	IsDone   *bool
}

func (p TodoPatch) ApplyTo(t Todo) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}

	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}

	if p.Category != nil {
		t.Category = *p.Category
	}

	if p.Priority != nil {
		t.Priority = *p.Priority
	}

	if p.IsDone != nil {
		t.IsDone = *p.IsDone
	}

	return t
}

// Fields lists the JSON names of the supplied keys, sorted.
func (p TodoPatch) Fields() []string {
	fields := make([]string, 0, 5)

	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.DueDate != nil {
		fields = append(fields, "dueDate")
	}
	if p.Category != nil {
		fields = append(fields, "category")
	}
	if p.Priority != nil {
		fields = append(fields, "priority")
	}
	if p.IsDone != nil {
		fields = append(fields, "isDone")
	}

	sort.Strings(fields)

	return fields
}

func (p TodoPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// NextID returns max(ids)+1, or 1 for an empty collection.
func NextID(todos []Todo) int {
	highest := 0

	for _, t := range todos {
		if t.ID > highest {
			highest = t.ID
		}
	}

	return highest + 1
}

// IndexOf returns the position of the to-do with id, or -1.
func IndexOf(todos []Todo, id int) int {
	for i, t := range todos {
		if t.ID == id {
			return i
		}
	}

	return -1
}

// RemoveByID drops every entry with id and reports how many were removed.
func RemoveByID(todos []Todo, id int) ([]Todo, int) {
	kept := make([]Todo, 0, len(todos))

	for _, t := range todos {
		if t.ID != id {
			kept = append(kept, t)
		}
	}

	return kept, len(todos) - len(kept)
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
