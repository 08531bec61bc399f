package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type SortMode string

const (
	SortDefault  SortMode = "default"
	SortPriority SortMode = "priority"
	SortDueDate  SortMode = "dueDate"
)

var SortModes = []SortMode{SortDefault, SortPriority, SortDueDate}

// ParseSortMode accepts the wire names case-insensitively. Empty means default.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return SortDefault, nil
	case "priority":
		return SortPriority, nil
	case "duedate", "due_date", "due":
		return SortDueDate, nil
	default:
		return SortDefault, fmt.Errorf("unknown sort mode %q", s)
	}
}

// Next cycles default -> priority -> dueDate -> default.
func (m SortMode) Next() SortMode {
	i := slices.Index(SortModes, m)
	return SortModes[(i+1)%len(SortModes)]
}

type Bucket string

const (
	BucketToday    Bucket = "today"
	BucketTomorrow Bucket = "tomorrow"
	BucketOther    Bucket = "other"
)

type Buckets struct {
	Today    []Todo `json:"today"`
	Tomorrow []Todo `json:"tomorrow"`
	Other    []Todo `json:"other"`
}

type Section struct {
	Bucket Bucket
	Todos  []Todo
}

// Sections returns the buckets in display order.
func (b Buckets) Sections() []Section {
	return []Section{
		{Bucket: BucketToday, Todos: b.Today},
		{Bucket: BucketTomorrow, Todos: b.Tomorrow},
		{Bucket: BucketOther, Todos: b.Other},
	}
}

// Flatten concatenates the buckets in display order.
func (b Buckets) Flatten() []Todo {
	out := make([]Todo, 0, len(b.Today)+len(b.Tomorrow)+len(b.Other))
	out = append(out, b.Today...)
	out = append(out, b.Tomorrow...)
	return append(out, b.Other...)
}

func (b Buckets) Len() int {
	return len(b.Today) + len(b.Tomorrow) + len(b.Other)
}

// Sort returns a stably sorted copy; the input is not modified.
func Sort(todos []Todo, mode SortMode, loc *time.Location) []Todo {
	sorted := slices.Clone(todos)

	switch mode {
	case SortPriority:
		slices.SortStableFunc(sorted, func(a, b Todo) int {
			return b.Priority.Rank() - a.Priority.Rank()
		})
	case SortDueDate:
		slices.SortStableFunc(sorted, func(a, b Todo) int {
			return compareDue(a, b, loc)
		})
	}

	return sorted
}

// undated entries sort after dated ones; two undated compare equal
func compareDue(a, b Todo, loc *time.Location) int {
	ad, aok := a.Due(loc)
	bd, bok := b.Due(loc)

	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	default:
		return ad.Compare(bd)
	}
}

// Group splits todos into today, tomorrow and other relative to now's day,
// keeping the input order inside each bucket.
func Group(todos []Todo, now time.Time) Buckets {
	today := StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	buckets := Buckets{
		Today:    []Todo{},
		Tomorrow: []Todo{},
		Other:    []Todo{},
	}

	for _, t := range todos {
		due, ok := t.Due(now.Location())

		switch {
		case ok && due.Equal(today):
			buckets.Today = append(buckets.Today, t)
		case ok && due.Equal(tomorrow):
			buckets.Tomorrow = append(buckets.Tomorrow, t)
		default:
			buckets.Other = append(buckets.Other, t)
		}
	}

	return buckets
}

func Arrange(todos []Todo, mode SortMode, now time.Time) Buckets {
	return Group(Sort(todos, mode, now.Location()), now)
}
