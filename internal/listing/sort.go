package listing

import (
	"fmt"
	"strings"
)

// Direction is the sort direction of a column.
type Direction string

const (
	Unsorted   Direction = ""
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts "", "none", "asc" and "desc".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return Unsorted, nil
	case "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	default:
		return Unsorted, fmt.Errorf("invalid sort direction %q; expected asc, desc or none", s)
	}
}

// SortState is the column a list is sorted by.
type SortState struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Toggle is the header-click transition: on the same key
// unsorted -> ascending -> descending -> unsorted, a different key starts at ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key != key {
		return SortState{Key: key, Direction: Ascending}
	}
	switch s.Direction {
	case Unsorted:
		return SortState{Key: key, Direction: Ascending}
	case Ascending:
		return SortState{Key: key, Direction: Descending}
	default:
		return SortState{Key: key, Direction: Unsorted}
	}
}

// Active reports whether the state changes record order.
func (s SortState) Active() bool {
	return s.Key != "" && s.Direction != Unsorted
}
