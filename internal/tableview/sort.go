package tableview

import (
	"sort"

	"github.com/drexxdk/tanstack-table/internal/assignment"
)

// Direction is the sort state of one column.
type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// SortState is a single-column sort.
type SortState struct {
	Column    ColumnID
	Direction Direction
}

// Cycle returns the state after clicking the header of id: ascending,
// descending, then unsorted. Clicking another column starts it at ascending.
func (s SortState) Cycle(id ColumnID) SortState {
	if s.Column != id || s.Direction == Unsorted {
		return SortState{Column: id, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return SortState{Column: id, Direction: Descending}
	}
	return SortState{}
}

// DirectionOf reports the direction applied to column id.
func (s SortState) DirectionOf(id ColumnID) Direction {
	if s.Column != id {
		return Unsorted
	}
	return s.Direction
}

// Active reports whether any column is sorted.
func (s SortState) Active() bool {
	return s.Column != "" && s.Direction != Unsorted
}

// SortRows returns a sorted copy of rows. Ascending order is stable;
// descending order is the exact reverse of ascending order. Unknown or
// unsortable columns leave the order untouched.
func SortRows(rows []assignment.Assignment, cols []Column, state SortState) []assignment.Assignment {
	out := append([]assignment.Assignment(nil), rows...)
	if !state.Active() {
		return out
	}
	col, ok := FindColumn(cols, state.Column)
	if !ok || !col.Sortable || col.Compare == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		return col.Compare(out[i], out[j]) < 0
	})
	if state.Direction == Descending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}
