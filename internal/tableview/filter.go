package tableview

import "github.com/drexxdk/tanstack-table/internal/assignment"

// FilterEntry is one active column filter.
type FilterEntry struct {
	Column ColumnID
	Value  string
}

// Filters maps a column to its single filter value. Setting a value replaces
// the previous one for that column.
type Filters struct {
	values map[ColumnID]string
	order  []ColumnID
}

// Set upserts the filter of column id. An empty value removes it.
func (f *Filters) Set(id ColumnID, value string) {
	if value == "" {
		f.Remove(id)
		return
	}
	if f.values == nil {
		f.values = make(map[ColumnID]string)
	}
	if _, ok := f.values[id]; !ok {
		f.order = append(f.order, id)
	}
	f.values[id] = value
}

// Remove drops the filter of column id.
func (f *Filters) Remove(id ColumnID) {
	if _, ok := f.values[id]; !ok {
		return
	}
	delete(f.values, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// Value returns the filter value of column id.
func (f *Filters) Value(id ColumnID) string {
	return f.values[id]
}

// Clear removes every filter.
func (f *Filters) Clear() {
	f.values = nil
	f.order = nil
}

// Len returns the number of active filters.
func (f *Filters) Len() int {
	return len(f.values)
}

// Entries lists the active filters in the order they were first set.
func (f *Filters) Entries() []FilterEntry {
	out := make([]FilterEntry, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, FilterEntry{Column: id, Value: f.values[id]})
	}
	return out
}

// FilterRows keeps the rows matching every active filter. Filters on columns
// without a predicate are ignored.
func FilterRows(rows []assignment.Assignment, cols []Column, filters *Filters) []assignment.Assignment {
	if filters == nil || filters.Len() == 0 {
		return append([]assignment.Assignment(nil), rows...)
	}
	type predicate struct {
		match func(assignment.Assignment, string) bool
		value string
	}
	var preds []predicate
	for _, entry := range filters.Entries() {
		col, ok := FindColumn(cols, entry.Column)
		if !ok || col.Filter == nil {
			continue
		}
		preds = append(preds, predicate{match: col.Filter, value: entry.Value})
	}
	out := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		keep := true
		for _, p := range preds {
			if !p.match(row, p.value) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}
