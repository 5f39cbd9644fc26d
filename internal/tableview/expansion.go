package tableview

// Expansion tracks which rows are expanded, keyed by row id. The zero value
// has every row collapsed.
type Expansion struct {
	rows map[string]bool
}

// Toggle flips row id and returns its new state.
func (e *Expansion) Toggle(id string) bool {
	if e.rows == nil {
		e.rows = make(map[string]bool)
	}
	if e.rows[id] {
		delete(e.rows, id)
		return false
	}
	e.rows[id] = true
	return true
}

// IsExpanded reports whether row id is expanded.
func (e *Expansion) IsExpanded(id string) bool {
	return e.rows[id]
}

// Reset collapses every row.
func (e *Expansion) Reset() {
	e.rows = nil
}

// Len returns the number of expanded rows.
func (e *Expansion) Len() int {
	return len(e.rows)
}
