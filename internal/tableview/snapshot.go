package tableview

import "github.com/drexxdk/tanstack-table/internal/assignment"

// VisibilityState is what the renderer needs from the responsive controller.
type VisibilityState interface {
	IsVisible(id ColumnID) bool
	AnyHidden() bool
}

// Input is everything that determines a rendered table.
type Input struct {
	Rows       []assignment.Assignment
	Locale     *Locale
	Sort       SortState
	Filters    *Filters
	Visibility VisibilityState
	Expansion  *Expansion
}

// Header is one visible header cell.
type Header struct {
	Column    ColumnID
	Label     string
	Sortable  bool
	Direction Direction
	Fill      bool
}

// RenderedCell is a cell with the column it belongs to.
type RenderedCell struct {
	Column ColumnID
	Fill   bool
	Cell
}

// Detail is a label/value pair shown for a hidden column of an expanded row.
type Detail struct {
	Column ColumnID
	Label  string
	Cell   Cell
}

// BodyRow is one record as displayed.
type BodyRow struct {
	ID         string
	Record     assignment.Assignment
	Cells      []RenderedCell
	Expandable bool
	Expanded   bool
	// Details is non-empty only for expanded rows.
	Details []Detail
	Actions []Action
}

// Snapshot is the fully resolved table: visible headers, one body row per
// displayed record and the detail entries of expanded rows.
type Snapshot struct {
	Headers      []Header
	Rows         []BodyRow
	ShowExpander bool
	Hidden       []ColumnID
	// Total counts the records before filtering.
	Total int
}

// Build composes column model, filters, sort, visibility and expansion into
// a Snapshot.
func Build(in Input) Snapshot {
	vis := in.Visibility
	if vis == nil {
		vis = allVisible{}
	}
	expansion := in.Expansion
	if expansion == nil {
		expansion = &Expansion{}
	}
	hasHidden := vis.AnyHidden()
	cols := BuildColumns(ColumnConfig{
		Locale:    in.Locale,
		Expansion: expansion,
		HasHidden: hasHidden,
	})

	var visible, hidden []Column
	for _, col := range cols {
		switch {
		case col.ID == ColExpander:
			if hasHidden {
				visible = append(visible, col)
			}
		case vis.IsVisible(col.ID):
			visible = append(visible, col)
		default:
			hidden = append(hidden, col)
		}
	}

	snap := Snapshot{
		ShowExpander: hasHidden,
		Total:        len(in.Rows),
	}
	for _, col := range hidden {
		snap.Hidden = append(snap.Hidden, col.ID)
	}
	for _, col := range visible {
		snap.Headers = append(snap.Headers, Header{
			Column:    col.ID,
			Label:     col.Header,
			Sortable:  col.Sortable,
			Direction: in.Sort.DirectionOf(col.ID),
			Fill:      col.Fill,
		})
	}

	rows := FilterRows(in.Rows, cols, in.Filters)
	rows = SortRows(rows, cols, in.Sort)

	snap.Rows = make([]BodyRow, 0, len(rows))
	for _, rec := range rows {
		row := BodyRow{
			ID:         rec.ID,
			Record:     rec,
			Expandable: hasHidden,
			Expanded:   hasHidden && expansion.IsExpanded(rec.ID),
			Actions:    RowActions(rec),
		}
		for _, col := range visible {
			row.Cells = append(row.Cells, RenderedCell{Column: col.ID, Fill: col.Fill, Cell: col.Render(rec)})
		}
		if row.Expanded {
			for _, col := range hidden {
				row.Details = append(row.Details, Detail{Column: col.ID, Label: col.Header, Cell: col.Render(rec)})
			}
		}
		snap.Rows = append(snap.Rows, row)
	}
	return snap
}

// RowIndex returns the position of row id in the snapshot, or -1.
func (s Snapshot) RowIndex(id string) int {
	for i, row := range s.Rows {
		if row.ID == id {
			return i
		}
	}
	return -1
}

type allVisible struct{}

func (allVisible) IsVisible(ColumnID) bool { return true }
func (allVisible) AnyHidden() bool         { return false }
