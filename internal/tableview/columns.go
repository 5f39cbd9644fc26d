package tableview

import (
	"fmt"
	"strings"

	"github.com/drexxdk/tanstack-table/internal/assignment"
)

// ColumnID names a column of the table.
type ColumnID string

const (
	ColExpander         ColumnID = "expander"
	ColGroups           ColumnID = "groups"
	ColSubject          ColumnID = "subject"
	ColPortal           ColumnID = "portal"
	ColLearningMaterial ColumnID = "learningMaterial"
	ColPeriod           ColumnID = "period"
	ColActions          ColumnID = "id"
)

// ToggleState is the expander glyph a row shows.
type ToggleState int

const (
	ToggleNone ToggleState = iota
	ToggleCollapsed
	ToggleExpanded
)

// ActionKind is one of the row actions. All of them are placeholders that
// only produce a notification.
type ActionKind int

const (
	ActionEdit ActionKind = iota
	ActionDelete
	ActionOpenExternal
)

// Action is a row-level button.
type Action struct {
	Kind  ActionKind
	RowID string
	Label string
}

// Notification is the message shown when the action is triggered.
func (a Action) Notification() string {
	switch a.Kind {
	case ActionEdit:
		return "Edit: " + a.RowID
	case ActionDelete:
		return "Delete: " + a.RowID
	default:
		return "External management: " + a.RowID
	}
}

// Cell is the renderer-independent content of one table cell.
type Cell struct {
	Text     string
	Link     *assignment.Link
	Bold     bool
	Ellipsis bool
	Toggle   ToggleState
	Actions  []Action
}

// Column declares one displayable field.
type Column struct {
	ID       ColumnID
	Header   string
	Sortable bool
	Hideable bool
	// Fill marks the column that absorbs spare width.
	Fill   bool
	Render func(assignment.Assignment) Cell
	// Compare orders two records by this column; nil for unsortable columns.
	Compare func(a, b assignment.Assignment) int
	// Filter reports whether a record matches value; nil for unfilterable
	// columns. An empty value always matches.
	Filter func(a assignment.Assignment, value string) bool
}

// ExpansionState is read by the column model to pick the expander glyph.
type ExpansionState interface {
	IsExpanded(id string) bool
}

// ColumnConfig parameterises BuildColumns.
type ColumnConfig struct {
	Locale    *Locale
	Expansion ExpansionState
	// HasHidden reports whether the responsive layout currently hides any
	// column; the expander only renders a toggle when it does.
	HasHidden bool
}

const groupConjunction = " og "

// GroupSummary renders a group list: "<first> og <n> mere" for more than two
// groups, otherwise the titles joined with " og ".
func GroupSummary(groups []assignment.Link) string {
	if len(groups) > 2 {
		return fmt.Sprintf("%s og %d mere", groups[0].Title, len(groups)-1)
	}
	return joinTitles(groups)
}

// PeriodText renders "<start> - <end>" with the locale's date format.
func PeriodText(p assignment.Period, locale *Locale) string {
	return locale.FormatDate(p.Start.Time) + " - " + locale.FormatDate(p.End.Time)
}

// RowActions returns the actions offered for a record.
func RowActions(a assignment.Assignment) []Action {
	if a.Managed() {
		return []Action{{Kind: ActionOpenExternal, RowID: a.ID, Label: "Åbn ↗"}}
	}
	return []Action{
		{Kind: ActionEdit, RowID: a.ID, Label: "Rediger"},
		{Kind: ActionDelete, RowID: a.ID, Label: "Slet"},
	}
}

func linkCell(l assignment.Link, bold bool) Cell {
	link := l
	return Cell{Text: l.Title, Link: &link, Bold: bold, Ellipsis: true}
}

func compareTime(a, b assignment.Date) int {
	switch {
	case a.Before(b.Time):
		return -1
	case a.After(b.Time):
		return 1
	default:
		return 0
	}
}

// BuildColumns returns the column model. It is a pure function of cfg.
func BuildColumns(cfg ColumnConfig) []Column {
	locale := cfg.Locale
	byTitle := func(pick func(assignment.Assignment) assignment.Link) func(a, b assignment.Assignment) int {
		return func(a, b assignment.Assignment) int {
			return locale.Compare(pick(a).Title, pick(b).Title)
		}
	}

	return []Column{
		{
			ID: ColExpander,
			Render: func(a assignment.Assignment) Cell {
				if !cfg.HasHidden {
					return Cell{}
				}
				if cfg.Expansion != nil && cfg.Expansion.IsExpanded(a.ID) {
					return Cell{Toggle: ToggleExpanded}
				}
				return Cell{Toggle: ToggleCollapsed}
			},
		},
		{
			ID:       ColGroups,
			Header:   "Hold/klasse",
			Sortable: true,
			Hideable: true,
			Render: func(a assignment.Assignment) Cell {
				return Cell{Text: GroupSummary(a.Groups), Ellipsis: true}
			},
			Compare: func(a, b assignment.Assignment) int {
				return locale.Compare(joinTitles(a.Groups), joinTitles(b.Groups))
			},
			Filter: func(a assignment.Assignment, value string) bool {
				if value == "" {
					return true
				}
				for _, g := range a.Groups {
					if g.Title == value {
						return true
					}
				}
				return false
			},
		},
		{
			ID:       ColSubject,
			Header:   "Fag",
			Sortable: true,
			Hideable: true,
			Render: func(a assignment.Assignment) Cell {
				return linkCell(a.Subject, false)
			},
			Compare: byTitle(func(a assignment.Assignment) assignment.Link { return a.Subject }),
			Filter: func(a assignment.Assignment, value string) bool {
				return value == "" || a.Subject.Title == value
			},
		},
		{
			ID:       ColPortal,
			Header:   "Læremiddel",
			Sortable: true,
			Hideable: true,
			Render: func(a assignment.Assignment) Cell {
				return linkCell(a.Portal, false)
			},
			Compare: byTitle(func(a assignment.Assignment) assignment.Link { return a.Portal }),
		},
		{
			ID:       ColLearningMaterial,
			Header:   "Titel",
			Sortable: true,
			Hideable: true,
			Fill:     true,
			Render: func(a assignment.Assignment) Cell {
				return linkCell(a.LearningMaterial, true)
			},
			Compare: byTitle(func(a assignment.Assignment) assignment.Link { return a.LearningMaterial }),
		},
		{
			ID:       ColPeriod,
			Header:   "Periode",
			Sortable: true,
			Hideable: true,
			Render: func(a assignment.Assignment) Cell {
				return Cell{Text: PeriodText(a.Period, locale)}
			},
			Compare: func(a, b assignment.Assignment) int {
				if c := compareTime(a.Period.Start, b.Period.Start); c != 0 {
					return c
				}
				return compareTime(a.Period.End, b.Period.End)
			},
		},
		{
			ID: ColActions,
			Render: func(a assignment.Assignment) Cell {
				return Cell{Actions: RowActions(a)}
			},
		},
	}
}

func joinTitles(links []assignment.Link) string {
	titles := make([]string, len(links))
	for i, l := range links {
		titles[i] = l.Title
	}
	return strings.Join(titles, groupConjunction)
}

// FindColumn returns the column with the given id.
func FindColumn(cols []Column, id ColumnID) (Column, bool) {
	for _, col := range cols {
		if col.ID == id {
			return col, true
		}
	}
	return Column{}, false
}
