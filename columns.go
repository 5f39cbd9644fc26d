package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/drexxdk/tanstack-table/internal/assignment"
	"github.com/drexxdk/tanstack-table/internal/tableview"
)

type column interface {
	SetSize(width, height int)
	Update(msg tea.Msg) (column, tea.Cmd)
	View(styles styles, focused bool) string
	Title() string
	FocusValue() string
}

const (
	cellGap          = 1
	expanderWidth    = 1
	minFillWidth     = 8
	minEllipsisWidth = 4
	emptyLabel       = "Ingen opgaver"
	emptyFiltered    = "Ingen opgaver matcher de valgte filtre"
)

// natural widths are capped so one long title cannot starve the fill column
var columnCaps = map[tableview.ColumnID]int{
	tableview.ColGroups:  24,
	tableview.ColSubject: 16,
	tableview.ColPortal:  22,
}

var sortGlyphs = map[tableview.Direction]string{
	tableview.Unsorted:   "↕",
	tableview.Ascending:  "▲",
	tableview.Descending: "▼",
}

type tableKeys struct {
	up, down, left, right key.Binding
	top, bottom           key.Binding
	pageUp, pageDown      key.Binding
}

func newTableKeys() tableKeys {
	return tableKeys{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev row")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next row")),
		left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
		right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
		top:      key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first row")),
		bottom:   key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last row")),
		pageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		pageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
	}
}

// assignmentsColumn draws a tableview.Snapshot with a row cursor and a header
// cursor.
type assignmentsColumn struct {
	title  string
	snap   tableview.Snapshot
	keys   tableKeys
	width  int
	height int

	row    int
	header int
	offset int
}

func newAssignmentsColumn(title string) *assignmentsColumn {
	return &assignmentsColumn{
		title:  title,
		keys:   newTableKeys(),
		header: -1,
	}
}

// SetSnapshot swaps in a freshly built snapshot and keeps both cursors on the
// same row id and column when they survive.
func (c *assignmentsColumn) SetSnapshot(snap tableview.Snapshot) {
	var rowID string
	if row, ok := c.SelectedRow(); ok {
		rowID = row.ID
	}
	var headerID tableview.ColumnID
	if h, ok := c.FocusedHeader(); ok {
		headerID = h.Column
	}

	c.snap = snap

	c.row = 0
	if idx := snap.RowIndex(rowID); idx >= 0 {
		c.row = idx
	}
	c.header = -1
	for i, h := range snap.Headers {
		if h.Column == headerID {
			c.header = i
			break
		}
	}
	if c.header < 0 {
		c.header = c.nextSortable(-1, 1)
	}
}

func (c *assignmentsColumn) Snapshot() tableview.Snapshot {
	return c.snap
}

func (c *assignmentsColumn) SelectedRow() (tableview.BodyRow, bool) {
	if c.row < 0 || c.row >= len(c.snap.Rows) {
		return tableview.BodyRow{}, false
	}
	return c.snap.Rows[c.row], true
}

func (c *assignmentsColumn) FocusedHeader() (tableview.Header, bool) {
	if c.header < 0 || c.header >= len(c.snap.Headers) {
		return tableview.Header{}, false
	}
	return c.snap.Headers[c.header], true
}

func (c *assignmentsColumn) nextSortable(from, step int) int {
	for i := from + step; i >= 0 && i < len(c.snap.Headers); i += step {
		if c.snap.Headers[i].Sortable {
			return i
		}
	}
	return from
}

func (c *assignmentsColumn) SetSize(width, height int) {
	c.width = width
	if height < 5 {
		height = 5
	}
	c.height = height
}

func (c *assignmentsColumn) bodyHeight() int {
	// border, title, header and rule
	h := c.height - 5
	if h < 1 {
		h = 1
	}
	return h
}

func (c *assignmentsColumn) moveRow(delta int) {
	if len(c.snap.Rows) == 0 {
		c.row = 0
		return
	}
	c.row += delta
	if c.row < 0 {
		c.row = 0
	}
	if c.row >= len(c.snap.Rows) {
		c.row = len(c.snap.Rows) - 1
	}
}

func (c *assignmentsColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}
	switch {
	case key.Matches(keyMsg, c.keys.up):
		c.moveRow(-1)
	case key.Matches(keyMsg, c.keys.down):
		c.moveRow(1)
	case key.Matches(keyMsg, c.keys.top):
		c.moveRow(-len(c.snap.Rows))
	case key.Matches(keyMsg, c.keys.bottom):
		c.moveRow(len(c.snap.Rows))
	case key.Matches(keyMsg, c.keys.pageUp):
		c.moveRow(-c.bodyHeight())
	case key.Matches(keyMsg, c.keys.pageDown):
		c.moveRow(c.bodyHeight())
	case key.Matches(keyMsg, c.keys.left):
		c.header = c.nextSortable(c.header, -1)
	case key.Matches(keyMsg, c.keys.right):
		c.header = c.nextSortable(c.header, 1)
	}
	return c, nil
}

func (c *assignmentsColumn) View(s styles, focused bool) string {
	inner := c.width - 2
	if inner < 1 {
		inner = 1
	}
	title := s.columnTitle.Render(fmt.Sprintf("%s (%d/%d)", c.title, len(c.snap.Rows), c.snap.Total))

	var body string
	if len(c.snap.Rows) == 0 {
		label := emptyLabel
		if c.snap.Total > 0 {
			label = emptyFiltered
		}
		body = s.emptyState.Render(label)
	} else {
		body = strings.Join(c.renderTable(s, inner), "\n")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, body)
	if focused {
		return s.panelFocused.Width(inner).Render(content)
	}
	return s.panel.Width(inner).Render(content)
}

func (c *assignmentsColumn) Title() string {
	return c.title
}

func (c *assignmentsColumn) FocusValue() string {
	if row, ok := c.SelectedRow(); ok {
		return row.Record.LearningMaterial.Title
	}
	return ""
}

func (c *assignmentsColumn) renderTable(s styles, width int) []string {
	widths := layoutWidths(c.snap, width)

	headerCells := make([]string, len(c.snap.Headers))
	for i, h := range c.snap.Headers {
		style := s.tableHeader
		if i == c.header {
			style = s.tableHeaderCursor
		}
		headerCells[i] = style.Render(fitCell(headerText(h), widths[i], true))
	}
	lines := []string{
		strings.Join(headerCells, strings.Repeat(" ", cellGap)),
		lipgloss.NewStyle().Foreground(palette.border).Render(strings.Repeat("─", width)),
	}

	var body []string
	start, end := 0, 0
	for i, row := range c.snap.Rows {
		if i == c.row {
			start = len(body)
		}
		body = append(body, renderRow(s, row, widths, i == c.row))
		for _, d := range row.Details {
			body = append(body, renderDetail(s, d, width))
		}
		if i == c.row {
			end = len(body) - 1
		}
	}

	h := c.bodyHeight()
	if start < c.offset {
		c.offset = start
	}
	if end >= c.offset+h {
		c.offset = end - h + 1
	}
	if c.offset > len(body)-h {
		c.offset = max(0, len(body)-h)
	}
	stop := min(len(body), c.offset+h)
	return append(lines, body[c.offset:stop]...)
}

func renderRow(s styles, row tableview.BodyRow, widths []int, selected bool) string {
	base := s.cell
	if selected {
		base = s.cellSelected
	}
	parts := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		style := base.Copy()
		if cell.Bold {
			style = style.Bold(true)
		}
		if cell.Link != nil {
			style = style.Underline(true)
		}
		parts[i] = style.Render(fitCell(cellText(cell.Cell), widths[i], cell.Ellipsis))
	}
	return strings.Join(parts, base.Render(strings.Repeat(" ", cellGap)))
}

func renderDetail(s styles, d tableview.Detail, width int) string {
	indent := strings.Repeat(" ", expanderWidth+cellGap)
	label := d.Label + ": "
	room := width - runewidth.StringWidth(indent) - runewidth.StringWidth(label)
	if room < 1 {
		room = 1
	}
	return indent + s.detailLabel.Render(label) + s.detailValue.Render(runewidth.Truncate(cellText(d.Cell), room, "…"))
}

func headerText(h tableview.Header) string {
	if !h.Sortable {
		return h.Label
	}
	return h.Label + " " + sortGlyphs[h.Direction]
}

func cellText(cell tableview.Cell) string {
	switch {
	case cell.Toggle == tableview.ToggleCollapsed:
		return "▸"
	case cell.Toggle == tableview.ToggleExpanded:
		return "▾"
	case len(cell.Actions) > 0:
		labels := make([]string, len(cell.Actions))
		for i, a := range cell.Actions {
			labels[i] = a.Label
		}
		return strings.Join(labels, " · ")
	}
	return cell.Text
}

func fitCell(text string, width int, ellipsis bool) string {
	if width <= 0 {
		return ""
	}
	tail := ""
	if ellipsis {
		tail = "…"
	}
	return runewidth.FillRight(runewidth.Truncate(text, width, tail), width)
}

// layoutWidths sizes every visible column to its content, gives the fill
// column whatever is left of total and shrinks ellipsis columns when the
// content does not fit.
func layoutWidths(snap tableview.Snapshot, total int) []int {
	n := len(snap.Headers)
	widths := make([]int, n)
	shrinkable := make([]bool, n)
	fill := -1
	for i, h := range snap.Headers {
		if h.Column == tableview.ColExpander {
			widths[i] = expanderWidth
			continue
		}
		if h.Fill {
			fill = i
		}
		w := runewidth.StringWidth(headerText(h))
		for _, row := range snap.Rows {
			if i >= len(row.Cells) {
				continue
			}
			cell := row.Cells[i]
			if cell.Ellipsis {
				shrinkable[i] = true
			}
			w = max(w, runewidth.StringWidth(cellText(cell.Cell)))
		}
		if limit, ok := columnCaps[h.Column]; ok && w > limit {
			w = limit
		}
		widths[i] = w
	}

	used := cellGap * max(0, n-1)
	for i, w := range widths {
		if i != fill {
			used += w
		}
	}
	if fill >= 0 {
		widths[fill] = max(minFillWidth, total-used)
		used += widths[fill]
	}

	for over := used - total; over > 0; over-- {
		widest := -1
		for i, w := range widths {
			if !shrinkable[i] || w <= minEllipsisWidth || (i == fill && w <= minFillWidth) {
				continue
			}
			if widest < 0 || w > widths[widest] {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		widths[widest]--
	}
	return widths
}

type listEntry struct {
	title   string
	desc    string
	payload string
}

func (e listEntry) Title() string       { return e.title }
func (e listEntry) Description() string { return e.desc }
func (e listEntry) FilterValue() string { return e.title }

const allOption = "Alle"

// pickerColumn lists the options of one filterable column. Choosing an entry
// reports a filterChosenMsg.
type pickerColumn struct {
	title  string
	target tableview.ColumnID
	model  list.Model
	width  int
	height int
}

type filterChosenMsg struct {
	column tableview.ColumnID
	value  string
}

type pickerClosedMsg struct{}

func newPickerColumn(title string, target tableview.ColumnID, options []assignment.Link, current string, s styles) *pickerColumn {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = s.listSel
	delegate.Styles.SelectedDesc = s.listSel
	delegate.Styles.NormalTitle = s.listItem
	delegate.Styles.NormalDesc = s.listItem.Copy().Foreground(palette.textMuted)

	items := make([]list.Item, 0, len(options)+1)
	items = append(items, listEntry{title: allOption, desc: "Fjern filteret"})
	selected := 0
	for i, opt := range options {
		items = append(items, listEntry{title: opt.Title, desc: opt.URL, payload: opt.Title})
		if opt.Title == current {
			selected = i + 1
		}
	}

	m := list.New(items, delegate, 40, 20)
	m.Title = title
	m.SetShowStatusBar(false)
	m.SetFilteringEnabled(false)
	m.SetShowHelp(false)
	m.SetShowPagination(true)
	m.KeyMap.Quit.SetEnabled(false)
	m.Select(selected)

	return &pickerColumn{title: title, target: target, model: m}
}

func (c *pickerColumn) SetSize(width, height int) {
	c.width = width
	if height < 3 {
		height = 3
	}
	c.height = height
	c.model.SetSize(width-2, height-2)
}

func (c *pickerColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			if item, ok := c.model.SelectedItem().(listEntry); ok {
				target := c.target
				return c, func() tea.Msg { return filterChosenMsg{column: target, value: item.payload} }
			}
		case "esc":
			return c, func() tea.Msg { return pickerClosedMsg{} }
		}
	}
	var cmd tea.Cmd
	c.model, cmd = c.model.Update(msg)
	return c, cmd
}

func (c *pickerColumn) View(s styles, focused bool) string {
	body := c.model.View()
	if focused {
		return s.panelFocused.Width(c.width - 2).Render(body)
	}
	return s.panel.Width(c.width - 2).Render(body)
}

func (c *pickerColumn) Title() string {
	return c.title
}

func (c *pickerColumn) FocusValue() string {
	if item, ok := c.model.SelectedItem().(listEntry); ok {
		return item.title
	}
	return ""
}

// previewColumn shows one assignment rendered as Markdown.
type previewColumn struct {
	title  string
	width  int
	height int
	source string
	view   viewport.Model
}

func newPreviewColumn(title, markdown string) *previewColumn {
	return &previewColumn{
		title:  title,
		source: markdown,
		view:   viewport.New(80, 20),
	}
}

func (p *previewColumn) SetSize(width, height int) {
	if height < 4 {
		height = 4
	}
	resized := width != p.width
	p.width = width
	p.height = height
	p.view.Width = width - 2
	p.view.Height = height - 3
	if resized {
		setMarkdownWordWrap(max(20, width-6))
		p.view.SetContent(RenderMarkdown(p.source))
	}
}

func (p *previewColumn) Refresh() {
	p.view.SetContent(RenderMarkdown(p.source))
}

func (p *previewColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	var cmd tea.Cmd
	p.view, cmd = p.view.Update(msg)
	return p, cmd
}

func (p *previewColumn) View(s styles, focused bool) string {
	header := s.columnTitle.Render(p.title)
	body := header + "\n" + p.view.View()
	if focused {
		return s.panelFocused.Width(p.width - 2).Render(body)
	}
	return s.panel.Width(p.width - 2).Render(body)
}

func (p *previewColumn) Title() string {
	return p.title
}

func (p *previewColumn) FocusValue() string {
	return fmt.Sprintf("%d%%", int(p.view.ScrollPercent()*100))
}
