package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/drexxdk/tanstack-table/internal/assignment"
	"github.com/drexxdk/tanstack-table/internal/config"
	"github.com/drexxdk/tanstack-table/internal/fetch"
	"github.com/drexxdk/tanstack-table/internal/tableview"
)

type keyMap struct {
	quit          key.Binding
	refresh       key.Binding
	sort          key.Binding
	toggleRow     key.Binding
	groupFilter   key.Binding
	subjectFilter key.Binding
	clearFilters  key.Binding
	edit          key.Binding
	remove        key.Binding
	openExternal  key.Binding
	preview       key.Binding
	copyURL       key.Binding
	cycleTheme    key.Binding
	toggleLogs    key.Binding
	closeOverlay  key.Binding
	toggleHelp    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort column"),
		),
		toggleRow: key.NewBinding(
			key.WithKeys("enter", " ", "space"),
			key.WithHelp("enter/space", "expand row"),
		),
		groupFilter: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "group filter"),
		),
		subjectFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "subject filter"),
		),
		clearFilters: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filters"),
		),
		edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		openExternal: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open external"),
		),
		preview: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "preview"),
		),
		copyURL: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy url"),
		),
		cycleTheme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "preview theme"),
		),
		toggleLogs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "activity"),
		),
		closeOverlay: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.sort,
		k.toggleRow,
		k.groupFilter,
		k.subjectFilter,
		k.refresh,
		k.toggleHelp,
		k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	nav := newTableKeys()
	return [][]key.Binding{
		{nav.up, nav.down, nav.left, nav.right, nav.pageUp, nav.pageDown},
		{k.sort, k.toggleRow, k.groupFilter, k.subjectFilter, k.clearFilters},
		{k.edit, k.remove, k.openExternal},
		{k.preview, k.copyURL, k.cycleTheme, k.closeOverlay},
		{k.refresh, k.toggleLogs, k.toggleHelp, k.quit},
	}
}

// assignmentSource is what the model fetches from; *fetch.Client in
// production.
type assignmentSource interface {
	Fetch(ctx context.Context) ([]assignment.Assignment, error)
	Endpoint() string
}

type assignmentsLoadedMsg struct {
	ticket fetch.Ticket
	list   []assignment.Assignment
	err    error
}

type resizeFlushMsg struct{}

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayPicker
	overlayPreview
)

type model struct {
	width  int
	height int

	styles styles
	keys   keyMap
	help   help.Model

	log    *zap.Logger
	layout config.LayoutConfig
	locale *tableview.Locale
	source assignmentSource
	ctx    context.Context
	seq    *fetch.Sequencer

	// assignments is only ever replaced wholesale.
	assignments    []assignment.Assignment
	loaded         bool
	loadErr        error
	lastLoaded     time.Time
	groupOptions   []assignment.Link
	subjectOptions []assignment.Link

	sort       tableview.SortState
	filters    tableview.Filters
	visibility *tableview.Visibility
	expansion  tableview.Expansion
	flushArmed bool

	table   *assignmentsColumn
	overlay overlayKind
	picker  *pickerColumn
	preview *previewColumn

	logs     *logsColumn
	showLogs bool

	spinner        spinner.Model
	spinnerActive  bool
	spinnerTicking bool // a tick chain is scheduled

	markdownTheme markdownTheme

	toastMessage string
	toastExpires time.Time

	now      func() time.Time
	copyText func(string) error
}

func initialModel(cfg *config.Config, locale *tableview.Locale, source assignmentSource, log *zap.Logger) *model {
	s := newStyles()
	if log == nil {
		log = zap.NewNop()
	}
	m := &model{
		styles:        s,
		keys:          newKeyMap(),
		help:          help.New(),
		log:           log,
		layout:        cfg.Layout,
		locale:        locale,
		source:        source,
		ctx:           context.Background(),
		seq:           &fetch.Sequencer{},
		visibility:    tableview.NewVisibility(cfg.Layout.CollapseBelowPx, cfg.Layout.ResizeThrottle, tableview.ColGroups),
		table:         newAssignmentsColumn("Opgaver"),
		logs:          newLogsColumn(nil),
		markdownTheme: currentMarkdownTheme(),
		now:           time.Now,
		copyText:      clipboard.WriteAll,
	}

	m.help.ShortSeparator = " │ "
	m.help.Styles.ShortKey = m.styles.statusHint.Copy().Bold(true)
	m.help.Styles.ShortDesc = m.styles.statusHint.Copy()
	m.help.Styles.ShortSeparator = m.styles.statusHint.Copy()
	m.help.Styles.Ellipsis = m.styles.statusHint.Copy()
	m.help.Styles.FullKey = m.styles.statusHint.Copy().Bold(true)
	m.help.Styles.FullDesc = m.styles.statusHint.Copy()
	m.help.Styles.FullSeparator = m.styles.statusSeg.Copy()

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = m.styles.statusHint.Copy().Bold(true)

	m.rebuild()
	return m
}

// withActivity attaches the buffer the activity panel reads from.
func (m *model) withActivity(buf *activityBuffer) *model {
	m.logs = newLogsColumn(buf)
	return m
}

func (m *model) Init() tea.Cmd {
	return m.startRefresh()
}

// startRefresh issues a new fetch, superseding any fetch in flight.
func (m *model) startRefresh() tea.Cmd {
	ticket, ctx := m.seq.Next(m.ctx)
	m.log.Debug("fetch_started", zap.Uint64("ticket", uint64(ticket)), zap.String("endpoint", m.source.Endpoint()))
	source := m.source
	fetchCmd := func() tea.Msg {
		list, err := source.Fetch(ctx)
		return assignmentsLoadedMsg{ticket: ticket, list: list, err: err}
	}
	m.spinnerActive = true
	if m.spinnerTicking {
		return fetchCmd
	}
	m.spinnerTicking = true
	return tea.Batch(fetchCmd, m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.spinnerActive {
			m.spinnerTicking = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if cmd := m.observeWidth(msg.Width); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.overlay == overlayPreview && m.preview != nil {
			m.preview.SetSize(m.overlaySize())
		}
		return m, tea.Batch(cmds...)

	case resizeFlushMsg:
		m.flushArmed = false
		changed, wait := m.visibility.Flush(m.now())
		if changed {
			m.onVisibilityChanged()
		}
		if wait > 0 {
			return m, m.armFlush(wait)
		}
		return m, nil

	case assignmentsLoadedMsg:
		m.applyLoaded(msg)
		return m, nil

	case filterChosenMsg:
		m.filters.Set(msg.column, msg.value)
		m.closeOverlay()
		m.log.Info("filter_changed", zap.String("column", string(msg.column)), zap.String("value", msg.value))
		m.rebuild()
		return m, nil

	case pickerClosedMsg:
		m.closeOverlay()
		return m, nil

	case tea.KeyMsg:
		if m.overlay != overlayNone {
			return m, m.updateOverlay(msg)
		}
		return m, m.handleKey(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.seq.Stop()
		return tea.Quit
	case key.Matches(msg, m.keys.refresh):
		return m.startRefresh()
	case key.Matches(msg, m.keys.sort):
		m.cycleSort()
	case key.Matches(msg, m.keys.toggleRow):
		m.toggleSelectedRow()
	case key.Matches(msg, m.keys.groupFilter):
		m.openPicker("Hold/klasse", tableview.ColGroups, m.groupOptions)
	case key.Matches(msg, m.keys.subjectFilter):
		m.openPicker("Fag", tableview.ColSubject, m.subjectOptions)
	case key.Matches(msg, m.keys.clearFilters):
		if m.filters.Len() > 0 {
			m.filters.Clear()
			m.rebuild()
			m.setToast("Filtre nulstillet", 3*time.Second)
		}
	case key.Matches(msg, m.keys.edit):
		m.triggerAction(tableview.ActionEdit)
	case key.Matches(msg, m.keys.remove):
		m.triggerAction(tableview.ActionDelete)
	case key.Matches(msg, m.keys.openExternal):
		m.triggerAction(tableview.ActionOpenExternal)
	case key.Matches(msg, m.keys.preview):
		m.openPreview()
	case key.Matches(msg, m.keys.copyURL):
		m.copySelectedURL()
	case key.Matches(msg, m.keys.cycleTheme):
		m.markdownTheme = nextMarkdownTheme(m.markdownTheme)
		setMarkdownTheme(m.markdownTheme)
		m.setToast("Tema: "+markdownThemeLabel(m.markdownTheme), 3*time.Second)
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.toggleLogs):
		m.showLogs = !m.showLogs
	default:
		_, cmd := m.table.Update(msg)
		return cmd
	}
	return nil
}

func (m *model) updateOverlay(msg tea.KeyMsg) tea.Cmd {
	switch m.overlay {
	case overlayPicker:
		_, cmd := m.picker.Update(msg)
		return cmd
	case overlayPreview:
		if key.Matches(msg, m.keys.closeOverlay) || key.Matches(msg, m.keys.preview) || key.Matches(msg, m.keys.quit) {
			m.closeOverlay()
			return nil
		}
		if key.Matches(msg, m.keys.cycleTheme) {
			m.markdownTheme = nextMarkdownTheme(m.markdownTheme)
			setMarkdownTheme(m.markdownTheme)
			m.preview.Refresh()
			return nil
		}
		_, cmd := m.preview.Update(msg)
		return cmd
	}
	return nil
}

// observeWidth converts a terminal width to device-independent pixels and
// feeds it to the visibility controller, arming a flush when throttled.
func (m *model) observeWidth(cols int) tea.Cmd {
	px := cols * m.layout.CellWidthPx
	changed, wait := m.visibility.Observe(px, m.now())
	if changed {
		m.onVisibilityChanged()
	}
	if wait > 0 {
		return m.armFlush(wait)
	}
	return nil
}

func (m *model) armFlush(wait time.Duration) tea.Cmd {
	if m.flushArmed {
		return nil
	}
	m.flushArmed = true
	return tea.Tick(wait, func(time.Time) tea.Msg { return resizeFlushMsg{} })
}

func (m *model) onVisibilityChanged() {
	width, _ := m.visibility.Width()
	m.log.Debug("column_visibility_changed",
		zap.Int("width_px", width),
		zap.Bool("groups_visible", m.visibility.IsVisible(tableview.ColGroups)),
	)
	m.rebuild()
}

func (m *model) applyLoaded(msg assignmentsLoadedMsg) {
	if !m.seq.Accept(msg.ticket) {
		m.log.Debug("fetch_superseded", zap.Uint64("ticket", uint64(msg.ticket)))
		return
	}
	m.spinnerActive = false
	if msg.err != nil {
		m.loadErr = msg.err
		m.log.Warn("fetch_failed", zap.Error(msg.err), zap.Bool("retryable", fetch.IsRetryable(msg.err)))
		m.setToast("Kunne ikke hente opgaver", 5*time.Second)
		return
	}

	m.assignments = msg.list
	m.loaded = true
	m.loadErr = nil
	m.lastLoaded = m.now()
	m.expansion.Reset()
	m.groupOptions = tableview.DeriveGroupOptions(m.assignments, m.locale)
	m.subjectOptions = tableview.DeriveSubjectOptions(m.assignments, m.locale)
	m.rebuild()
	m.log.Info("assignments_loaded", zap.Int("count", len(m.assignments)))
}

// rebuild recomputes the snapshot from the current data and view state.
func (m *model) rebuild() {
	m.table.SetSnapshot(tableview.Build(tableview.Input{
		Rows:       m.assignments,
		Locale:     m.locale,
		Sort:       m.sort,
		Filters:    &m.filters,
		Visibility: m.visibility,
		Expansion:  &m.expansion,
	}))
}

func (m *model) cycleSort() {
	h, ok := m.table.FocusedHeader()
	if !ok || !h.Sortable {
		m.setToast("Kolonnen kan ikke sorteres", 3*time.Second)
		return
	}
	m.sort = m.sort.Cycle(h.Column)
	m.log.Info("sort_changed", zap.String("column", string(h.Column)), zap.Stringer("direction", m.sort.DirectionOf(h.Column)))
	m.rebuild()
}

func (m *model) toggleSelectedRow() {
	row, ok := m.table.SelectedRow()
	if !ok {
		return
	}
	if !row.Expandable {
		m.setToast("Alle kolonner er synlige", 3*time.Second)
		return
	}
	m.expansion.Toggle(row.ID)
	m.rebuild()
}

func (m *model) triggerAction(kind tableview.ActionKind) {
	row, ok := m.table.SelectedRow()
	if !ok {
		return
	}
	for _, action := range row.Actions {
		if action.Kind == kind {
			m.log.Info("row_action", zap.String("row", row.ID), zap.String("action", action.Label))
			m.setToast(action.Notification(), 4*time.Second)
			return
		}
	}
	m.setToast("Handlingen er ikke tilgængelig for denne opgave", 3*time.Second)
}

func (m *model) openPicker(title string, target tableview.ColumnID, options []assignment.Link) {
	if len(options) == 0 {
		m.setToast("Ingen valgmuligheder", 3*time.Second)
		return
	}
	m.picker = newPickerColumn(title, target, options, m.filters.Value(target), m.styles)
	m.picker.SetSize(m.overlaySize())
	m.overlay = overlayPicker
}

func (m *model) openPreview() {
	row, ok := m.table.SelectedRow()
	if !ok {
		return
	}
	m.preview = newPreviewColumn(row.Record.LearningMaterial.Title, assignmentMarkdown(row.Record, m.locale))
	m.preview.SetSize(m.overlaySize())
	m.overlay = overlayPreview
}

func (m *model) closeOverlay() {
	m.overlay = overlayNone
	m.picker = nil
	m.preview = nil
}

func (m *model) overlaySize() (int, int) {
	width := min(72, m.width-4)
	if width < 24 {
		width = max(24, m.width)
	}
	height := max(8, m.height-6)
	return width, height
}

func (m *model) copySelectedURL() {
	row, ok := m.table.SelectedRow()
	if !ok {
		return
	}
	url := strings.TrimSpace(row.Record.LearningMaterial.URL)
	if url == "" {
		m.setToast("Opgaven har ingen adresse", 3*time.Second)
		return
	}
	if err := m.copyText(url); err != nil {
		m.log.Warn("clipboard_failed", zap.Error(err))
		m.setToast("Udklipsholder utilgængelig", 4*time.Second)
		return
	}
	m.setToast("Adresse kopieret", 3*time.Second)
}

func (m *model) View() string {
	var builder strings.Builder

	helpWidth := m.width - 4
	if helpWidth < 0 {
		helpWidth = 0
	}
	m.help.Width = helpWidth

	title := "Opgaver • " + m.source.Endpoint()
	top := m.styles.topBar.Width(m.width).Render(title)
	filters := m.renderFilterBar()
	errPanel := m.renderError()
	helpView := m.help.View(m.keys)
	status := m.renderStatus()
	logsView := ""
	if m.showLogs {
		m.logs.SetSize(m.width, logsHeight)
		m.logs.Sync()
		logsView = m.logs.View(m.styles, false)
	}

	used := lipgloss.Height(top) + lipgloss.Height(filters) + lipgloss.Height(helpView) + lipgloss.Height(status)
	if errPanel != "" {
		used += lipgloss.Height(errPanel)
	}
	if logsView != "" {
		used += lipgloss.Height(logsView)
	}
	bodyHeight := max(5, m.height-used)

	builder.WriteString(top)
	builder.WriteRune('\n')
	builder.WriteString(filters)
	builder.WriteRune('\n')
	if errPanel != "" {
		builder.WriteString(errPanel)
		builder.WriteRune('\n')
	}

	switch {
	case m.overlay == overlayPicker && m.picker != nil:
		builder.WriteString(lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.picker.View(m.styles, true)))
	case m.overlay == overlayPreview && m.preview != nil:
		builder.WriteString(lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.preview.View(m.styles, true)))
	case !m.loaded && m.loadErr == nil:
		builder.WriteString(lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Henter opgaver…"))
	case !m.loaded:
		// nothing to show yet beyond the error panel
	default:
		m.table.SetSize(m.width, bodyHeight)
		builder.WriteString(m.table.View(m.styles, true))
	}
	builder.WriteRune('\n')
	if logsView != "" {
		builder.WriteString(logsView)
		builder.WriteRune('\n')
	}

	if helpView != "" {
		builder.WriteString(helpView)
		if !strings.HasSuffix(helpView, "\n") {
			builder.WriteRune('\n')
		}
	}
	builder.WriteString(status)
	return builder.String()
}

func (m *model) renderFilterBar() string {
	segments := []string{}
	if len(m.groupOptions) > 0 {
		segments = append(segments, m.styles.filterChip.Render("Hold/klasse: "+ternary(m.filters.Value(tableview.ColGroups) != "", m.filters.Value(tableview.ColGroups), allOption)))
	}
	if len(m.subjectOptions) > 0 {
		segments = append(segments, m.styles.filterChip.Render("Fag: "+ternary(m.filters.Value(tableview.ColSubject) != "", m.filters.Value(tableview.ColSubject), allOption)))
	}
	if len(segments) == 0 {
		return m.styles.filterBar.Render(m.styles.statusHint.Render("Ingen filtre"))
	}
	return m.styles.filterBar.Width(m.width).Render(strings.Join(segments, "│"))
}

func (m *model) renderError() string {
	if m.loadErr == nil {
		return ""
	}
	code := "ERROR"
	var fe *fetch.Error
	if errors.As(m.loadErr, &fe) {
		code = fe.Code
	}
	lines := []string{
		m.styles.errorTitle.Render("Kunne ikke hente opgaver (" + code + ")"),
		m.loadErr.Error(),
	}
	if m.loaded {
		lines = append(lines, m.styles.statusHint.Render("Viser data fra "+m.lastLoaded.Format("15:04:05")+"."))
	}
	lines = append(lines, m.styles.statusHint.Render("Tryk r for at prøve igen."))
	width := max(20, m.width-4)
	return m.styles.errorPanel.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *model) renderStatus() string {
	focusValue := strings.TrimSpace(m.table.FocusValue())
	if focusValue == "" {
		focusValue = "—"
	}

	segments := []string{
		m.styles.statusSeg.Render(fmt.Sprintf("%s: %s", m.table.Title(), focusValue)),
	}
	if h, ok := m.table.FocusedHeader(); ok {
		segments = append(segments, m.styles.statusSeg.Render("Kolonne: "+headerText(h)))
	}
	if m.sort.Active() {
		for _, h := range m.table.Snapshot().Headers {
			if h.Column == m.sort.Column {
				segments = append(segments, m.styles.statusSeg.Render("Sortering: "+h.Label+" "+sortGlyphs[m.sort.Direction]))
				break
			}
		}
	}
	if width, measured := m.visibility.Width(); measured {
		layout := fmt.Sprintf("%dpx", width)
		if m.visibility.AnyHidden() {
			layout += " (kompakt)"
		}
		segments = append(segments, m.styles.statusSeg.Render(layout))
	}
	if m.spinnerActive {
		segments = append(segments, m.styles.statusSeg.Render(m.spinner.View()+" Henter…"))
	} else if !m.lastLoaded.IsZero() {
		segments = append(segments, m.styles.statusSeg.Render("Opdateret "+formatElapsed(m.now().Sub(m.lastLoaded))+" siden"))
	}
	if m.toastMessage != "" {
		if m.now().After(m.toastExpires) {
			m.toastMessage = ""
		} else {
			segments = append(segments, m.styles.statusSeg.Render(m.toastMessage))
		}
	}
	content := strings.Join(segments, lipgloss.NewStyle().Render("│"))
	return m.styles.statusBar.Width(m.width).Render(content)
}

func (m *model) setToast(msg string, duration time.Duration) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		m.toastMessage = ""
		m.toastExpires = time.Time{}
		return
	}
	if duration <= 0 {
		duration = 5 * time.Second
	}
	m.toastMessage = trimmed
	m.toastExpires = m.now().Add(duration)
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return "<1s"
	}
	totalSeconds := int(d / time.Second)
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	if totalMinutes < 60 {
		seconds := totalSeconds % 60
		return fmt.Sprintf("%dm%02ds", totalMinutes, seconds)
	}
	hours := totalMinutes / 60
	minutes := totalMinutes % 60
	return fmt.Sprintf("%dh%02dm", hours, minutes)
}

func ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
