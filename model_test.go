package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/drexxdk/tanstack-table/internal/assignment"
	"github.com/drexxdk/tanstack-table/internal/config"
	"github.com/drexxdk/tanstack-table/internal/fetch"
	"github.com/drexxdk/tanstack-table/internal/tableview"
)

type stubResponse struct {
	list []assignment.Assignment
	err  error
}

// stubSource answers fetches in order, repeating the last response.
type stubSource struct {
	mu        sync.Mutex
	responses []stubResponse
	calls     int
}

func (s *stubSource) Fetch(context.Context) ([]assignment.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	return s.responses[idx].list, s.responses[idx].err
}

func (s *stubSource) Endpoint() string { return "http://mock.local/table/" }

func respond(list []assignment.Assignment) stubResponse { return stubResponse{list: list} }

func day(d int) assignment.Date {
	return assignment.NewDate(time.Date(2025, time.April, d, 0, 0, 0, 0, time.UTC))
}

func item(id, subject, material string, groups ...string) assignment.Assignment {
	links := make([]assignment.Link, len(groups))
	for i, g := range groups {
		links[i] = assignment.Link{Title: g, URL: "https://example.com/" + g}
	}
	return assignment.Assignment{
		ID:               id,
		Groups:           links,
		Subject:          assignment.Link{Title: subject, URL: "https://example.com/" + subject},
		Portal:           assignment.Link{Title: subject + "portalen", URL: "https://example.com/portal"},
		LearningMaterial: assignment.Link{Title: material, URL: "https://example.com/" + id},
		Period:           assignment.Period{Start: day(4), End: day(8)},
	}
}

func sampleAssignments() []assignment.Assignment {
	managed := item("b", "Matematik", "Hundreder", "5. B", "6. B")
	managed.ExternalManagement = &assignment.Link{URL: "https://example.com/external"}
	return []assignment.Assignment{
		item("a", "Matematik", "Ny tildeling", "5. B", "1. A", "2. A", "3. A"),
		managed,
		item("c", "Dansk", "Helte og antihelte", "Læsehold 1", "6. B"),
	}
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time           { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testLocale(t *testing.T) *tableview.Locale {
	t.Helper()
	l, err := tableview.NewLocale("da-DK", "UTC")
	require.NoError(t, err)
	return l
}

func optionTitles(options []assignment.Link) []string {
	out := make([]string, len(options))
	for i, opt := range options {
		out[i] = opt.Title
	}
	return out
}

func newTestModel(t *testing.T, source assignmentSource) (*model, *testClock) {
	t.Helper()
	setMarkdownTheme(markdownThemeDark)
	cfg := &config.Config{Layout: config.LayoutConfig{
		CollapseBelowPx: 920,
		CellWidthPx:     8,
		ResizeThrottle:  100 * time.Millisecond,
	}}
	m := initialModel(cfg, testLocale(t), source, zap.NewNop())
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	m.now = clock.Now
	return m, clock
}

// runCmd executes cmd and flattens batches into the messages they produce.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func loadedMsg(t *testing.T, cmd tea.Cmd) assignmentsLoadedMsg {
	t.Helper()
	for _, msg := range runCmd(cmd) {
		if loaded, ok := msg.(assignmentsLoadedMsg); ok {
			return loaded
		}
	}
	t.Fatal("command did not fetch")
	return assignmentsLoadedMsg{}
}

func send(m *model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func keyRune(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func rowIDs(m *model) []string {
	snap := m.table.Snapshot()
	out := make([]string, len(snap.Rows))
	for i, row := range snap.Rows {
		out[i] = row.ID
	}
	return out
}

// startLoaded returns a model that has been sized wide and has loaded list.
func startLoaded(t *testing.T, list []assignment.Assignment) (*model, *testClock) {
	t.Helper()
	m, clock := newTestModel(t, &stubSource{responses: []stubResponse{respond(list)}})
	send(m, tea.WindowSizeMsg{Width: 160, Height: 40})
	send(m, loadedMsg(t, m.Init()))
	return m, clock
}

func TestInitialLoadPopulatesTable(t *testing.T) {
	m, _ := startLoaded(t, sampleAssignments())

	assert.True(t, m.loaded)
	assert.False(t, m.spinnerActive)
	assert.NoError(t, m.loadErr)
	assert.Equal(t, []string{"a", "b", "c"}, rowIDs(m))
	assert.Equal(t, []string{"1. A", "2. A", "3. A", "5. B", "6. B", "Læsehold 1"}, optionTitles(m.groupOptions))
	assert.Equal(t, []string{"Dansk", "Matematik"}, optionTitles(m.subjectOptions))

	view := m.View()
	assert.Contains(t, view, "Ny tildeling")
	assert.Contains(t, view, "5. B og 3 mere")
	assert.Contains(t, view, "Hold/klasse")
}

func TestLoadingStateBeforeFirstResponse(t *testing.T) {
	m, _ := newTestModel(t, &stubSource{responses: []stubResponse{respond(nil)}})
	send(m, tea.WindowSizeMsg{Width: 160, Height: 40})
	_ = m.Init()
	assert.True(t, m.spinnerActive)
	assert.Contains(t, m.View(), "Henter opgaver")
}

func TestRefreshReplacesDataAtomically(t *testing.T) {
	first := sampleAssignments()
	second := []assignment.Assignment{item("z", "Biologi", "Evolution", "Læsehold 3")}
	source := &stubSource{responses: []stubResponse{respond(first), respond(second)}}
	m, _ := newTestModel(t, source)
	send(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	send(m, loadedMsg(t, m.Init()))

	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 1, m.expansion.Len())

	send(m, loadedMsg(t, send(m, keyRune('r'))))

	assert.Equal(t, []string{"z"}, rowIDs(m))
	assert.Zero(t, m.expansion.Len(), "expansion resets on refresh")
	assert.Equal(t, []string{"Biologi"}, optionTitles(m.subjectOptions))
	assert.NotContains(t, m.View(), "Ny tildeling")
}

func TestSupersededResponseIsDropped(t *testing.T) {
	older := []assignment.Assignment{item("old", "Dansk", "Gammel")}
	newer := []assignment.Assignment{item("new", "Dansk", "Ny")}
	m, _ := newTestModel(t, &stubSource{responses: []stubResponse{respond(older), respond(newer)}})
	send(m, tea.WindowSizeMsg{Width: 160, Height: 40})

	firstCmd := m.Init()
	secondCmd := send(m, keyRune('r'))
	first := loadedMsg(t, firstCmd)
	second := loadedMsg(t, secondCmd)

	// the newer response lands first, the older one afterwards
	send(m, second)
	send(m, first)
	assert.Equal(t, []string{"new"}, rowIDs(m))
	assert.False(t, m.spinnerActive)
}

func TestSupersededResponseArrivingFirstIsDropped(t *testing.T) {
	older := []assignment.Assignment{item("old", "Dansk", "Gammel")}
	newer := []assignment.Assignment{item("new", "Dansk", "Ny")}
	m, _ := newTestModel(t, &stubSource{responses: []stubResponse{respond(older), respond(newer)}})

	first := loadedMsg(t, m.Init())
	second := loadedMsg(t, send(m, keyRune('r')))

	send(m, first)
	assert.False(t, m.loaded, "stale response must not be applied")
	assert.True(t, m.spinnerActive)
	send(m, second)
	assert.Equal(t, []string{"new"}, rowIDs(m))
}

func TestFetchErrorShowsRetryableErrorState(t *testing.T) {
	failure := fmt.Errorf("boom: %w", &fetch.Error{Code: fetch.CodeTransport, Message: "could not reach the assignments service"})
	source := &stubSource{responses: []stubResponse{{err: failure}, respond(sampleAssignments())}}
	m, _ := newTestModel(t, source)
	send(m, tea.WindowSizeMsg{Width: 160, Height: 40})
	send(m, loadedMsg(t, m.Init()))

	require.Error(t, m.loadErr)
	view := m.View()
	assert.Contains(t, view, "TRANSPORT")
	assert.Contains(t, view, "Tryk r for at prøve igen")

	send(m, loadedMsg(t, send(m, keyRune('r'))))
	assert.NoError(t, m.loadErr)
	assert.Equal(t, []string{"a", "b", "c"}, rowIDs(m))
	assert.NotContains(t, m.View(), "Tryk r for at prøve igen")
}

func TestFailedRefreshKeepsPreviousRows(t *testing.T) {
	source := &stubSource{responses: []stubResponse{respond(sampleAssignments()), {err: errors.New("offline")}}}
	m, _ := newTestModel(t, source)
	send(m, tea.WindowSizeMsg{Width: 160, Height: 40})
	send(m, loadedMsg(t, m.Init()))
	send(m, loadedMsg(t, send(m, keyRune('r'))))

	assert.Error(t, m.loadErr)
	assert.Equal(t, []string{"a", "b", "c"}, rowIDs(m))
	view := m.View()
	assert.Contains(t, view, "Viser data fra")
	assert.Contains(t, view, "ERROR")
}

func TestEmptyResultRendersEmptyState(t *testing.T) {
	m, _ := startLoaded(t, []assignment.Assignment{})
	assert.True(t, m.loaded)
	assert.Contains(t, m.View(), emptyLabel)
	assert.Empty(t, m.groupOptions)

	send(m, keyRune('g'))
	assert.Equal(t, overlayNone, m.overlay, "pickers stay closed without options")
}

func TestResponsiveThresholdAndThrottle(t *testing.T) {
	m, clock := startLoaded(t, sampleAssignments())
	snap := m.table.Snapshot()
	assert.False(t, snap.ShowExpander)

	// 115 cells * 8px = 920px keeps every column, the next resize is throttled
	clock.Advance(time.Second)
	send(m, tea.WindowSizeMsg{Width: 115, Height: 40})
	assert.False(t, m.table.Snapshot().ShowExpander)

	clock.Advance(10 * time.Millisecond)
	cmd := send(m, tea.WindowSizeMsg{Width: 114, Height: 40})
	require.NotNil(t, cmd, "a throttled resize arms a flush")
	assert.False(t, m.table.Snapshot().ShowExpander)

	clock.Advance(90 * time.Millisecond)
	send(m, resizeFlushMsg{})
	snap = m.table.Snapshot()
	assert.True(t, snap.ShowExpander)
	assert.Equal(t, []tableview.ColumnID{tableview.ColGroups}, snap.Hidden)
	assert.NotContains(t, m.View(), "5. B og 3 mere")
}

func TestExpandRowShowsHiddenColumns(t *testing.T) {
	m, _ := newTestModel(t, &stubSource{responses: []stubResponse{respond(sampleAssignments())}})
	send(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	send(m, loadedMsg(t, m.Init()))

	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	row, ok := m.table.SelectedRow()
	require.True(t, ok)
	assert.True(t, row.Expanded)
	require.Len(t, row.Details, 1)
	assert.Contains(t, m.View(), "Hold/klasse: 5. B og 3 mere")

	send(m, tea.KeyMsg{Type: tea.KeyDown})
	send(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Equal(t, 2, m.expansion.Len())

	send(m, tea.KeyMsg{Type: tea.KeyUp})
	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, m.expansion.Len(), "collapsing keeps other rows expanded")
	row, _ = m.table.SelectedRow()
	assert.Empty(t, row.Details)
}

func TestExpandIsNoOpWhenNothingHidden(t *testing.T) {
	m, _ := startLoaded(t, sampleAssignments())
	send(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Zero(t, m.expansion.Len())
	assert.Equal(t, "Alle kolonner er synlige", m.toastMessage)
}

func TestSortCyclesFocusedHeader(t *testing.T) {
	m, _ := startLoaded(t, sampleAssignments())
	h, ok := m.table.FocusedHeader()
	require.True(t, ok)
	assert.Equal(t, tableview.ColGroups, h.Column)

	send(m, tea.KeyMsg{Type: tea.KeyRight})
	send(m, keyRune('s'))
	assert.Equal(t, tableview.SortState{Column: tableview.ColSubject, Direction: tableview.Ascending}, m.sort)
	assert.Equal(t, []string{"c", "a", "b"}, rowIDs(m))

	send(m, keyRune('s'))
	assert.Equal(t, []string{"b", "a", "c"}, rowIDs(m))
	assert.Contains(t, m.View(), "Fag ▼")

	send(m, keyRune('s'))
	assert.False(t, m.sort.Active())
	assert.Equal(t, []string{"a", "b", "c"}, rowIDs(m))
}

func TestStatusBarNamesSortColumn(t *testing.T) {
	m, _ := startLoaded(t, sampleAssignments())
	assert.NotContains(t, m.renderStatus(), "Sortering")

	send(m, tea.KeyMsg{Type: tea.KeyRight})
	send(m, keyRune('s'))
	assert.Contains(t, m.renderStatus(), "Sortering: Fag ▲")

	send(m, keyRune('s'))
	assert.Contains(t, m.renderStatus(), "Sortering: Fag ▼")
}

func TestRowActionsNotify(t *testing.T) {
	m, _ := startLoaded(t, sampleAssignments())

	send(m, keyRune('e'))
	assert.Equal(t, "Edit: a", m.toastMessage)
	send(m, keyRune('d'))
	assert.Equal(t, "Delete: a", m.toastMessage)
	send(m, keyRune('o'))
	assert.Equal(t, "Handlingen er ikke tilgængelig for denne opgave", m.toastMessage)

	send(m, tea.KeyMsg{Type: tea.KeyDown})
	send(m, keyRune('o'))
	assert.Equal(t, "External management: b", m.toastMessage)
	send(m, keyRune('e'))
	assert.Equal(t, "Handlingen er ikke tilgængelig for denne opgave", m.toastMessage)
}

func TestSubjectFilterPicker(t *testing.T) {
	m, _ := startLoaded(t, sampleAssignments())

	send(m, keyRune('f'))
	require.Equal(t, overlayPicker, m.overlay)
	assert.Equal(t, allOption, m.picker.FocusValue())

	send(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "Dansk", m.picker.FocusValue())
	msgs := runCmd(send(m, tea.KeyMsg{Type: tea.KeyEnter}))
	require.Len(t, msgs, 1)
	send(m, msgs[0])

	assert.Equal(t, overlayNone, m.overlay)
	assert.Equal(t, "Dansk", m.filters.Value(tableview.ColSubject))
	assert.Equal(t, []string{"c"}, rowIDs(m))

	// choosing another value replaces the filter
	send(m, keyRune('f'))
	assert.Equal(t, "Dansk", m.picker.FocusValue())
	send(m, tea.KeyMsg{Type: tea.KeyDown})
	send(m, runCmd(send(m, tea.KeyMsg{Type: tea.KeyEnter}))[0])
	assert.Equal(t, 1, m.filters.Len())
	assert.Equal(t, []string{"a", "b"}, rowIDs(m))

	send(m, keyRune('c'))
	assert.Zero(t, m.filters.Len())
	assert.Len(t, rowIDs(m), 3)
}

func TestGroupFilterAllOptionClears(t *testing.T) {
	m, _ := startLoaded(t, sampleAssignments())
	m.filters.Set(tableview.ColGroups, "6. B")
	m.rebuild()
	require.Equal(t, []string{"b", "c"}, rowIDs(m))

	send(m, keyRune('g'))
	require.Equal(t, overlayPicker, m.overlay)
	assert.Equal(t, "6. B", m.picker.FocusValue())
	send(m, tea.KeyMsg{Type: tea.KeyHome})
	for i := 0; i < 10; i++ {
		send(m, tea.KeyMsg{Type: tea.KeyUp})
	}
	assert.Equal(t, allOption, m.picker.FocusValue())
	send(m, runCmd(send(m, tea.KeyMsg{Type: tea.KeyEnter}))[0])
	assert.Zero(t, m.filters.Len())
	assert.Len(t, rowIDs(m), 3)
}

func TestPickerEscapeCloses(t *testing.T) {
	m, _ := startLoaded(t, sampleAssignments())
	send(m, keyRune('g'))
	msgs := runCmd(send(m, tea.KeyMsg{Type: tea.KeyEsc}))
	require.Len(t, msgs, 1)
	send(m, msgs[0])
	assert.Equal(t, overlayNone, m.overlay)
	assert.Zero(t, m.filters.Len())
}

func TestFilteredEmptyState(t *testing.T) {
	m, _ := startLoaded(t, sampleAssignments())
	m.filters.Set(tableview.ColGroups, "1. A")
	m.filters.Set(tableview.ColSubject, "Dansk")
	m.rebuild()
	assert.Empty(t, rowIDs(m))
	assert.Contains(t, m.View(), emptyFiltered)
}

func TestCopyLearningMaterialURL(t *testing.T) {
	m, _ := startLoaded(t, sampleAssignments())
	var copied string
	m.copyText = func(s string) error {
		copied = s
		return nil
	}
	send(m, keyRune('y'))
	assert.Equal(t, "https://example.com/a", copied)
	assert.Equal(t, "Adresse kopieret", m.toastMessage)

	m.copyText = func(string) error { return errors.New("no clipboard") }
	send(m, keyRune('y'))
	assert.Equal(t, "Udklipsholder utilgængelig", m.toastMessage)
}

func TestPreviewOverlay(t *testing.T) {
	m, _ := startLoaded(t, sampleAssignments())
	send(m, keyRune('v'))
	require.Equal(t, overlayPreview, m.overlay)
	assert.Equal(t, "Ny tildeling", m.preview.Title())
	assert.Contains(t, m.View(), "Ny tildeling")

	send(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, overlayNone, m.overlay)
}

func TestQuitStopsPendingFetch(t *testing.T) {
	m, _ := newTestModel(t, &stubSource{responses: []stubResponse{respond(nil)}})
	_ = m.Init()
	require.True(t, m.seq.Pending())
	cmd := send(m, keyRune('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.seq.Pending())
}

func TestToastExpires(t *testing.T) {
	m, clock := startLoaded(t, sampleAssignments())
	m.setToast("Hej", time.Second)
	assert.Contains(t, m.renderStatus(), "Hej")
	clock.Advance(2 * time.Second)
	assert.NotContains(t, m.renderStatus(), "Hej")
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0s", formatElapsed(0))
	assert.Equal(t, "<1s", formatElapsed(300*time.Millisecond))
	assert.Equal(t, "42s", formatElapsed(42*time.Second))
	assert.Equal(t, "2m05s", formatElapsed(125*time.Second))
	assert.Equal(t, "1h01m", formatElapsed(61*time.Minute))
}

func TestRefreshKeepsSingleSpinnerChain(t *testing.T) {
	list := sampleAssignments()
	m, _ := newTestModel(t, &stubSource{responses: []stubResponse{respond(list), respond(list)}})

	var (
		tick     spinner.TickMsg
		haveTick bool
		loaded   assignmentsLoadedMsg
	)
	for _, msg := range runCmd(m.Init()) {
		switch msg := msg.(type) {
		case spinner.TickMsg:
			tick, haveTick = msg, true
		case assignmentsLoadedMsg:
			loaded = msg
		}
	}
	require.True(t, haveTick)
	send(m, loaded)
	assert.False(t, m.spinnerActive)

	// the first tick is still queued when the next refresh starts
	refresh := send(m, keyRune('r'))
	assert.True(t, m.spinnerActive)
	for _, msg := range runCmd(refresh) {
		_, isTick := msg.(spinner.TickMsg)
		assert.False(t, isTick, "refresh must not start a second tick chain")
	}
	assert.NotNil(t, send(m, tick), "queued tick keeps the chain alive")
}

func TestSpinnerChainEndsWhenIdle(t *testing.T) {
	m, _ := startLoaded(t, sampleAssignments())
	require.False(t, m.spinnerActive)

	assert.Nil(t, send(m, m.spinner.Tick()))
	assert.False(t, m.spinnerTicking)

	cmd := send(m, keyRune('r'))
	assert.True(t, m.spinnerTicking)
	var sawTick bool
	for _, msg := range runCmd(cmd) {
		if _, ok := msg.(spinner.TickMsg); ok {
			sawTick = true
		}
	}
	assert.True(t, sawTick)
}
