package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestActivityBufferKeepsNewestLines(t *testing.T) {
	buf := newActivityBuffer(3)
	for i := 0; i < 5; i++ {
		_, err := fmt.Fprintf(buf, "line %d\n", i)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"line 2", "line 3", "line 4"}, buf.Lines())

	_, _ = buf.Write([]byte("a\n\nb\n"))
	assert.Equal(t, []string{"line 4", "a", "b"}, buf.Lines())
}

func TestTeeActivityCapturesInfoAndAbove(t *testing.T) {
	buf := newActivityBuffer(10)
	log := teeActivity(zap.NewNop(), buf)

	log.Debug("hidden")
	log.Info("assignments_loaded", zap.Int("count", 3))
	log.Warn("fetch_failed")

	lines := buf.Lines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "INFO")
	assert.Contains(t, lines[0], "assignments_loaded")
	assert.Contains(t, lines[0], `"count": 3`)
	assert.Contains(t, lines[1], "WARN")
}

func TestActivityPanelToggle(t *testing.T) {
	buf := newActivityBuffer(10)
	m, _ := startLoaded(t, sampleAssignments())
	m.withActivity(buf)
	m.log = teeActivity(m.log, buf)

	assert.NotContains(t, m.View(), logsPanelTitle)

	send(m, keyRune('L'))
	assert.True(t, m.showLogs)
	send(m, keyRune('s'))
	view := m.View()
	assert.Contains(t, view, logsPanelTitle)
	assert.Contains(t, view, "sort_changed")
	assert.Contains(t, m.logs.FocusValue(), "sort_changed")

	send(m, keyRune('L'))
	assert.NotContains(t, m.View(), logsPanelTitle)
}
