package main

import (
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logsHeight     = 8
	activityLimit  = 200
	logsPanelTitle = "Aktivitet"
)

// activityBuffer keeps the most recent log lines for the activity panel.
type activityBuffer struct {
	mu    sync.Mutex
	lines []string
	limit int
}

func newActivityBuffer(limit int) *activityBuffer {
	if limit <= 0 {
		limit = activityLimit
	}
	return &activityBuffer{limit: limit}
}

func (b *activityBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.lines = append(b.lines, line)
	}
	if over := len(b.lines) - b.limit; over > 0 {
		b.lines = append([]string(nil), b.lines[over:]...)
	}
	return len(p), nil
}

func (b *activityBuffer) Sync() error { return nil }

func (b *activityBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// teeActivity returns a logger that also writes info-and-above events to buf
// in a compact console layout.
func teeActivity(log *zap.Logger, buf *activityBuffer) *zap.Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(buf), zapcore.InfoLevel)
	return log.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, core)
	}))
}

type logsColumn struct {
	title  string
	source *activityBuffer
	width  int
	height int
	view   viewport.Model
}

func newLogsColumn(source *activityBuffer) *logsColumn {
	return &logsColumn{
		title:  logsPanelTitle,
		source: source,
		view:   viewport.New(80, logsHeight),
	}
}

func (c *logsColumn) SetSize(width, height int) {
	if height < 3 {
		height = 3
	}
	c.width = width
	c.height = height
	c.view.Width = width - 2
	c.view.Height = height - 3
}

// Sync pulls the latest lines and keeps the view pinned to the bottom.
func (c *logsColumn) Sync() {
	if c.source == nil {
		c.view.SetContent("")
		return
	}
	c.view.SetContent(strings.Join(c.source.Lines(), "\n"))
	c.view.GotoBottom()
}

func (c *logsColumn) Update(msg tea.Msg) (column, tea.Cmd) {
	var cmd tea.Cmd
	c.view, cmd = c.view.Update(msg)
	return c, cmd
}

func (c *logsColumn) View(s styles, focused bool) string {
	body := s.columnTitle.Render(c.title) + "\n" + c.view.View()
	if focused {
		return s.panelFocused.Width(c.width - 2).Render(body)
	}
	return s.panel.Width(c.width - 2).Render(body)
}

func (c *logsColumn) Title() string {
	return c.title
}

func (c *logsColumn) FocusValue() string {
	if c.source == nil {
		return ""
	}
	lines := c.source.Lines()
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
