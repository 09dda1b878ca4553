package dash

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/danielliyk/Embedded-System-Labs/button"
	"github.com/danielliyk/Embedded-System-Labs/config"
	"github.com/danielliyk/Embedded-System-Labs/detector"
	"github.com/danielliyk/Embedded-System-Labs/node"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelRecordsReports(t *testing.T) {
	m := New(config.Default(), Controls{})
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	m = update(t, m, ReportMsg{Source: node.SourceMotion, Motion: detector.CodeIdle, Filtered: 10, Time: at})
	m = update(t, m, ReportMsg{Source: node.SourceMotion, Motion: detector.CodeUp, Code: 1, Filtered: 1000, State: "exceeded-up", Time: at})
	m = update(t, m, ReportMsg{Source: node.SourceButton, Kind: button.Long, Press: "long", Code: 2, Time: at})
	m = update(t, m, ReportMsg{Source: node.SourceMotion, Motion: detector.CodeDown, Code: 2, Filtered: -600, State: "exceeded-down", Time: at})

	require.Equal(t, 3, m.ticks)
	require.Equal(t, 1, m.ups)
	require.Equal(t, 1, m.downs)
	require.Equal(t, 1, m.presses)

	require.Len(t, m.events, 3)
	require.Equal(t, "motion down", m.events[0].label)
	require.Equal(t, "long press", m.events[1].label)
	require.Equal(t, "motion up", m.events[2].label)

	view := m.View()
	require.Contains(t, view, "exceeded-down")
	require.Contains(t, view, "long press")
	require.Contains(t, view, "0x02")
}

func TestModelDrawsNodeSnapshot(t *testing.T) {
	calls := 0
	m := New(config.Default(), Controls{Snapshot: func() detector.Snapshot {
		calls++
		return detector.Snapshot{Samples: 4321, Filtered: []float64{-1000, 2000}}
	}})

	view := m.View()
	require.Equal(t, 1, calls)
	require.Contains(t, view, "4321")
	require.Contains(t, view, "▄█")

	require.NotContains(t, New(config.Default(), Controls{}).View(), "samples")
}

func TestModelBoundsEvents(t *testing.T) {
	m := New(config.Default(), Controls{})
	for range maxEvents + 4 {
		m = update(t, m, ReportMsg{Source: node.SourceButton, Press: "short", Code: 1})
	}
	require.Len(t, m.events, maxEvents)
}

func TestModelPeriodKeys(t *testing.T) {
	period := 100 * time.Millisecond
	m := New(config.Default(), Controls{
		Period:    func() time.Duration { return period },
		SetPeriod: func(d time.Duration) error { period = d; return nil },
	})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	require.Equal(t, 110*time.Millisecond, period)

	for range 20 {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	}
	require.Equal(t, config.PeriodUnit, period)
	require.Contains(t, m.View(), "+/- sample period")
}

func TestModelPeriodError(t *testing.T) {
	boom := errors.New("rejected")
	m := New(config.Default(), Controls{
		Period:    func() time.Duration { return time.Second },
		SetPeriod: func(time.Duration) error { return boom },
	})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	require.ErrorIs(t, m.err, boom)
	require.Contains(t, m.View(), "rejected")
}

func TestModelQuit(t *testing.T) {
	m := New(config.Default(), Controls{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelDone(t *testing.T) {
	m := New(config.Default(), Controls{})
	m = update(t, m, DoneMsg{})
	require.Contains(t, m.View(), "sensor stream ended")
}

func TestSparkline(t *testing.T) {
	require.Equal(t, "    ", sparkline(nil, 4, 0))
	require.Equal(t, "  ▄█", sparkline([]float64{-1000, 2000}, 4, 2000))
	require.Equal(t, "█", sparkline([]float64{5, -3000}, 1, 2000))
}

func TestGauge(t *testing.T) {
	g := []rune(gauge(0, -10, 10, 21, -5, 5))
	require.Equal(t, '●', g[10])
	require.Equal(t, '┊', g[5])
	require.Equal(t, '┊', g[15])
	require.Equal(t, '─', g[0])
}
