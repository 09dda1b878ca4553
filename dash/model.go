// Package dash is a terminal dashboard for a running node: filtered-axis
// sparkline, classifier state and recent notifications.
package dash

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/danielliyk/Embedded-System-Labs/config"
	"github.com/danielliyk/Embedded-System-Labs/detector"
	"github.com/danielliyk/Embedded-System-Labs/node"
)

const (
	reportBuffer = 256
	maxEvents    = 8
	minWidth   = 40
	scaleMG    = 2000.0
)

// ReportMsg delivers a node report to the program.
type ReportMsg node.Report

// DoneMsg tells the dashboard the node stopped.
type DoneMsg struct {
	Err error
}

// Observer returns a node.Observer forwarding reports to p in order until
// ctx is done. Reports are dropped while the program lags.
func Observer(ctx context.Context, p *tea.Program) node.Observer {
	ch := make(chan node.Report, reportBuffer)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case r := <-ch:
				p.Send(ReportMsg(r))
			}
		}
	}()
	return func(r node.Report) {
		select {
		case ch <- r:
		default:
		}
	}
}

type event struct {
	time  time.Time
	label string
	code  byte
	style lipgloss.Style
}

// Controls connects the dashboard to a running node. Nil fields disable
// the matching feature: Period or SetPeriod the period keys, Snapshot the
// sparkline and sample count.
type Controls struct {
	Period    func() time.Duration
	SetPeriod func(time.Duration) error
	Snapshot  func() detector.Snapshot
}

// Model is the bubbletea model.
type Model struct {
	width int

	cfg config.Config
	ctl Controls

	last    node.Report
	ticks   int
	ups     int
	downs   int
	presses int
	events  []event
	done    bool
	err     error
}

// New creates a dashboard.
func New(cfg config.Config, ctl Controls) Model {
	return Model{
		width: 76,
		cfg:   cfg,
		ctl:   ctl,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(minWidth, msg.Width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReportMsg:
		m.record(node.Report(msg))
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c", "esc":
		return m, tea.Quit
	case "+", "=":
		m.stepPeriod(config.PeriodUnit)
	case "-", "_":
		m.stepPeriod(-config.PeriodUnit)
	}
	return m, nil
}

func (m *Model) stepPeriod(delta time.Duration) {
	if m.ctl.Period == nil || m.ctl.SetPeriod == nil {
		return
	}
	next := max(m.ctl.Period()+delta, config.PeriodUnit)
	if err := m.ctl.SetPeriod(next); err != nil {
		m.err = err
	}
}

func (m *Model) record(r node.Report) {
	m.last = r
	var ev *event
	switch r.Source {
	case node.SourceMotion:
		m.ticks++
		switch r.Motion {
		case detector.CodeUp:
			m.ups++
			ev = &event{label: "motion up", style: styleUp}
		case detector.CodeDown:
			m.downs++
			ev = &event{label: "motion down", style: styleDown}
		}
	case node.SourceButton:
		m.presses++
		ev = &event{label: r.Press + " press", style: styleButton}
	}
	if ev == nil {
		return
	}
	ev.time, ev.code = r.Time, r.Code
	events := append([]event{*ev}, m.events...)
	if len(events) > maxEvents {
		events = events[:maxEvents]
	}
	m.events = events
}

func (m Model) View() string {
	inner := m.width - 4
	var b strings.Builder

	b.WriteString(styleTitle.Render(fmt.Sprintf("gesture node · %s axis", m.cfg.Detector.Axis)))
	b.WriteString("\n\n")

	state := m.last.State
	if state == "" {
		state = detector.StateIdle.String()
	}
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n",
		styleLabel.Render("state"), stateStyle(state).Render(state),
		styleLabel.Render("filtered"), styleValue.Render(fmt.Sprintf("%+8.1f mg", m.last.Filtered)),
		styleLabel.Render("raw"), styleValue.Render(fmt.Sprintf("%v", m.last.Raw)),
	)

	var snap detector.Snapshot
	if m.ctl.Snapshot != nil {
		snap = m.ctl.Snapshot()
	}

	th := m.cfg.Detector.Classifier
	b.WriteString(gauge(m.last.Filtered, -scaleMG, scaleMG, inner, float64(th.Negative), float64(th.Positive)))
	b.WriteString("\n")
	b.WriteString(sparkline(snap.Filtered, inner, scaleMG))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %d   %s %d   %s %d   %s %d",
		styleLabel.Render("ticks"), m.ticks,
		styleLabel.Render("up"), m.ups,
		styleLabel.Render("down"), m.downs,
		styleLabel.Render("presses"), m.presses,
	)
	if m.ctl.Snapshot != nil {
		fmt.Fprintf(&b, "   %s %d", styleLabel.Render("samples"), snap.Samples)
	}
	if m.ctl.Period != nil {
		fmt.Fprintf(&b, "   %s %s", styleLabel.Render("period"), m.ctl.Period())
	}
	b.WriteString("\n\n")

	if len(m.events) == 0 {
		b.WriteString(styleLabel.Render("no notifications yet"))
		b.WriteString("\n")
	}
	for _, ev := range m.events {
		fmt.Fprintf(&b, "%s  %s  %s\n",
			styleLabel.Render(ev.time.Format("15:04:05.000")),
			ev.style.Render(fmt.Sprintf("%-12s", ev.label)),
			styleValue.Render(fmt.Sprintf("0x%02x", ev.code)),
		)
	}

	if m.done {
		msg := "sensor stream ended"
		if m.err != nil {
			msg = m.err.Error()
		}
		b.WriteString("\n" + styleDown.Render(msg) + "\n")
	} else if m.err != nil {
		b.WriteString("\n" + styleDown.Render(m.err.Error()) + "\n")
	}

	help := "q quit"
	if m.ctl.SetPeriod != nil {
		help += " · +/- sample period"
	}
	return stylePanel.Width(m.width-2).Render(b.String()) + "\n" + styleHelp.Render(help)
}
