// Package ui renders the departure board in the terminal. The bubbletea
// program is the single-threaded scheduler: the one-second clock tick drives
// the countdowns and the alert rotation, a five-second tick cycles the
// direction label, and the coordinator's poll lanes run outside, feeding
// snapshots that are read here on every tick.
package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/00b1b1/tmb-pantalles/internal/coordinator"
	"github.com/00b1b1/tmb-pantalles/internal/panel"
)

const (
	clockTickEvery = time.Second
	labelTickEvery = 5 * time.Second
)

// clockTickMsg fires every second for the clock and the countdowns.
type clockTickMsg time.Time

// labelTickMsg cycles the trilingual direction label.
type labelTickMsg time.Time

// Source is the slice of the coordinator the panel reads and steers.
type Source interface {
	Snapshot() coordinator.Snapshot
	SetSelection(coordinator.Selection)
}

// Model is the panel's state: the session config, the latest poll snapshot's
// derived views, and the rotation state machine.
type Model struct {
	cfg   panel.Config
	coord Source

	now      time.Time
	rotator  panel.Rotator
	labelIdx int
	spin     spinner.Model

	width  int
	height int
}

// NewModel builds the initial model for a configuration.
func NewModel(cfg panel.Config, coord Source) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		cfg:   cfg,
		coord: coord,
		now:   time.Now(),
		spin:  sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(clockTick(), labelTick(), m.spin.Tick)
}

func clockTick() tea.Cmd {
	return tea.Tick(clockTickEvery, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

func labelTick() tea.Cmd {
	return tea.Tick(labelTickEvery, func(t time.Time) tea.Msg {
		return labelTickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case clockTickMsg:
		m.now = time.Time(msg)
		m.refreshRotation()
		m.rotator.Tick(clockTickEvery)
		return m, clockTick()

	case labelTickMsg:
		m.labelIdx = (m.labelIdx + 1) % len(panel.DirectionLabels)
		return m, labelTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		if m.cfg.HideConfigButton {
			// Kiosk mode: the configuration surface is locked.
			return m, nil
		}
		switch msg.String() {
		case "d":
			if m.cfg.DirectionID == 1 {
				m.cfg.DirectionID = 2
			} else {
				m.cfg.DirectionID = 1
			}
			return m, nil
		case "a":
			snap := m.coord.Snapshot()
			known := make([]int, 0, len(snap.Alerts))
			for _, a := range snap.Alerts {
				known = append(known, a.ID)
			}
			m.cfg.SetShowAlert(!m.cfg.ShowAlert, known)
			m.applySelection()
			return m, nil
		case "e":
			m.cfg.ShowEmergencyAlert = !m.cfg.ShowEmergencyAlert
			return m, nil
		}
	}

	return m, nil
}

// refreshRotation rebuilds the combined alert list from the latest snapshot.
// The list is always recomputed, never patched.
func (m *Model) refreshRotation() {
	if !m.cfg.ShowAlert {
		m.rotator.SetEntries(nil)
		return
	}
	snap := m.coord.Snapshot()
	m.rotator.SetEntries(panel.CombineAlerts(snap.Alerts, m.cfg))
}

// applySelection pushes the config slice the poll lanes care about.
func (m *Model) applySelection() {
	m.coord.SetSelection(coordinator.Selection{
		LineCode:    m.cfg.LineCode,
		LineName:    m.cfg.LineName,
		StationCode: m.cfg.StationCode,
		ShowAlert:   m.cfg.ShowAlert,
	})
}
