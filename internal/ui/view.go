package ui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/00b1b1/tmb-pantalles/internal/panel"
)

var (
	screenStyle = lipgloss.NewStyle().Padding(1, 2)

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#F7A30E"))

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	destinationStyle = lipgloss.NewStyle().Bold(true)

	labelBoldStyle   = lipgloss.NewStyle().Bold(true)
	labelItalicStyle = lipgloss.NewStyle().Italic(true)
	labelPlainStyle  = lipgloss.NewStyle()

	rowNumberStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFFFFF"))

	countdownStyle = lipgloss.NewStyle().Bold(true)

	noDataStyle = lipgloss.NewStyle().Faint(true)

	disruptionAlertStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(lipgloss.Color("#000000")).
				Background(lipgloss.Color("#FFE501"))

	emergencyAlertStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#CF102D"))
)

// madridTZ is loaded once; the panels show Barcelona wall-clock time.
var madridTZ = mustLoadLocation("Europe/Madrid")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.arrivalsView())

	if m.cfg.ShowAlert {
		if entry, ok := m.rotator.Active(); ok {
			b.WriteString("\n\n")
			b.WriteString(alertView(entry))
		}
	}

	return screenStyle.Render(b.String())
}

func (m Model) headerView() string {
	badge := badgeStyle.Render(m.cfg.LineName)
	clock := clockStyle.Render(m.now.In(madridTZ).Format("15:04"))

	label := panel.DirectionLabels[m.labelIdx]
	var labelStr string
	switch m.labelIdx {
	case 0:
		labelStr = labelBoldStyle.Render(label)
	case 2:
		labelStr = labelItalicStyle.Render(label)
	default:
		labelStr = labelPlainStyle.Render(label)
	}

	destination := m.destination()
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		badge, "  ", labelStr, " ", destinationStyle.Render(destination))

	if m.width > lipgloss.Width(header)+lipgloss.Width(clock)+4 {
		gap := m.width - lipgloss.Width(header) - lipgloss.Width(clock) - 4
		return header + strings.Repeat(" ", gap) + clock
	}
	return header + "  " + clock
}

// destination resolves the headsign from the latest arrivals snapshot.
func (m Model) destination() string {
	snap := m.coord.Snapshot()
	if station := snap.Arrivals.Direction(m.cfg.DirectionID); station != nil && len(station.LiniesTrajectes) > 0 {
		return station.LiniesTrajectes[0].DestiTrajecte
	}
	return "Selecciona estació"
}

func (m Model) arrivalsView() string {
	snap := m.coord.Snapshot()

	if !snap.ArrivalsLoaded {
		return m.spin.View() + " Esperant informació..."
	}

	trains := snap.Arrivals.UpcomingTrains(m.cfg.DirectionID)
	nowMs := m.now.UnixMilli()

	rows := make([]string, 2)
	for i := 0; i < 2; i++ {
		number := rowNumberStyle.Render(strconv.Itoa(i + 1))
		if i < len(trains) {
			simplify := i == 1
			row := countdownStyle.Render(panel.TimeRemaining(trains[i].TempsArribada, nowMs, simplify))
			if trains[i].TempsTeoric {
				row += noDataStyle.Render(" (teòric)")
			}
			rows[i] = number + " " + row
		} else {
			rows[i] = number + " " + noDataStyle.Render(panel.TextNoData)
		}
	}

	return rows[0] + "\n" + rows[1]
}

func alertView(entry panel.Entry) string {
	style := emergencyAlertStyle
	if entry.IsDisruption {
		style = disruptionAlertStyle
	}
	if entry.IsCustom {
		style = lipgloss.NewStyle().Padding(0, 1)
		if entry.BgColor != "" {
			style = style.Background(lipgloss.Color(entry.BgColor))
		}
		if entry.TextColor != "" {
			style = style.Foreground(lipgloss.Color(entry.TextColor))
		}
	}

	body := entry.Title
	if entry.Content != "" {
		body += "\n" + entry.Content
	}
	if len(entry.AffectedLines) > 0 {
		body += "\n" + strings.Join(entry.AffectedLines, " ")
	}
	return style.Render(body)
}
