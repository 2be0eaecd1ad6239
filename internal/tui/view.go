package tui

import (
	"fmt"
	"strings"
)

const barWidth = 50

// View renders the dashboard
func (m Model) View() string {
	var s strings.Builder

	title := fmt.Sprintf("%s System Monitor", m.hostname)
	s.WriteString(BannerStyle.Render(title) + "\n\n")

	r := m.current
	if r == nil {
		s.WriteString("Collecting samples...\n")
		return s.String()
	}

	s.WriteString(LabelStyle.Render("Time:") + " " + r.At.Format("2006-01-02 15:04:05") + "\n")
	s.WriteString(LabelStyle.Render("Uptime:") + " " + r.Uptime.String() + "\n")
	s.WriteString(LabelStyle.Render("Processes:") + fmt.Sprintf(" %d\n\n", r.Processes))

	// CPU
	s.WriteString(LabelStyle.Render("CPU Usage:") + fmt.Sprintf(" %.0f%% (Temp: %.0f°C)\n", r.CPU, r.Temperature))
	s.WriteString(ProgressBar(r.CPU, m.barWidth()) + "\n")
	if len(r.CPUHistory) > 0 {
		s.WriteString(LabelStyle.Render(fmt.Sprintf("CPU History (%ds):", len(r.CPUHistory))) + "\n")
		s.WriteString(Sparkline(r.CPUHistory) + "\n")
	}

	// Memory
	s.WriteString("\n" + LabelStyle.Render("Memory:") + fmt.Sprintf(" %s / %s (%.1f%%)\n",
		FormatBytes(r.Memory.Used), FormatBytes(r.Memory.Total), r.Memory.Percent))
	s.WriteString(ProgressBar(r.Memory.Percent, m.barWidth()) + "\n")

	// Disk
	s.WriteString("\n" + LabelStyle.Render("Disk:") + fmt.Sprintf(" %s / %s (%.1f%%)\n",
		FormatBytes(r.Disk.Used), FormatBytes(r.Disk.Total), r.Disk.Percent))
	s.WriteString(ProgressBar(r.Disk.Percent, m.barWidth()) + "\n")

	// Network
	s.WriteString("\n" + LabelStyle.Render("Network:") + "\n")
	s.WriteString(fmt.Sprintf("  RX: %s\n", FormatBytes(r.Network.RxTotal)))
	s.WriteString(fmt.Sprintf("  TX: %s\n", FormatBytes(r.Network.TxTotal)))

	s.WriteString("\n" + HelpStyle.Render("Press q or Ctrl+C to return to shell") + "\n")
	return s.String()
}

// barWidth shrinks bars on narrow terminals
func (m Model) barWidth() int {
	if m.width > 0 && m.width-4 < barWidth {
		if m.width <= 14 {
			return 10
		}
		return m.width - 4
	}
	return barWidth
}
