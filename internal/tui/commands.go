package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rusenback/minios/internal/monitor"
)

// tickCmd creates a command that sends a tick message every interval
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchReading creates a command that samples the monitor
func fetchReading(mon ResourceMonitor, processCount func() int) tea.Cmd {
	return func() tea.Msg {
		return readingMsg{reading: takeReading(mon, processCount)}
	}
}

func takeReading(mon ResourceMonitor, processCount func() int) *reading {
	return &reading{
		At:          time.Now(),
		Uptime:      mon.Uptime(),
		CPU:         mon.CurrentCPU(),
		Temperature: mon.CurrentTemperature(),
		CPUHistory:  mon.History(monitor.MetricCPU),
		Memory:      mon.CurrentMemory(),
		Disk:        mon.CurrentDisk(),
		Network:     mon.NetworkStats(),
		Processes:   processCount(),
	}
}
