package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rusenback/minios/internal/model"
)

// Model is the monitor dashboard state
type Model struct {
	monitor      ResourceMonitor
	processCount func() int
	hostname     string
	refresh      time.Duration

	current *reading
	width   int
	height  int
}

// reading is one refresh worth of dashboard data
type reading struct {
	At          time.Time
	Uptime      model.Uptime
	CPU         float64
	Temperature float64
	CPUHistory  []float64
	Memory      model.MemoryInfo
	Disk        model.DiskInfo
	Network     model.NetworkStats
	Processes   int
}

// Message types for Bubbletea update loop
type tickMsg time.Time

type readingMsg struct {
	reading *reading
}

// NewModel creates a dashboard redrawn every refresh interval
func NewModel(mon ResourceMonitor, processCount func() int, hostname string, refresh time.Duration) Model {
	if refresh <= 0 {
		refresh = time.Second
	}
	if processCount == nil {
		processCount = func() int { return 0 }
	}
	return Model{
		monitor:      mon,
		processCount: processCount,
		hostname:     hostname,
		refresh:      refresh,
	}
}

// Init takes the first reading and starts the refresh ticker
func (m Model) Init() tea.Cmd {
	return tea.Batch(fetchReading(m.monitor, m.processCount), tickCmd(m.refresh))
}
