package tui

import tea "github.com/charmbracelet/bubbletea"

// Update handles messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}

	case tickMsg:
		return m, tea.Batch(fetchReading(m.monitor, m.processCount), tickCmd(m.refresh))

	case readingMsg:
		m.current = msg.reading
	}

	return m, nil
}
