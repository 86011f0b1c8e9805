package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vrsync/vrsync/log"
)

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.helpC.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		v := m.options.Session.Frame()
		m.state = m.options.Session.State()
		if !m.paused {
			m.orientation = v
		}
		return m, m.tick()
	}

	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.quit, m.keymap.forceQuit):
		return m, tea.Quit
	case key.Matches(msg, m.keymap.pause):
		m.paused = !m.paused
	case key.Matches(msg, m.keymap.restart):
		if m.options.Restart == nil {
			break
		}
		m.restartErr = m.options.Restart()
		if m.restartErr != nil {
			log.Warnf("restarting listener: %v", m.restartErr)
		}
	case key.Matches(msg, m.keymap.showHelp):
		m.helpC.ShowAll = !m.helpC.ShowAll
	}

	return m, nil
}
