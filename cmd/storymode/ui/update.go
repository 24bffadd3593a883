package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case engineResultMsg:
		return m.handleEngineResult(msg)
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case animationTickMsg:
		return m.handleAnimation(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m Model) handleEngineResult(msg engineResultMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		m.messages = m.messages[:len(m.messages)-1]
		m.loading = false
	}

	if msg.channelID != "" && msg.channelID != m.channelID {
		m.channelID = msg.channelID
		m.seen = 0
		if m.debug {
			m.messages = append(m.messages, "[DEBUG] channel: "+msg.channelID)
		}
	}

	if msg.info != "" {
		for _, line := range strings.Split(msg.info, "\n") {
			m.messages = append(m.messages, line)
		}
		m.messages = append(m.messages, "")
	}

	if msg.err != nil {
		m.messages = append(m.messages, displayError(msg.err))
		m.messages = append(m.messages, "")
	}

	// Characters speak through the transport, not through return values; pull
	// whatever landed in the channel since we last looked.
	if m.channelID != "" {
		delivered := m.channels.Messages(m.channelID)
		for _, line := range delivered[m.seen:] {
			m.messages = append(m.messages, line)
			m.messages = append(m.messages, "")
		}
		m.seen = len(delivered)
		if !m.channels.HasChannel(m.channelID) {
			m.channelID = ""
			m.seen = 0
		}
	}

	return m, nil
}

func (m Model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	return m, nil
}

func (m Model) handleAnimation(msg animationTickMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		m.animationFrame++
		return m, animationTimer()
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		if strings.TrimSpace(m.input) != "" && !m.loading {
			line := m.input
			m.input = ""
			m.messages = append(m.messages, "> "+line)
			m.messages = append(m.messages, "")

			cmd := m.dispatch(line)
			if cmd == nil {
				return m, nil
			}

			m.loading = true
			m.animationFrame = 0
			m.messages = append(m.messages, "LOADING_ANIMATION")
			return m, tea.Batch(cmd, animationTimer())
		}
		return m, nil

	case "backspace":
		if len(m.input) > 0 && !m.loading {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil

	default:
		if !m.loading && len(msg.String()) == 1 {
			m.input += msg.String()
		}
		return m, nil
	}
}
