// Package tui is the operator console: ask questions about the inventory
// or issue natural-language update commands, from the same terminal.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"warehouse-rag/internal/domain"
	"warehouse-rag/internal/overview"
)

// ConsolePort is the console-facing subset of the warehouse service.
type ConsolePort interface {
	Answer(ctx context.Context, question string) (domain.Query, error)
	Execute(command string) (*domain.UpdateResult, error)
	Summary() overview.Summary
}

type mode int

const (
	modeAsk mode = iota
	modeUpdate
)

// Model is the Bubble Tea model for the console.
type Model struct {
	service  ConsolePort
	input    textinput.Model
	viewport viewport.Model
	mode     mode
	status   string
	busy     bool
	ready    bool
}

type answerMsg struct {
	query domain.Query
	err   error
}

type updateMsg struct {
	result *domain.UpdateResult
	err    error
}

// New creates a console model.
func New(service ConsolePort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the inventory and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:  service,
		input:    ti,
		viewport: vp,
		status:   "Ready. Tab switches between ask and update mode.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		vh := msg.Height - (3 + qh) // header, summary, status
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		return m, nil

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("Answered (query %s)", msg.query.ID)
		m.viewport.SetContent(msg.query.Answer)
		return m, nil

	case updateMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Rejected: " + msg.err.Error()
			return m, nil
		}
		m.status = msg.result.Message
		var b strings.Builder
		fmt.Fprintf(&b, "Product %d updated.\n", msg.result.ProductID)
		for col, val := range msg.result.AppliedFields {
			fmt.Fprintf(&b, "  %s = %s\n", col, val)
		}
		for _, col := range msg.result.DroppedFields {
			fmt.Fprintf(&b, "  %s dropped (invalid value)\n", col)
		}
		m.viewport.SetContent(b.String())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			if m.mode == modeAsk {
				m.mode = modeUpdate
				m.input.Placeholder = "e.g. Update product 11023 stock to 50"
			} else {
				m.mode = modeAsk
				m.input.Placeholder = "Ask about the inventory and press Enter"
			}
			return m, nil
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.busy {
				return m, nil
			}
			m.input.SetValue("")
			m.busy = true
			if m.mode == modeAsk {
				m.status = "Thinking..."
				return m, m.askCmd(text)
			}
			m.status = "Applying update..."
			return m, m.updateCmd(text)
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) askCmd(question string) tea.Cmd {
	return func() tea.Msg {
		q, err := m.service.Answer(context.Background(), question)
		return answerMsg{query: q, err: err}
	}
}

func (m Model) updateCmd(command string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.service.Execute(command)
		return updateMsg{result: res, err: err}
	}
}

// View renders the console layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := "Warehouse Console [ask]"
	if m.mode == modeUpdate {
		title = "Warehouse Console [update]"
	}
	header := lipgloss.NewStyle().Bold(true).Render(title)
	summary := summaryStyle.Render(m.service.Summary().String())
	results := resultBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)
