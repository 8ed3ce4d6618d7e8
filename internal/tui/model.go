package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stemtutor/internal/domain"
)

// TutorPort is the TUI-facing subset of the tutoring service.
type TutorPort interface {
	HandleQuery(ctx context.Context, userID, query string) domain.Response
}

// Model is the Bubble Tea model for the interactive tutoring session.
type Model struct {
	service TutorPort
	userID  string
	input   textinput.Model
	view    viewport.Model
	last    *domain.Response
	status  string
	ready   bool
}

// New creates a new TUI model instance for the given user.
func New(service TutorPort, userID string) Model {
	ti := textinput.New()
	ti.Prompt = "? "
	ti.Placeholder = "Ask a STEM question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service: service,
		userID:  userID,
		input:   ti,
		view:    vp,
		status:  fmt.Sprintf("Hello %s! Ready to explore STEM? Ctrl+C to quit.", userID),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header, status, query frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.view.Width = maxInt(20, msg.Width)
		m.view.Height = maxInt(3, vh-rh)
		m.view.SetContent(m.renderResponse())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				resp := m.service.HandleQuery(context.Background(), m.userID, q)
				m.last = &resp
				m.status = fmt.Sprintf("Answered in %.2fs", resp.Latency.Seconds())
				m.input.SetValue("")
				m.view.SetContent(m.renderResponse())
				return m, nil
			}
		case "down":
			m.view.LineDown(1)
			return m, nil
		case "up":
			m.view.LineUp(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the last response.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("STEM Tutor")
	answer := answerBoxStyle.Render(m.view.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderResponse() string {
	if m.last == nil {
		return "Ask anything about math, physics, chemistry or biology."
	}
	r := m.last
	var b strings.Builder
	b.WriteString(labelStyle.Render("Answer: "))
	b.WriteString(r.Answer)
	b.WriteString(fmt.Sprintf("\n\n%s%.0f%%", labelStyle.Render("Confidence: "), r.RelevanceScore*100))
	if len(r.Concepts) > 0 {
		shown := r.Concepts
		if len(shown) > 3 {
			shown = shown[:3]
		}
		b.WriteString("\n" + labelStyle.Render("Key concepts: "))
		b.WriteString(strings.Join(shown, ", "))
	}
	if len(r.Sources) > 0 {
		b.WriteString("\n" + labelStyle.Render("Sources: "))
		b.WriteString(strings.Join(r.Sources, ", "))
	}
	return b.String()
}

var (
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
