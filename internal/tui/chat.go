// Package tui is the terminal chat front end.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/talon-assistant/talent-catalog/pkg/assistant"
)

var (
	purple = lipgloss.Color("#7D56F4")
	green  = lipgloss.Color("#04B575")
	red    = lipgloss.Color("#ED567A")
	gray   = lipgloss.Color("#626262")
	white  = lipgloss.Color("#FAFAFA")

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(white).
			Background(purple).
			Padding(0, 1).
			MarginBottom(1)

	styleUser   = lipgloss.NewStyle().Bold(true).Foreground(purple)
	styleTalon  = lipgloss.NewStyle().Bold(true).Foreground(green)
	styleTalent = lipgloss.NewStyle().Foreground(gray)
	styleFailed = lipgloss.NewStyle().Foreground(red)
	styleFooter = lipgloss.NewStyle().Foreground(gray).MarginTop(1)
)

// header, input and footer rows around the transcript.
const chromeHeight = 6

// Handler answers one line of input.
type Handler func(ctx context.Context, text string) assistant.Reply

type replyMsg assistant.Reply

type entry struct {
	user    bool
	talent  string
	text    string
	success bool
}

// Model is a scrolling transcript above a single line input.
type Model struct {
	ctx     context.Context
	handle  Handler
	input   textinput.Model
	view    viewport.Model
	entries []entry
	busy    bool
	width   int
	ready   bool
}

func New(ctx context.Context, handle Handler) Model {
	in := textinput.New()
	in.Placeholder = "add task buy milk, convert 5 miles to km, docker ps..."
	in.Prompt = "› "
	in.CharLimit = 2000
	in.Focus()
	return Model{ctx: ctx, handle: handle, input: in}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) send(text string) tea.Cmd {
	return func() tea.Msg {
		return replyMsg(m.handle(m.ctx, text))
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h := max(msg.Height-chromeHeight, 3)
		if !m.ready {
			m.view = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.view.Width, m.view.Height = msg.Width, h
		}
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		m.refresh()
		return m, nil

	case replyMsg:
		m.busy = false
		m.entries = append(m.entries, entry{talent: msg.Talent, text: msg.Text, success: msg.Success})
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			m.entries = append(m.entries, entry{user: true, text: text})
			m.busy = true
			m.refresh()
			return m, m.send(text)
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.view.SetContent(m.transcript())
	m.view.GotoBottom()
}

func (m Model) transcript() string {
	body := lipgloss.NewStyle().Width(max(m.width-2, 10))
	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if e.user {
			b.WriteString(styleUser.Render("you") + " " + e.text)
			continue
		}
		b.WriteString(styleTalon.Render("talon"))
		if e.talent != "" {
			b.WriteString(" " + styleTalent.Render("["+e.talent+"]"))
		}
		b.WriteString("\n")
		if e.success {
			b.WriteString(body.Render(e.text))
		} else {
			b.WriteString(body.Inherit(styleFailed).Render(e.text))
		}
	}
	if m.busy {
		b.WriteString("\n\n" + styleTalent.Render("talon is thinking..."))
	}
	return b.String()
}

func (m Model) View() string {
	if !m.ready {
		return "Starting talon..."
	}
	header := styleHeader.Render("TALON  talents at your command")
	footer := styleFooter.Render("[enter] send • [pgup/pgdn] scroll • [esc] quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.view.View(), m.input.View(), footer)
}
