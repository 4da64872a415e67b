package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/minhyannv/chat-assistant-go/pkg/chat"
	loggerpkg "github.com/minhyannv/chat-assistant-go/pkg/logger"
	"github.com/minhyannv/chat-assistant-go/pkg/page"
	"github.com/minhyannv/chat-assistant-go/pkg/render"
)

// completionMsg carries the outcome of one completion request back to Update.
type completionMsg struct {
	pending chat.Pending
	content string
	err     error
}

// modelNamer is implemented by completers that report the model they query.
type modelNamer interface {
	Model() string
}

// Model is the chat page state.
type Model struct {
	ctx       context.Context
	session   *chat.Session
	completer chat.Completer
	renderer  *render.Terminal
	modelName string
	logger    loggerpkg.Logger

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	pending chat.Pending
	loading bool
	ready   bool
	err     error

	width  int
	height int
}

// NewModel creates the chat page for session.
func NewModel(ctx context.Context, session *chat.Session, completer chat.Completer, logger loggerpkg.Logger) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = loggerpkg.NopLogger{}
	}

	var modelName string
	if n, ok := completer.(modelNamer); ok {
		modelName = n.Model()
	}

	ti := textinput.New()
	ti.Placeholder = page.InputPlaceholder
	ti.Prompt = "› "
	ti.CharLimit = 4000
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = loadingStyle

	return Model{
		ctx:       ctx,
		session:   session,
		completer: completer,
		renderer:  render.NewTerminal(render.DefaultStyle),
		modelName: modelName,
		logger:    logger,
		input:     ti,
		spinner:   s,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+l":
			m.clear()
			return m, nil
		case "enter":
			return m.submit()
		}

	case completionMsg:
		if _, ok := m.session.Finish(msg.pending, msg.content, msg.err); ok {
			m.loading = false
			m.err = msg.err
			m.refresh()
		}

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if _, ok := msg.(tea.KeyMsg); ok && !m.loading {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	raw := m.input.Value()
	input := strings.TrimSpace(raw)
	switch input {
	case "":
		return m, nil
	case "/clear":
		m.input.Reset()
		m.clear()
		return m, nil
	case "/quit", "/exit":
		return m, tea.Quit
	}

	pending, err := m.session.Begin(raw)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.input.Reset()
	m.pending = pending
	m.loading = true
	m.err = nil
	m.refresh()

	return m, tea.Batch(m.complete(pending), m.spinner.Tick)
}

// complete runs the blocking request off the event loop.
func (m Model) complete(p chat.Pending) tea.Cmd {
	completer := m.completer
	ctx := m.ctx
	return func() tea.Msg {
		if completer == nil {
			return completionMsg{pending: p, err: fmt.Errorf("no completion backend configured")}
		}
		content, err := completer.Complete(ctx, p.Messages)
		return completionMsg{pending: p, content: content, err: err}
	}
}

func (m *Model) clear() {
	m.session.Clear()
	m.loading = false
	m.err = nil
	m.pending = chat.Pending{}
	m.refresh()
	loggerpkg.Info(m.logger, "chat cleared", nil)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 4
	inputHeight := 3
	statusHeight := 1

	vpWidth := width - sidebarWidth - 4
	if vpWidth < 20 {
		vpWidth = 20
	}
	vpHeight := height - headerHeight - inputHeight - statusHeight - 2
	if vpHeight < 5 {
		vpHeight = 5
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.input.Width = width - sidebarWidth - 10
	m.refresh()
}

// refresh re-renders the transcript into the viewport.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript(m.viewport.Width - 2))
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript(width int) string {
	turns := m.session.Transcript()
	if len(turns) == 0 {
		return welcomeStyle.Render("Start a conversation by typing a message below.")
	}

	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if turn.Role == chat.RoleUser {
			b.WriteString(userLabelStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(userTextStyle.Width(width).Render(turn.Content))
			continue
		}
		b.WriteString(assistantLabelStyle.Render("Assistant"))
		b.WriteString("\n")
		if turn.IsError() {
			b.WriteString(errorTextStyle.Width(width).Render(turn.Content))
			continue
		}
		rendered, err := m.renderer.Render(turn.Content, width)
		if err != nil {
			rendered = userTextStyle.Width(width).Render(turn.Content)
		}
		b.WriteString(rendered)
	}
	if m.loading {
		b.WriteString("\n\n")
		b.WriteString(assistantLabelStyle.Render("Assistant"))
		b.WriteString("\n  ")
		b.WriteString(loadingStyle.Render(page.Thinking))
	}
	return b.String()
}

// View renders the page.
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}
	mainWidth := m.viewport.Width + 2

	subtitle := page.Subtitle
	if m.modelName != "" {
		subtitle += "  •  " + m.modelName
	}
	header := headerStyle.Width(m.width - 2).Render(lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(page.Title),
		subtitleStyle.Render(subtitle),
	))

	messages := messagesStyle.Width(mainWidth).Height(m.viewport.Height).Render(m.viewport.View())

	var inputContent string
	if m.loading {
		inputContent = m.spinner.View() + " " + loadingStyle.Render(page.Thinking)
	} else {
		inputContent = m.input.View()
	}
	input := inputStyle.Width(mainWidth).Render(inputContent)

	main := lipgloss.JoinVertical(lipgloss.Left, messages, input)
	sidebar := m.renderSidebar(lipgloss.Height(main))
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)

	sections := []string{header, body, m.renderStatusBar()}
	if m.err != nil {
		sections = append(sections, errorStyle.Render(chat.ErrorContent(m.err)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderSidebar(height int) string {
	inner := sidebarWidth - 4
	var lines []string
	lines = append(lines, sidebarHeadingStyle.MarginTop(0).Render(page.SettingsHeading))
	lines = append(lines, sidebarKeyStyle.Render("ctrl+l")+sidebarTextStyle.Render(" "+page.ClearLabel))

	lines = append(lines, sidebarHeadingStyle.Render(page.GuideHeading))
	for i, step := range page.Instructions {
		lines = append(lines, sidebarTextStyle.Width(inner).Render(fmt.Sprintf("%d. %s", i+1, step)))
	}

	lines = append(lines, sidebarHeadingStyle.Render(page.SecurityHeading))
	lines = append(lines, securityStyle.Width(inner).Render(page.SecurityNote))

	return sidebarStyle.Width(sidebarWidth - 2).Height(height - 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderStatusBar() string {
	return statusBarStyle.Render("enter send  •  ctrl+l clear  •  ↑/↓ pgup/pgdn scroll  •  esc quit")
}
