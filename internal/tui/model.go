package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atharv2823/BaatCheet/internal/chat"
	"github.com/atharv2823/BaatCheet/internal/provider"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// turnDoneMsg is delivered when a dispatched turn finishes. The reply is
// already in the store by the time it arrives.
type turnDoneMsg struct {
	conversationID string
	err            error
}

// Suggestions offered on an empty conversation, selectable with 1-3.
var suggestions = []string{
	"Generate a summary",
	"Are they a good fit for my job post?",
	"What is their training style?",
}

// ---------- styles ----------

var (
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	suggestionNumStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("2")).
				Bold(true)

	activeChatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	chatListStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	statusBarBgStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("235"))

	statusModelStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("235")).
				Foreground(lipgloss.Color("2")).
				Bold(true)

	welcomeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("8")).
				Padding(0, 1)

	welcomeTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("2")).
				Bold(true)

	welcomeLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("8"))

	welcomeValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))
)

var pulseSpinner = spinner.Spinner{
	Frames: []string{"·", "✢", "✳", "✶", "✻", "✽", "✻", "✶", "✳", "✢"},
	FPS:    120 * time.Millisecond,
}

// TUIConfig carries version/provider info for the welcome box and status bar.
type TUIConfig struct {
	Version  string
	Provider string
	Model    string
}

// Model is the bubbletea model for the interactive chat screen.
type Model struct {
	store      *chat.Store
	dispatcher *chat.Dispatcher
	cfg        TUIConfig

	textinput textinput.Model
	spinner   spinner.Model
	width     int
	height    int

	busy     bool
	quitting bool

	mdRenderer      *glamour.TermRenderer
	mdRendererWidth int
}

// NewModel creates the initial bubbletea model.
func NewModel(store *chat.Store, dispatcher *chat.Dispatcher, cfg TUIConfig) Model {
	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = pulseSpinner
	sp.Style = spinnerStyle

	return Model{
		store:      store,
		dispatcher: dispatcher,
		cfg:        cfg,
		textinput:  ti,
		spinner:    sp,
	}
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	cmds = append(cmds, tea.Println(m.renderWelcome()))
	// Resume: replay the transcript of the conversation active at startup.
	if active := m.store.Active(); active != nil && len(active.Messages) > 0 {
		cmds = append(cmds, tea.Println(m.renderTranscript(active)))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textinput.Width = m.width - 4

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			if m.busy {
				return m, nil
			}
			text := strings.TrimSpace(m.textinput.Value())
			if text == "" {
				return m, nil
			}
			m.textinput.SetValue("")
			return m.startTurn(text)

		case "1", "2", "3":
			// Suggestions fire only on an empty conversation with an empty
			// input line, otherwise digits are ordinary typing.
			if !m.busy && m.textinput.Value() == "" && m.suggestionsVisible() {
				idx := int(msg.String()[0] - '1')
				return m.startTurn(suggestions[idx])
			}

		case "ctrl+n":
			if m.busy {
				return m, nil
			}
			if _, err := m.store.NewConversation(); err != nil {
				cmds = append(cmds, tea.Println(errorStyle.Render("Error: "+err.Error())))
				return m, tea.Batch(cmds...)
			}
			cmds = append(cmds, tea.Println(systemStyle.Render("── new chat ──")))
			return m, tea.Batch(cmds...)

		case "tab":
			if m.busy {
				return m, nil
			}
			if next := m.nextConversation(); next != nil {
				m.store.SetActive(next.ID)
				cmds = append(cmds, tea.Println(m.renderSwitch(next)))
				return m, tea.Batch(cmds...)
			}

		case "ctrl+x":
			if m.busy {
				return m, nil
			}
			id := m.store.ActiveID()
			if id == "" {
				return m, nil
			}
			label := chat.Label(m.store.Active())
			if err := m.store.Delete(id); err != nil {
				cmds = append(cmds, tea.Println(errorStyle.Render("Error: "+err.Error())))
				return m, tea.Batch(cmds...)
			}
			cmds = append(cmds, tea.Println(systemStyle.Render("deleted: "+label)))
			return m, tea.Batch(cmds...)

		case "ctrl+l":
			cmds = append(cmds, tea.Println(m.renderChatList()))
			return m, tea.Batch(cmds...)

		case "ctrl+y":
			reply, ok := latestAssistant(m.store.Active())
			if !ok {
				cmds = append(cmds, tea.Println(systemStyle.Render("nothing to copy")))
				return m, tea.Batch(cmds...)
			}
			if err := clipboard.WriteAll(reply); err != nil {
				cmds = append(cmds, tea.Println(errorStyle.Render("Error: clipboard: "+err.Error())))
			} else {
				cmds = append(cmds, tea.Println(systemStyle.Render("copied reply to clipboard")))
			}
			return m, tea.Batch(cmds...)
		}

		if !m.busy {
			var cmd tea.Cmd
			m.textinput, cmd = m.textinput.Update(msg)
			cmds = append(cmds, cmd)
		}

	case turnDoneMsg:
		m.busy = false
		if msg.err != nil {
			// Provider failures never reach here, they become transcript
			// fallbacks. Anything surfacing is a store contract problem.
			cmds = append(cmds, tea.Println(errorStyle.Render("Error: "+msg.err.Error())))
			return m, tea.Batch(cmds...)
		}
		msgs := m.store.Messages(msg.conversationID)
		if len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			if last.Role == provider.RoleAssistant {
				cmds = append(cmds, tea.Println(m.renderMarkdown(last.Content)))
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// startTurn echoes the utterance to scrollback and dispatches it.
func (m Model) startTurn(text string) (tea.Model, tea.Cmd) {
	m.busy = true
	cmds := []tea.Cmd{
		tea.Println(userStyle.Render("You: ") + text),
		m.spinner.Tick,
		m.submitCmd(text),
	}
	return m, tea.Batch(cmds...)
}

func (m Model) submitCmd(text string) tea.Cmd {
	d := m.dispatcher
	s := m.store
	return func() tea.Msg {
		err := d.Submit(context.Background(), text)
		return turnDoneMsg{conversationID: s.ActiveID(), err: err}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var parts []string
	if m.busy {
		parts = append(parts, m.spinner.View()+hintStyle.Render(" Thinking…"))
	} else if m.suggestionsVisible() {
		parts = append(parts, renderSuggestions())
	}
	parts = append(parts, m.textinput.View(), m.renderStatusBar())
	return strings.Join(parts, "\n")
}

// suggestionsVisible reports whether the suggestion shortcuts apply: the
// active conversation is absent or has no messages yet.
func (m Model) suggestionsVisible() bool {
	active := m.store.Active()
	return active == nil || len(active.Messages) == 0
}

func renderSuggestions() string {
	var lines []string
	lines = append(lines, hintStyle.Render("Try one of these:"))
	for i, s := range suggestions {
		lines = append(lines, "  "+suggestionNumStyle.Render(fmt.Sprintf("%d", i+1))+
			suggestionStyle.Render(". "+s))
	}
	return strings.Join(lines, "\n")
}

// nextConversation returns the conversation after the active one in
// creation order, wrapping around. Nil when there is nothing to switch to.
func (m Model) nextConversation() *chat.Conversation {
	convs := m.store.Conversations()
	if len(convs) < 2 {
		return nil
	}
	activeID := m.store.ActiveID()
	for i, c := range convs {
		if c.ID == activeID {
			return convs[(i+1)%len(convs)]
		}
	}
	return convs[0]
}

func (m Model) renderSwitch(c *chat.Conversation) string {
	header := systemStyle.Render("── " + chat.Label(c) + " ──")
	if len(c.Messages) == 0 {
		return header
	}
	return header + "\n" + m.renderTranscript(c)
}

// renderTranscript replays a conversation into scrollback form.
func (m Model) renderTranscript(c *chat.Conversation) string {
	var parts []string
	for _, msg := range c.Messages {
		if msg.Role == provider.RoleUser {
			parts = append(parts, userStyle.Render("You: ")+msg.Content)
		} else {
			parts = append(parts, m.renderMarkdown(msg.Content))
		}
	}
	return strings.Join(parts, "\n")
}

func (m Model) renderChatList() string {
	convs := m.store.Conversations()
	if len(convs) == 0 {
		return systemStyle.Render("no chats yet")
	}
	activeID := m.store.ActiveID()
	width := m.width
	if width <= 0 {
		width = 80
	}
	var lines []string
	lines = append(lines, hintStyle.Render("Chats:"))
	for _, c := range convs {
		label := runewidth.Truncate(chat.Label(c), width-6, "…")
		if c.ID == activeID {
			lines = append(lines, activeChatStyle.Render("  ▸ "+label))
		} else {
			lines = append(lines, chatListStyle.Render("    "+label))
		}
	}
	return strings.Join(lines, "\n")
}

// renderStatusBar renders the bottom separator plus the model/chat bar.
func (m Model) renderStatusBar() string {
	modelName := m.cfg.Model
	if modelName == "" {
		modelName = "unknown"
	}
	label := "no chat"
	if active := m.store.Active(); active != nil {
		label = chat.Label(active)
	}
	status := statusModelStyle.Render(" "+modelName) +
		statusBarStyle.Render(fmt.Sprintf(" │ %s │ %d chats", label, m.store.Len()))
	return separatorStyle.Width(m.width).Render(strings.Repeat("─", max(m.width, 0))) + "\n" +
		statusBarBgStyle.Width(m.width).Render(status)
}

// ---------- markdown rendering ----------

func (m *Model) getMarkdownRenderer() *glamour.TermRenderer {
	width := m.width
	if width <= 0 {
		width = 80
	}
	wrapWidth := width - 4
	if m.mdRenderer != nil && m.mdRendererWidth == wrapWidth {
		return m.mdRenderer
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return nil
	}
	m.mdRenderer = r
	m.mdRendererWidth = wrapWidth
	return r
}

func (m Model) renderMarkdown(text string) string {
	r := m.getMarkdownRenderer()
	if r == nil {
		return text
	}
	rendered, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

// ---------- welcome box ----------

func (m Model) renderWelcome() string {
	version := m.cfg.Version
	if version == "" {
		version = "dev"
	}

	lines := []string{
		welcomeLabelStyle.Render("Provider: ") + welcomeValueStyle.Render(m.cfg.Provider),
		welcomeLabelStyle.Render("Model:    ") + welcomeValueStyle.Render(m.cfg.Model),
		welcomeLabelStyle.Render("Chats:    ") + welcomeValueStyle.Render(fmt.Sprintf("%d", m.store.Len())),
		"",
		hintStyle.Render("ctrl+n new  tab switch  ctrl+l list  ctrl+x delete  ctrl+y copy  ctrl+c quit"),
	}

	title := welcomeTitleStyle.Render("baatcheet " + version)
	box := welcomeBorderStyle.Render(strings.Join(lines, "\n"))
	return title + "\n" + box
}

// latestAssistant returns the newest assistant message in the conversation.
func latestAssistant(c *chat.Conversation) (string, bool) {
	if c == nil {
		return "", false
	}
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == provider.RoleAssistant {
			return c.Messages[i].Content, true
		}
	}
	return "", false
}
