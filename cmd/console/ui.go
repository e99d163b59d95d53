package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/nest-trail/pkg/chat"
	"github.com/jwebster45206/nest-trail/pkg/inventory"
	"github.com/jwebster45206/nest-trail/pkg/stats"
)

const (
	AgentName       = "Trail Guide"
	PlaceHolderText = "What do you do next?"

	maxEventLines = 8
	pollInterval  = 2 * time.Second
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	api          *apiClient
	chatViewport viewport.Model
	sideViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	history       []chat.ChatMessage
	lastNarration string
	statusNote    string

	tripStats   *stats.Snapshot
	tripGoods   *inventory.Snapshot
	eventLines  []string
	lastToastID int64

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type chatResponseMsg struct {
	response *chat.ChatResponse
	err      error
}

type pollMsg struct {
	stats  *stats.Snapshot
	goods  *inventory.Snapshot
	events []string
	lastID int64
	err    error
}

type resetDoneMsg struct {
	err error
}

type progressTickMsg struct{}

type pollTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	sidePanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // amber
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213")) // pink

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(api *apiClient) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	sideVp := viewport.New(20, 20)

	return ConsoleUI{
		api:          api,
		textarea:     ta,
		chatViewport: chatVp,
		sideViewport: sideVp,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.pollState(), pollTick())
}

// writeChatContent rebuilds the chat viewport from history for the
// current width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6

	var content strings.Builder
	content.WriteString(titleStyle.Render("THE NEST TRAIL") + "\n\n")
	content.WriteString("Visit every Digital NEST center, then make it to HQ in Stockton.\n")
	content.WriteString("Type what you want to do and press Enter.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 10))) + "\n\n")

	for _, msg := range m.history {
		switch msg.Role {
		case chat.ChatRoleAgent:
			prefix := narratorStyle.Render(AgentName + ": ")
			content.WriteString(prefix + wordwrap.String(msg.Content, max(chatWidth-len(AgentName)-2, 20)) + "\n\n")
		case chat.ChatRoleUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Content, max(chatWidth-6, 20)) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

// writeSidebar rebuilds the trip panel.
func (m *ConsoleUI) writeSidebar() {
	var content strings.Builder
	content.WriteString(titleStyle.Render("TRIP") + "\n\n")

	if m.tripStats != nil {
		content.WriteString("Location:\n")
		content.WriteString(m.tripStats.CurrentLocation + "\n\n")
		content.WriteString("Time on the road:\n")
		content.WriteString(formatMinutes(m.tripStats.ElapsedMinutes) + "\n\n")
	}

	if m.tripGoods != nil {
		content.WriteString(fmt.Sprintf("Cash: $%d\n\n", m.tripGoods.Cash))
		content.WriteString("Supplies:\n")
		if len(m.tripGoods.Items) == 0 {
			content.WriteString("(nothing)\n")
		}
		for _, item := range m.tripGoods.Items {
			content.WriteString(fmt.Sprintf("• %s x%d\n", item.Name, item.Count))
		}
		content.WriteString("\n")
	}

	if len(m.eventLines) > 0 {
		content.WriteString("Recent events:\n")
		for _, line := range m.eventLines {
			content.WriteString(eventStyle.Render("• "+line) + "\n")
		}
		content.WriteString("\n")
	}

	if m.statusNote != "" {
		content.WriteString(m.statusNote + "\n\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+Y: Copy reply\n")
	content.WriteString("• /reset: New game\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• Ctrl+C: Quit\n")

	m.sideViewport.SetContent(content.String())
}

func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		svCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.sideViewport, svCmd = m.sideViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, svCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.72) - 4
		sideWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.sideViewport.Width = sideWidth - 2
		m.sideViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.writeSidebar()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			if m.lastNarration != "" {
				if err := clipboard.WriteAll(m.lastNarration); err != nil {
					m.statusNote = errorStyle.Render("Copy failed: " + err.Error())
				} else {
					m.statusNote = promptStyle.Render("Copied last reply.")
				}
				m.writeSidebar()
			}
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0
			m.history = append(m.history, chat.ChatMessage{
				Role:    chat.ChatRoleUser,
				Content: input,
			})
			m.writeChatContent()

			return m, tea.Batch(m.sendChatMessage(input), progressTick())
		}

	case chatResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.writeChatContent()
			currentContent := m.chatViewport.View()
			errorMsg := errorStyle.Render("Error: "+msg.err.Error()) + "\n\n"
			m.chatViewport.SetContent(currentContent + errorMsg)
		} else {
			m.lastNarration = msg.response.Response
			m.history = append(m.history, chat.ChatMessage{
				Role:    chat.ChatRoleAgent,
				Content: msg.response.Response,
			})
			m.writeChatContent()
		}
		m.chatViewport.GotoBottom()
		return m, m.pollState()

	case resetDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.statusNote = errorStyle.Render("Reset failed: " + msg.err.Error())
		} else {
			m.history = nil
			m.lastNarration = ""
			m.eventLines = nil
			m.statusNote = promptStyle.Render("New game started.")
			m.writeChatContent()
		}
		m.writeSidebar()
		return m, m.pollState()

	case pollMsg:
		if msg.err == nil {
			m.tripStats = msg.stats
			m.tripGoods = msg.goods
			m.lastToastID = msg.lastID
			m.eventLines = append(m.eventLines, msg.events...)
			if len(m.eventLines) > maxEventLines {
				m.eventLines = m.eventLines[len(m.eventLines)-maxEventLines:]
			}
			m.writeSidebar()
		}

	case pollTickMsg:
		return m, tea.Batch(m.pollState(), pollTick())

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.sideViewport, svCmd = m.sideViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, svCmd)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	m.textarea.Reset()

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /reset - Start a new game
• /help - Show this help
• Ctrl+Y - Copy the last reply
• Ctrl+C - Quit

How to play:
• Type your actions and press Enter
• The trail guide narrates and keeps score
• Watch the trip panel for gas, cash, and events
`
		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()

	case "/reset":
		m.loading = true
		return m, m.resetGame()
	}

	return m, nil
}

func (m ConsoleUI) sendChatMessage(message string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.api.sendChat(message)
		return chatResponseMsg{resp, err}
	}
}

func (m ConsoleUI) resetGame() tea.Cmd {
	return func() tea.Msg {
		return resetDoneMsg{m.api.reset()}
	}
}

// pollState fetches stats, inventory, and any toasts newer than the
// last seen ID.
func (m ConsoleUI) pollState() tea.Cmd {
	sinceID := m.lastToastID
	return func() tea.Msg {
		statsSnap, err := m.api.getStats()
		if err != nil {
			return pollMsg{err: err}
		}
		goods, err := m.api.getInventory()
		if err != nil {
			return pollMsg{err: err}
		}
		toasts, err := m.api.getToasts(sinceID)
		if err != nil {
			return pollMsg{err: err}
		}

		lines := make([]string, 0, len(toasts.Toasts))
		for _, event := range toasts.Toasts {
			if s, ok := event.Payload.(string); ok {
				lines = append(lines, s)
			} else {
				lines = append(lines, fmt.Sprintf("%v", event.Payload))
			}
		}
		return pollMsg{
			stats:  statsSnap,
			goods:  goods,
			events: lines,
			lastID: toasts.LastID,
		}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the trail?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.72) - 4
	sideWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 10))),
			m.textarea.View(),
		),
	)

	sidePanel := sidePanelStyle.Width(sideWidth).Height(m.height - 2).Render(
		m.sideViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, sidePanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

func pollTick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}
