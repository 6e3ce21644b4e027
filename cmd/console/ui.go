package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/mystery-engine/internal/game"
	"github.com/jwebster45206/mystery-engine/pkg/chat"
	"github.com/jwebster45206/mystery-engine/pkg/state"
)

const PlaceHolderText = "Question the witness..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	gameState    *state.GameState
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Case selection state
	showCaseModal bool
	cases         []game.CaseSummary
	selectedCase  int
	loadingCases  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type chatResponseMsg struct {
	response *chat.Response
	err      error
}

type accuseResultMsg struct {
	result *game.AccuseResult
	err    error
}

type gameStateMsg struct {
	gameState *state.GameState
	err       error
}

type casesLoadedMsg struct {
	cases []game.CaseSummary
	err   error
}

type gameCreatedMsg struct {
	gameState *state.GameState
	err       error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // amber
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	clueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")). // gold
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

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

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("214")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
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

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:        cfg,
		client:        client,
		textarea:      ta,
		chatViewport:  chatVp,
		metaViewport:  metaVp,
		ready:         false,
		showCaseModal: true,
		loadingCases:  true,
		selectedCase:  0,
	}
}

func writeIntro(gs *state.GameState, chatWidth int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("MYSTERY ENGINE") + "\n\n")
	content.WriteString("Question witnesses, gather clues, and make your accusation.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	if gs != nil && len(gs.ChatHistory) > 0 {
		content.WriteString(formatSpeakerLine(gs.ChatHistory[0].Content, chatWidth) + "\n\n")
	}
	return content.String()
}

func writeMetadata(gs *state.GameState) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("CASE FILE") + "\n\n")

	content.WriteString("Game ID:\n")
	content.WriteString(gs.ID.String()[:8] + "...\n\n")

	content.WriteString(fmt.Sprintf("Turn: %d\n", gs.Turn))
	if gs.Solved {
		content.WriteString(clueStyle.Render("CASE CLOSED") + "\n")
	}
	content.WriteString("\n")

	if loc, ok := gs.Location(gs.CurrentLocationID); ok {
		content.WriteString("Location:\n")
		content.WriteString(loc.Name + "\n\n")
	}

	content.WriteString("People:\n")
	for _, npc := range gs.NPCs {
		marker := "  "
		if npc.Introduced {
			marker = "• "
		}
		content.WriteString(fmt.Sprintf("%s%s (trust %d)\n", marker, npc.Name, npc.TrustLevel))
	}
	content.WriteString("\n")

	discovered := gs.DiscoveredClues()
	content.WriteString(fmt.Sprintf("Clues: %d/%d\n", len(discovered), len(gs.Clues)))
	for _, c := range discovered {
		content.WriteString("• " + c.Name + "\n")
	}
	content.WriteString("\n")

	content.WriteString("Commands:\n")
	content.WriteString("• /talk <npc>: Address someone\n")
	content.WriteString("• /move <location>: Travel\n")
	content.WriteString("• /clues: Clue details\n")
	content.WriteString("• /accuse <npc> | <motive> | <method> | <reasoning>\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

// writeChatContent rebuilds the chat transcript for the current
// viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6

	if m.gameState == nil || len(m.gameState.ChatHistory) == 0 {
		m.chatViewport.SetContent(writeIntro(m.gameState, chatWidth))
		return
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("MYSTERY ENGINE") + "\n\n")
	content.WriteString("Question witnesses, gather clues, and make your accusation.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, msg := range m.gameState.ChatHistory {
		switch msg.Role {
		case chat.RolePlayer:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Content, chatWidth-6) + "\n\n")
		default:
			content.WriteString(formatSpeakerLine(speakerName(m.gameState, msg)+": "+msg.Content, chatWidth) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func speakerName(gs *state.GameState, msg chat.Message) string {
	if msg.NPCID != "" {
		if npc, ok := gs.NPC(msg.NPCID); ok {
			return npc.Name
		}
		return msg.NPCID
	}
	return "Narrator"
}

func formatSpeakerLine(line string, width int) string {
	wrapped := wordwrap.String(line, max(width-6, 10))
	if idx := strings.Index(wrapped, ":"); idx > 0 && idx <= 30 {
		return speakerStyle.Render(wrapped[:idx+1]) + narratorStyle.Render(wrapped[idx+1:])
	}
	return narratorStyle.Render(wrapped)
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showCaseModal {
		return m.loadCases()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showCaseModal {
		return m.updateCaseModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePanels()
		m.writeChatContent()
		if m.gameState != nil {
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
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

			m.gameState.ChatHistory = append(m.gameState.ChatHistory, chat.Message{
				Role:    chat.RolePlayer,
				Content: input,
			})
			m.writeChatContent()

			return m, tea.Batch(m.sendChatMessage(input, ""), progressTick())
		}

	case chatResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.writeChatContent()
			currentContent := m.chatViewport.View()
			m.chatViewport.SetContent(currentContent + errorStyle.Render("Error: "+msg.err.Error()) + "\n\n")
		}
		m.chatViewport.GotoBottom()
		return m, m.refreshGameState()

	case accuseResultMsg:
		m.loading = false
		m.writeChatContent()
		currentContent := m.chatViewport.View()
		if msg.err != nil {
			m.chatViewport.SetContent(currentContent + errorStyle.Render("Error: "+msg.err.Error()) + "\n\n")
		} else {
			m.chatViewport.SetContent(currentContent + renderAccuseResult(msg.result))
		}
		m.chatViewport.GotoBottom()
		return m, m.refreshGameState()

	case gameStateMsg:
		if msg.err == nil && msg.gameState != nil {
			m.gameState = msg.gameState
			m.writeChatContent()
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) resizePanels() {
	chatWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func renderAccuseResult(result *game.AccuseResult) string {
	var content strings.Builder
	if result.Success {
		content.WriteString(clueStyle.Render("THE CASE IS CLOSED") + "\n\n")
		content.WriteString(narratorStyle.Render(result.Resolution) + "\n\n")
	} else {
		content.WriteString(errorStyle.Render("THE ACCUSATION FAILS") + "\n\n")
		if result.Feedback != "" {
			content.WriteString(result.Feedback + "\n")
		}
		for _, c := range result.Contradictions {
			content.WriteString("• Contradiction: " + c + "\n")
		}
		for _, g := range result.Gaps {
			content.WriteString("• Gap: " + g + "\n")
		}
		content.WriteString("\n")
	}
	return content.String()
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	m.textarea.Reset()
	parts := strings.SplitN(strings.TrimSpace(input), " ", 2)
	cmd := strings.ToLower(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /talk <npc> <message> - Address a specific person
• /move <location-id> - Travel to an unlocked location
• /clues - Show discovered clue details
• /accuse <npc-id> | <motive> | <method> | <reasoning> - Make your accusation
• Ctrl+C - Quit

How to play:
• Question the people around you; trust opens doors
• Clues unlock when witnesses decide you've earned them
• When you're sure, accuse — but a weak case will fail
`
		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()
		return m, nil

	case "/clues":
		var cluesText strings.Builder
		cluesText.WriteString(titleStyle.Render("Discovered Clues:") + "\n")
		discovered := m.gameState.DiscoveredClues()
		if len(discovered) == 0 {
			cluesText.WriteString("Nothing yet. Keep asking questions.\n")
		}
		for _, c := range discovered {
			cluesText.WriteString(fmt.Sprintf("• %s (turn %d): %s\n", c.Name, c.DiscoveredAtTurn, c.Description))
		}
		cluesText.WriteString("\n")

		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + cluesText.String())
		m.chatViewport.GotoBottom()
		return m, nil

	case "/talk":
		fields := strings.SplitN(arg, " ", 2)
		if len(fields) < 2 {
			return m.showCommandError("usage: /talk <npc> <message>")
		}
		m.loading = true
		m.progressTick = 0
		m.gameState.ChatHistory = append(m.gameState.ChatHistory, chat.Message{
			Role:    chat.RolePlayer,
			Content: fields[1],
		})
		m.writeChatContent()
		return m, tea.Batch(m.sendChatMessage(fields[1], fields[0]), progressTick())

	case "/move":
		if arg == "" {
			return m.showCommandError("usage: /move <location-id>")
		}
		// Movement is client-side sugar over chat for now: tell the
		// narrator where you're going.
		m.loading = true
		m.progressTick = 0
		message := fmt.Sprintf("I head to the %s.", arg)
		m.gameState.ChatHistory = append(m.gameState.ChatHistory, chat.Message{
			Role:    chat.RolePlayer,
			Content: message,
		})
		m.writeChatContent()
		return m, tea.Batch(m.sendChatMessage(message, ""), progressTick())

	case "/accuse":
		fields := strings.Split(arg, "|")
		if len(fields) < 4 {
			return m.showCommandError("usage: /accuse <npc-id> | <motive> | <method> | <reasoning>")
		}
		m.loading = true
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.sendAccuse(game.AccuseRequest{
			GameID:       m.gameState.ID,
			SuspectNPCID: strings.TrimSpace(fields[0]),
			Motive:       strings.TrimSpace(fields[1]),
			Method:       strings.TrimSpace(fields[2]),
			Reasoning:    strings.TrimSpace(fields[3]),
		}), progressTick())
	}

	return m, nil
}

func (m ConsoleUI) showCommandError(text string) (tea.Model, tea.Cmd) {
	currentContent := m.chatViewport.View()
	m.chatViewport.SetContent(currentContent + errorStyle.Render(text) + "\n\n")
	m.chatViewport.GotoBottom()
	return m, nil
}

func (m ConsoleUI) sendChatMessage(message string, targetNPCID string) tea.Cmd {
	return func() tea.Msg {
		resp, err := sendChat(m.client, m.config.APIBaseURL, m.gameState.ID, message, targetNPCID)
		return chatResponseMsg{resp, err}
	}
}

func (m ConsoleUI) sendAccuse(req game.AccuseRequest) tea.Cmd {
	return func() tea.Msg {
		result, err := sendAccusation(m.client, m.config.APIBaseURL, req)
		return accuseResultMsg{result, err}
	}
}

func (m ConsoleUI) refreshGameState() tea.Cmd {
	return func() tea.Msg {
		gs, err := getGameState(m.client, m.config.APIBaseURL, m.gameState.ID)
		return gameStateMsg{gs, err}
	}
}

func (m ConsoleUI) loadCases() tea.Cmd {
	return func() tea.Msg {
		cases, err := listCases(m.client, m.config.APIBaseURL)
		return casesLoadedMsg{cases, err}
	}
}

func (m ConsoleUI) createGameFromCase(caseID string) tea.Cmd {
	return func() tea.Msg {
		gs, err := createGame(m.client, m.config.APIBaseURL, caseID)
		return gameCreatedMsg{gs, err}
	}
}

func (m ConsoleUI) updateCaseModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case casesLoadedMsg:
		m.loadingCases = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.cases = msg.cases
		}

	case gameCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.gameState = msg.gameState
			m.showCaseModal = false
			if m.width > 0 && m.height > 0 {
				m.resizePanels()
			}
			m.writeChatContent()
			m.metaViewport.SetContent(writeMetadata(m.gameState))
			m.textarea.Focus()
			m.ready = true
		}
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingCases {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		if m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedCase > 0 {
				m.selectedCase--
			}
		case tea.KeyDown:
			if m.selectedCase < len(m.cases)-1 {
				m.selectedCase++
			}
		case tea.KeyEnter:
			if len(m.cases) > 0 {
				m.loading = true
				return m, m.createGameFromCase(m.cases[m.selectedCase].ID)
			}
		}
	}

	return m, nil
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
				if !m.showCaseModal {
					m.textarea.Focus()
					return m, textarea.Blink
				}
				return m, nil
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
	content.WriteString(modalTitleStyle.Render("Leave the Case?"))
	content.WriteString("\n\n")
	content.WriteString("Walk away from the investigation?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderCaseModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingCases {
		content.WriteString(modalTitleStyle.Render("Loading Cases..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Fetching the case files..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load cases: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loading {
		content.WriteString(modalTitleStyle.Render("Opening the Case File..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Setting the scene..."))
	} else {
		content.WriteString(modalTitleStyle.Render("Select a Case"))
		content.WriteString("\n\n")

		for i, c := range m.cases {
			label := fmt.Sprintf("%s — %s", c.Title, c.Synopsis)
			if i == m.selectedCase {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(70).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showCaseModal {
		return m.renderCaseModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar animates a loading bar while a turn is in flight.
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
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
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
