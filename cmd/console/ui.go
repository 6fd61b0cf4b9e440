package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/saltmarsh-games/worldengine/internal/handlers"
	"github.com/saltmarsh-games/worldengine/pkg/engine"
)

const PlaceholderText = "What do you do?"

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	session      *handlers.SessionResponse
	snapshot     *engine.Snapshot
	won          bool
	turns        int
	transcript   []transcriptEntry
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool
}

type transcriptEntry struct {
	speaker string // "you" or "narrator" or "error"
	text    string
}

type turnResultMsg struct {
	turn *handlers.TurnResponse
	err  error
}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(3)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	wonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, created *handlers.SessionResponse) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceholderText
	ta.Focus()
	ta.Prompt = promptStyle.Render("> ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true
	metaVp := viewport.New(20, 20)

	ui := ConsoleUI{
		config:       cfg,
		client:       client,
		session:      created,
		snapshot:     created.Snapshot,
		turns:        created.Session.Turns,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
	}
	if created.Narration != "" {
		ui.transcript = append(ui.transcript, transcriptEntry{speaker: "narrator", text: created.Narration})
	}
	return ui
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.72) - 4
		metaWidth := m.width - chatWidth - 8

		m.chatViewport.Width = chatWidth
		m.chatViewport.Height = m.height - 6
		m.metaViewport.Width = metaWidth
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 2)

		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.loading || m.won {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			m.transcript = append(m.transcript, transcriptEntry{speaker: "you", text: input})

			intent, err := ParseIntent(input)
			if err != nil {
				m.transcript = append(m.transcript, transcriptEntry{speaker: "error", text: err.Error()})
				m.writeChatContent()
				return m, nil
			}

			m.loading = true
			m.writeChatContent()
			return m, m.sendTurn(intent, input)
		}

	case turnResultMsg:
		m.loading = false
		if msg.err != nil {
			m.transcript = append(m.transcript, transcriptEntry{speaker: "error", text: msg.err.Error()})
		} else {
			m.transcript = append(m.transcript, transcriptEntry{speaker: "narrator", text: msg.turn.Narration})
			m.snapshot = msg.turn.Snapshot
			m.turns = msg.turn.Turns
			m.won = msg.turn.Won
			m.metaViewport.SetContent(m.writeMetadata())
		}
		m.writeChatContent()
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Loading..."
	}

	chat := chatPanelStyle.Render(m.chatViewport.View() + "\n" + m.textarea.View())
	meta := metaPanelStyle.Render(m.metaViewport.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, chat, meta)
}

func (m *ConsoleUI) sendTurn(intent engine.Intent, raw string) tea.Cmd {
	id := m.session.Session.ID
	return func() tea.Msg {
		turn, err := postTurn(m.client, m.config.APIBaseURL, id, intent, raw)
		return turnResultMsg{turn: turn, err: err}
	}
}

func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 4
	if chatWidth < 20 {
		chatWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("WORLD ENGINE") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	for _, entry := range m.transcript {
		switch entry.speaker {
		case "you":
			content.WriteString(userStyle.Render("> ") + wordwrap.String(entry.text, chatWidth-2) + "\n\n")
		case "error":
			content.WriteString(errorStyle.Render(wordwrap.String(entry.text, chatWidth)) + "\n\n")
		default:
			content.WriteString(narratorStyle.Render(wordwrap.String(entry.text, chatWidth)) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(loadingStyle.Render("The narrator considers...") + "\n")
	}
	if m.won {
		content.WriteString(wonStyle.Render("*.*.*.*.*. THE END .*.*.*.*.*") + "\n")
		content.WriteString(promptStyle.Render("Press Ctrl+C to exit.") + "\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("ID:\n")
	content.WriteString(m.session.Session.ID.String()[:8] + "...\n\n")

	content.WriteString(fmt.Sprintf("Turns: %d\n\n", m.turns))

	if m.snapshot != nil {
		content.WriteString("Location:\n")
		content.WriteString(m.snapshot.Name + "\n\n")

		if len(m.snapshot.Exits) > 0 {
			content.WriteString("Exits:\n")
			for _, ex := range m.snapshot.Exits {
				line := "• " + ex.Direction
				if ex.Destination != "" {
					line += " → " + ex.Destination
				}
				if ex.Locked {
					line += " (locked)"
				}
				content.WriteString(line + "\n")
			}
			content.WriteString("\n")
		}

		content.WriteString("Carrying:\n")
		if len(m.snapshot.Inventory) == 0 {
			content.WriteString("Nothing\n")
		} else {
			for _, it := range m.snapshot.Inventory {
				content.WriteString("• " + it.Name + "\n")
			}
		}
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• go <dir>, take, drop\n")
	content.WriteString("• open, close, use\n")
	content.WriteString("• examine, talk to\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}
