package cli

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/globotrack/internal/models"
	"github.com/raphaelgruber/globotrack/internal/service"
	"github.com/spf13/cobra"
)

var chatStats bool

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk to the GloboTrack travel assistant",
	Long: `Open an interactive chat with the travel assistant for itinerary planning,
packing tips, visa information and local recommendations. Prices are given
in INR.

With a message argument, the assistant answers once and the command exits.
The conversation is not saved.

Examples:
  globotrack chat
  globotrack chat "Do I need a visa for Japan with an Indian passport?"
  globotrack chat --stats`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatStats, "stats", false, "print AI call statistics when the chat ends")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	g, err := getGateway(ctx)
	if err != nil {
		return err
	}
	svc := service.NewChatService(g, logger)

	if len(args) > 0 {
		reply, ok := svc.Send(ctx, strings.Join(args, " "))
		if ok {
			fmt.Fprintln(out, reply.Content)
		}
	} else if err := runChatUI(ctx, svc); err != nil {
		return err
	}

	if chatStats {
		fmt.Fprintln(out)
		printStats(out, collector.Snapshot())
	}
	return nil
}

// chatReplyMsg carries the assistant turn once the gateway answers.
type chatReplyMsg struct {
	reply models.ChatMessage
}

// chatModel is the bubbletea model for the interactive chat.
type chatModel struct {
	ctx      context.Context
	svc      *service.ChatService
	input    textinput.Model
	theme    Theme
	waiting  bool
	pending  string
	quitting bool
}

func newChatModel(ctx context.Context, svc *service.ChatService) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask about visas, packing, local tips..."
	input.Prompt = "> "
	input.CharLimit = 1000
	input.Focus()

	return chatModel{
		ctx:   ctx,
		svc:   svc,
		input: input,
		theme: defaultTheme,
	}
}

// Init returns the initial command.
func (m chatModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and returns the updated model.
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.submit()
		}

	case chatReplyMsg:
		m.waiting = false
		m.pending = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the typed message. Nothing is sent while a reply is
// outstanding or when the input is blank.
func (m chatModel) submit() (chatModel, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.waiting {
		return m, nil
	}
	m.input.Reset()
	m.waiting = true
	m.pending = text
	return m, m.send(text)
}

// send runs the chat turn in a command so Update never blocks.
func (m chatModel) send(text string) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		reply, _ := svc.Send(ctx, text)
		return chatReplyMsg{reply: reply}
	}
}

// View renders the chat.
func (m chatModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m chatModel) renderContent() string {
	var b strings.Builder
	b.WriteString(m.theme.titleStyle().Render("GloboTrack AI") + "\n\n")

	transcript := m.svc.Transcript()
	for _, turn := range transcript {
		b.WriteString(m.renderTurn(turn))
	}
	if m.pending != "" && !endsWithUserTurn(transcript, m.pending) {
		b.WriteString(m.renderTurn(models.ChatMessage{Role: models.RoleUser, Content: m.pending}))
	}

	if m.quitting {
		return b.String()
	}
	if m.waiting {
		b.WriteString(m.theme.hintStyle().Render("GloboTrack is typing...") + "\n\n")
	}
	b.WriteString(m.input.View() + "\n")
	b.WriteString(m.theme.hintStyle().Render("Enter to send • Esc to quit") + "\n")
	return b.String()
}

func (m chatModel) renderTurn(turn models.ChatMessage) string {
	user := turn.Role == models.RoleUser
	speaker := "GloboTrack"
	if user {
		speaker = "You"
	}
	return m.theme.speakerStyle(user).Render(speaker) + "\n" + turn.Content + "\n\n"
}

func endsWithUserTurn(transcript []models.ChatMessage, text string) bool {
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == models.RoleUser {
			return transcript[i].Content == text
		}
	}
	return false
}

// runChatUI runs the interactive chat until the user quits.
func runChatUI(ctx context.Context, svc *service.ChatService) error {
	p := tea.NewProgram(newChatModel(ctx, svc), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
