package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/raphaelgruber/globotrack/internal/models"
)

// Assistant turns the chat produces on its own.
const (
	Greeting       = "Hello! I'm your GloboTrack travel assistant. Ask me anything about your trip!"
	MsgChatFailed  = "Something went wrong. Please try again later."
	MsgEmptyAnswer = "I'm sorry, I couldn't process that."
)

// Chatter answers one chat turn given the earlier ones.
type Chatter interface {
	Chat(ctx context.Context, message string, history []models.ChatMessage) (string, error)
}

// ChatService keeps an append-only transcript that lives only in memory.
type ChatService struct {
	mu         sync.Mutex
	chatter    Chatter
	transcript []models.ChatMessage
	pending    int
	logger     *slog.Logger
}

// NewChatService starts a transcript with the assistant greeting.
func NewChatService(chatter Chatter, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		chatter:    chatter,
		transcript: []models.ChatMessage{{Role: models.RoleAssistant, Content: Greeting}},
		logger:     logger,
	}
}

// Send appends the user turn, asks the assistant and appends its reply.
// Failures become a fallback assistant turn rather than an error. Blank
// messages are ignored and return ok=false.
func (s *ChatService) Send(ctx context.Context, message string) (reply models.ChatMessage, ok bool) {
	message = strings.TrimSpace(message)
	if message == "" {
		return models.ChatMessage{}, false
	}

	s.mu.Lock()
	history := append([]models.ChatMessage(nil), s.transcript...)
	s.transcript = append(s.transcript, models.ChatMessage{Role: models.RoleUser, Content: message})
	s.pending++
	s.mu.Unlock()

	text, err := s.chatter.Chat(ctx, message, history)
	switch {
	case err != nil:
		s.logger.Warn("chat failed", "error", err)
		text = MsgChatFailed
	case strings.TrimSpace(text) == "":
		text = MsgEmptyAnswer
	}

	reply = models.ChatMessage{Role: models.RoleAssistant, Content: text}
	s.mu.Lock()
	s.transcript = append(s.transcript, reply)
	s.pending--
	s.mu.Unlock()
	return reply, true
}

// Transcript returns a copy of every turn so far.
func (s *ChatService) Transcript() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.transcript...)
}

// Waiting reports whether a reply is outstanding.
func (s *ChatService) Waiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}
