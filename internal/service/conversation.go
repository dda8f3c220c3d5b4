package service

import (
	"context"
	"strings"
	"time"

	"wiki-character-chat/backend/internal/ai"
	"wiki-character-chat/backend/internal/models"
	"wiki-character-chat/backend/internal/repository"
	apperrors "wiki-character-chat/backend/pkg/errors"
	"wiki-character-chat/backend/pkg/logger"
	"wiki-character-chat/backend/pkg/observability"
)

const defaultUserID = "anonymous"

// TurnResult is the outcome of one conversation turn.
type TurnResult struct {
	Reply       string    `json:"reply"`
	CompletedAt time.Time `json:"completed_at"`
}

// SessionStart bundles everything a client needs after opening a session.
type SessionStart struct {
	Session   *models.ChatSession `json:"session"`
	Character *models.Character   `json:"character"`
	Greeting  string              `json:"greeting"`
}

// ConversationService owns per-session message history and turn execution.
//
// Turns for the same session are not serialized: two concurrent turns may
// interleave their history reads and appends, so a reply can be generated
// without having seen the other turn's user message. Accepted weakness.
type ConversationService struct {
	chats         repository.ChatRepository
	characters    repository.CharacterRepository
	text          ai.TextSynthesizer
	historyWindow int
	metrics       *observability.Metrics
	log           *logger.Logger
}

func NewConversationService(
	chats repository.ChatRepository,
	characters repository.CharacterRepository,
	text ai.TextSynthesizer,
	historyWindow int,
	metrics *observability.Metrics,
	log *logger.Logger,
) *ConversationService {
	if historyWindow <= 0 {
		historyWindow = 10
	}
	return &ConversationService{
		chats:         chats,
		characters:    characters,
		text:          text,
		historyWindow: historyWindow,
		metrics:       metrics,
		log:           log.WithComponent("conversation_engine"),
	}
}

// StartSession creates a session and executes one greeting turn with the
// fixed opener and an empty history. Only the character's reply is
// persisted; the opener never becomes a user message row.
func (s *ConversationService) StartSession(ctx context.Context, characterID uint, userID string) (*SessionStart, error) {
	if userID == "" {
		userID = defaultUserID
	}

	character, err := s.characters.GetByID(characterID)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load character").WithCause(err)
	}
	if character == nil {
		return nil, apperrors.NewNotFoundError("character not found")
	}

	session := &models.ChatSession{
		CharacterID: characterID,
		UserID:      userID,
	}
	if err := s.chats.CreateSession(session); err != nil {
		return nil, apperrors.NewStorageError("failed to create chat session").WithCause(err)
	}

	prompt := buildChatPrompt(character, nil, conversationOpener)
	greeting, err := s.text.Generate(ctx, prompt)
	if err != nil {
		s.log.LogError(err, "greeting generation failed", "session_id", session.ID)
		return nil, apperrors.NewGenerationError("failed to generate character greeting").WithCause(err)
	}
	greeting = strings.TrimSpace(greeting)

	reply := &models.ChatMessage{
		SessionID:  session.ID,
		SenderType: models.SenderCharacter,
		Body:       greeting,
	}
	if err := s.chats.AppendMessage(reply); err != nil {
		return nil, apperrors.NewStorageError("failed to persist greeting").WithCause(err)
	}

	s.log.Info("chat session started", "session_id", session.ID, "character_id", characterID, "user_id", userID)
	return &SessionStart{
		Session:   session,
		Character: character,
		Greeting:  greeting,
	}, nil
}

// SendMessage executes one turn. The user message is appended before the
// model call; the character reply is appended only after the call returns.
// A failed call therefore leaves the user message durably recorded with no
// paired reply. That asymmetry is intentional.
func (s *ConversationService) SendMessage(ctx context.Context, sessionID uint, message string) (*TurnResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("message cannot be empty")
	}

	session, character, err := s.chats.GetSessionWithCharacter(sessionID)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load chat session").WithCause(err)
	}
	if session == nil {
		return nil, apperrors.NewNotFoundError("chat session not found")
	}

	start := time.Now()

	// recency-bounded context: newest-first fetch, reversed to
	// chronological order for the prompt
	recent, err := s.chats.RecentMessages(sessionID, s.historyWindow)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load chat history").WithCause(err)
	}
	history := reverseMessages(recent)

	userMsg := &models.ChatMessage{
		SessionID:  sessionID,
		SenderType: models.SenderUser,
		Body:       message,
	}
	if err := s.chats.AppendMessage(userMsg); err != nil {
		return nil, apperrors.NewStorageError("failed to persist user message").WithCause(err)
	}

	prompt := buildChatPrompt(character, history, message)
	rawReply, err := s.text.Generate(ctx, prompt)
	if err != nil {
		s.log.LogError(err, "reply generation failed", "session_id", sessionID)
		return nil, apperrors.NewGenerationError("failed to generate character response").WithCause(err)
	}
	// an empty reply is still a reply; no retry
	reply := strings.TrimSpace(rawReply)

	characterMsg := &models.ChatMessage{
		SessionID:  sessionID,
		SenderType: models.SenderCharacter,
		Body:       reply,
	}
	if err := s.chats.AppendMessage(characterMsg); err != nil {
		return nil, apperrors.NewStorageError("failed to persist character response").WithCause(err)
	}

	if s.metrics != nil {
		s.metrics.ChatTurns.Add(ctx, 1)
		observability.ObserveSince(ctx, s.metrics.TurnLatency, start)
	}

	completedAt := characterMsg.CreatedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	return &TurnResult{Reply: reply, CompletedAt: completedAt}, nil
}

// ListMessages returns a session's full log in chronological order.
func (s *ConversationService) ListMessages(sessionID uint) ([]models.ChatMessage, error) {
	messages, err := s.chats.MessagesAsc(sessionID)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load chat messages").WithCause(err)
	}
	return messages, nil
}

// ListSessions returns the session-list projection for one user, newest
// session first.
func (s *ConversationService) ListSessions(userID string) ([]models.SessionSummary, error) {
	if userID == "" {
		userID = defaultUserID
	}
	summaries, err := s.chats.SessionSummaries(userID)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load chat sessions").WithCause(err)
	}
	return summaries, nil
}

func reverseMessages(messages []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, len(messages))
	for i, msg := range messages {
		out[len(messages)-1-i] = msg
	}
	return out
}
