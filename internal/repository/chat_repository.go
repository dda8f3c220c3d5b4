package repository

import (
	"errors"

	"wiki-character-chat/backend/internal/models"

	"gorm.io/gorm"
)

// ChatRepository owns session and message durability. Messages are
// append-only; reads are single statements with no application-level
// locking.
type ChatRepository interface {
	CreateSession(session *models.ChatSession) error
	// GetSessionWithCharacter loads a session together with its character's
	// display fields. Both are nil when the session does not exist.
	GetSessionWithCharacter(sessionID uint) (*models.ChatSession, *models.Character, error)
	AppendMessage(message *models.ChatMessage) error
	// RecentMessages returns at most limit messages, newest first.
	RecentMessages(sessionID uint, limit int) ([]models.ChatMessage, error)
	// MessagesAsc returns the full log in chronological order.
	MessagesAsc(sessionID uint) ([]models.ChatMessage, error)
	SessionSummaries(userID string) ([]models.SessionSummary, error)
}

type GormChatRepository struct {
	db *gorm.DB
}

func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

func (r *GormChatRepository) CreateSession(session *models.ChatSession) error {
	return r.db.Create(session).Error
}

func (r *GormChatRepository) GetSessionWithCharacter(sessionID uint) (*models.ChatSession, *models.Character, error) {
	var session models.ChatSession
	err := r.db.First(&session, sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var character models.Character
	if err := r.db.First(&character, session.CharacterID).Error; err != nil {
		return nil, nil, err
	}
	return &session, &character, nil
}

func (r *GormChatRepository) AppendMessage(message *models.ChatMessage) error {
	return r.db.Create(message).Error
}

func (r *GormChatRepository) RecentMessages(sessionID uint, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *GormChatRepository) MessagesAsc(sessionID uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return messages, err
}

func (r *GormChatRepository) SessionSummaries(userID string) ([]models.SessionSummary, error) {
	var summaries []models.SessionSummary
	err := r.db.Raw(`
		SELECT
			cs.id AS session_id,
			cs.character_id,
			cs.user_id,
			cs.created_at,
			c.name AS character_name,
			c.description AS character_description,
			c.portrait_url AS character_portrait_url,
			COALESCE((
				SELECT body FROM chat_messages
				WHERE session_id = cs.id
				ORDER BY created_at DESC, id DESC
				LIMIT 1
			), '') AS last_message
		FROM chat_sessions cs
		JOIN characters c ON c.id = cs.character_id
		WHERE cs.user_id = ?
		ORDER BY cs.created_at DESC`, userID).
		Scan(&summaries).Error
	if summaries == nil {
		summaries = []models.SessionSummary{}
	}
	return summaries, err
}
