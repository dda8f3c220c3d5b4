package models

import "time"

// Message sender types
const (
	SenderUser      = "user"
	SenderCharacter = "character"
)

// ChatSession ties an opaque user id to a character. Sessions are created on
// demand and never mutated; there is no explicit close state.
type ChatSession struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CharacterID uint      `json:"character_id" gorm:"index;not null"`
	UserID      string    `json:"user_id" gorm:"index;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChatMessage is one side of an exchange within a session. Append-only;
// ordering is created_at ascending with id as the tiebreaker.
type ChatMessage struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SessionID  uint      `json:"session_id" gorm:"index;not null"`
	SenderType string    `json:"sender_type" gorm:"not null"`
	Body       string    `json:"body" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

// SessionSummary is the session-list projection: session metadata joined
// with the character's display fields and the most recent message.
type SessionSummary struct {
	SessionID            uint      `json:"session_id"`
	CharacterID          uint      `json:"character_id"`
	UserID               string    `json:"user_id"`
	CharacterName        string    `json:"character_name"`
	CharacterDescription string    `json:"character_description"`
	CharacterPortraitURL string    `json:"character_portrait_url"`
	LastMessage          string    `json:"last_message"`
	CreatedAt            time.Time `json:"created_at"`
}

// StartSessionRequest opens a chat session with a character.
type StartSessionRequest struct {
	CharacterID uint   `json:"character_id" binding:"required"`
	UserID      string `json:"user_id"`
}

// SendMessageRequest carries one user utterance.
type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}
