package models

import (
	"encoding/json"
	"time"
)

// Stats holds the six rolled ability scores for a character.
type Stats struct {
	Strength     int `json:"strength"`
	Intelligence int `json:"intelligence"`
	Charisma     int `json:"charisma"`
	Wisdom       int `json:"wisdom"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
}

// CharacterProfile is the structured persona synthesized from a Wikipedia
// article. It is immutable once validated and never stored verbatim; the
// creation pipeline folds it into a Character row.
type CharacterProfile struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	Personality      string `json:"personality"`
	Background       string `json:"background"`
	SpecialAbilities string `json:"specialAbilities"`
	Catchphrase      string `json:"catchphrase"`
	Stats            Stats  `json:"stats"`
}

// CharacterSheet is the opaque structured blob persisted alongside the
// relational character columns: stats plus the derived fields that do not
// get their own column.
type CharacterSheet struct {
	Stats
	SpecialAbilities string `json:"specialAbilities"`
	Catchphrase      string `json:"catchphrase"`
	PortraitPrompt   string `json:"portraitPrompt,omitempty"`
}

// Character is a persistent chattable persona derived from one Wikipedia
// article. Level and experience belong to gameplay systems and are only
// given their defaults here.
type Character struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"not null"`
	Description    string    `json:"description" gorm:"not null"`
	Personality    string    `json:"personality" gorm:"not null"`
	Background     string    `json:"background"`
	PortraitURL    string    `json:"portrait_url"`
	WikipediaURL   string    `json:"wikipedia_url" gorm:"index;not null"`
	WikipediaTitle string    `json:"wikipedia_title"`
	Sheet          string    `json:"sheet" gorm:"type:jsonb"`
	Level          int       `json:"level" gorm:"default:1"`
	Experience     int       `json:"experience" gorm:"default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DecodeSheet unpacks the serialized character sheet blob.
func (c *Character) DecodeSheet() (CharacterSheet, error) {
	var sheet CharacterSheet
	err := json.Unmarshal([]byte(c.Sheet), &sheet)
	return sheet, err
}

// CreateCharacterRequest is the creation payload: one Wikipedia URL.
type CreateCharacterRequest struct {
	WikipediaURL string `json:"wikipedia_url" binding:"required"`
}
