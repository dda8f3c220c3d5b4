package service

import (
	"context"
	"encoding/json"
	"strings"

	"wiki-character-chat/backend/internal/ai"
	"wiki-character-chat/backend/internal/models"
	"wiki-character-chat/backend/internal/wiki"
	apperrors "wiki-character-chat/backend/pkg/errors"
	"wiki-character-chat/backend/pkg/logger"
)

// ProfileSynthesizer turns a source document into a validated
// CharacterProfile with a single text-generation call. Malformed model
// output is a hard error; there is no repair or retry.
type ProfileSynthesizer struct {
	text              ai.TextSynthesizer
	articleCharBudget int
	log               *logger.Logger
}

func NewProfileSynthesizer(text ai.TextSynthesizer, articleCharBudget int, log *logger.Logger) *ProfileSynthesizer {
	return &ProfileSynthesizer{
		text:              text,
		articleCharBudget: articleCharBudget,
		log:               log.WithComponent("profile_synthesis"),
	}
}

// rawProfile mirrors the prompted JSON schema with pointer fields so that a
// missing field is distinguishable from a zero value.
type rawProfile struct {
	Name             *string   `json:"name"`
	Description      *string   `json:"description"`
	Personality      *string   `json:"personality"`
	Background       *string   `json:"background"`
	SpecialAbilities *string   `json:"specialAbilities"`
	Catchphrase      *string   `json:"catchphrase"`
	Stats            *rawStats `json:"stats"`
}

type rawStats struct {
	Strength     *int `json:"strength"`
	Intelligence *int `json:"intelligence"`
	Charisma     *int `json:"charisma"`
	Wisdom       *int `json:"wisdom"`
	Dexterity    *int `json:"dexterity"`
	Constitution *int `json:"constitution"`
}

// Synthesize builds the profile prompt, invokes the text model once and
// strictly decodes the response.
func (s *ProfileSynthesizer) Synthesize(ctx context.Context, doc *wiki.Document) (*models.CharacterProfile, error) {
	prompt := buildProfilePrompt(doc, s.articleCharBudget)

	raw, err := s.text.Generate(ctx, prompt)
	if err != nil {
		s.log.LogError(err, "profile generation call failed", "title", doc.Title)
		return nil, apperrors.NewGenerationError("failed to generate character profile").WithCause(err)
	}

	profile, err := parseProfile(raw)
	if err != nil {
		s.log.LogError(err, "profile response rejected", "title", doc.Title)
		return nil, apperrors.NewGenerationError("character profile response was malformed").WithCause(err)
	}

	return profile, nil
}

func parseProfile(raw string) (*models.CharacterProfile, error) {
	cleaned := stripCodeFence(raw)

	var decoded rawProfile
	dec := json.NewDecoder(strings.NewReader(cleaned))
	if err := dec.Decode(&decoded); err != nil {
		return nil, err
	}

	if err := decoded.validate(); err != nil {
		return nil, err
	}

	return &models.CharacterProfile{
		Name:             *decoded.Name,
		Description:      *decoded.Description,
		Personality:      *decoded.Personality,
		Background:       *decoded.Background,
		SpecialAbilities: *decoded.SpecialAbilities,
		Catchphrase:      *decoded.Catchphrase,
		Stats: models.Stats{
			Strength:     *decoded.Stats.Strength,
			Intelligence: *decoded.Stats.Intelligence,
			Charisma:     *decoded.Stats.Charisma,
			Wisdom:       *decoded.Stats.Wisdom,
			Dexterity:    *decoded.Stats.Dexterity,
			Constitution: *decoded.Stats.Constitution,
		},
	}, nil
}

type missingFieldError struct {
	field string
}

func (e missingFieldError) Error() string {
	return "profile field missing or empty: " + e.field
}

func (p *rawProfile) validate() error {
	stringFields := map[string]*string{
		"name":             p.Name,
		"description":      p.Description,
		"personality":      p.Personality,
		"background":       p.Background,
		"specialAbilities": p.SpecialAbilities,
		"catchphrase":      p.Catchphrase,
	}
	for field, value := range stringFields {
		if value == nil || strings.TrimSpace(*value) == "" {
			return missingFieldError{field: field}
		}
	}

	if p.Stats == nil {
		return missingFieldError{field: "stats"}
	}
	statFields := map[string]*int{
		"stats.strength":     p.Stats.Strength,
		"stats.intelligence": p.Stats.Intelligence,
		"stats.charisma":     p.Stats.Charisma,
		"stats.wisdom":       p.Stats.Wisdom,
		"stats.dexterity":    p.Stats.Dexterity,
		"stats.constitution": p.Stats.Constitution,
	}
	for field, value := range statFields {
		if value == nil {
			return missingFieldError{field: field}
		}
	}
	return nil
}
