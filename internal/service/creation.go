package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"wiki-character-chat/backend/internal/models"
	"wiki-character-chat/backend/internal/repository"
	"wiki-character-chat/backend/internal/wiki"
	apperrors "wiki-character-chat/backend/pkg/errors"
	"wiki-character-chat/backend/pkg/logger"
	"wiki-character-chat/backend/pkg/observability"
)

// CreationService orchestrates the character creation pipeline:
// validate reference, existence check, fetch article, synthesize profile,
// synthesize portrait, persist. Steps run strictly sequentially.
type CreationService struct {
	characters repository.CharacterRepository
	wiki       wiki.Client
	profiles   *ProfileSynthesizer
	portraits  *PortraitSynthesizer
	metrics    *observability.Metrics
	log        *logger.Logger
}

func NewCreationService(
	characters repository.CharacterRepository,
	wikiClient wiki.Client,
	profiles *ProfileSynthesizer,
	portraits *PortraitSynthesizer,
	metrics *observability.Metrics,
	log *logger.Logger,
) *CreationService {
	return &CreationService{
		characters: characters,
		wiki:       wikiClient,
		profiles:   profiles,
		portraits:  portraits,
		metrics:    metrics,
		log:        log.WithComponent("creation_pipeline"),
	}
}

// Create builds and persists a character for the given Wikipedia URL.
//
// The existence check and the final insert are not transactional: two
// concurrent requests for the same URL can both pass the check and both
// insert. The per-URL uniqueness invariant is best-effort, matching the
// behavior this service was modeled on.
func (s *CreationService) Create(ctx context.Context, wikipediaURL string) (*models.Character, error) {
	if !wiki.ValidateURL(wikipediaURL) {
		return nil, apperrors.NewValidationError("invalid Wikipedia URL format")
	}

	existingID, exists, err := s.characters.ExistsByURL(wikipediaURL)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to check for existing character").WithCause(err)
	}
	if exists {
		return nil, apperrors.NewConflictError("character already exists for this Wikipedia page", existingID)
	}

	doc, err := s.wiki.Fetch(ctx, wikipediaURL)
	if err != nil {
		return nil, mapWikiError(err)
	}

	profileStart := time.Now()
	profile, err := s.profiles.Synthesize(ctx, doc)
	if err != nil {
		// no partial character is ever written
		return nil, err
	}
	if s.metrics != nil {
		observability.ObserveSince(ctx, s.metrics.ProfileLatency, profileStart)
	}

	// best-effort: a degraded portrait never aborts creation
	portrait := s.portraits.Synthesize(ctx, profile)
	if s.metrics != nil && portrait.Kind == PortraitPlaceholder {
		s.metrics.PortraitFallbacks.Add(ctx, 1)
	}

	sheet, err := json.Marshal(models.CharacterSheet{
		Stats:            profile.Stats,
		SpecialAbilities: profile.SpecialAbilities,
		Catchphrase:      profile.Catchphrase,
		PortraitPrompt:   portrait.PromptUsed,
	})
	if err != nil {
		return nil, apperrors.NewStorageError("failed to serialize character sheet").WithCause(err)
	}

	character := &models.Character{
		Name:           profile.Name,
		Description:    profile.Description,
		Personality:    profile.Personality,
		Background:     profile.Background,
		PortraitURL:    portrait.PortraitRef,
		WikipediaURL:   wikipediaURL,
		WikipediaTitle: doc.Title,
		Sheet:          string(sheet),
		Level:          1,
	}

	if err := s.characters.Create(character); err != nil {
		return nil, apperrors.NewStorageError("failed to persist character").WithCause(err)
	}

	if s.metrics != nil {
		s.metrics.CharacterCreations.Add(ctx, 1)
	}
	s.log.Info("character created",
		"character_id", character.ID,
		"name", character.Name,
		"wikipedia_url", wikipediaURL,
		"portrait_generated", portrait.Kind == PortraitGenerated,
	)

	return character, nil
}

func mapWikiError(err error) error {
	switch {
	case errors.Is(err, wiki.ErrInvalidURL):
		return apperrors.NewValidationError("invalid Wikipedia URL format")
	case errors.Is(err, wiki.ErrNotFound):
		return apperrors.NewNotFoundError("Wikipedia page not found")
	case errors.Is(err, wiki.ErrDisambiguation):
		return apperrors.NewAmbiguousReferenceError("this is a disambiguation page, please choose a more specific article")
	default:
		return apperrors.FromError(err)
	}
}
