package service

import (
	"context"
	"net/url"

	"wiki-character-chat/backend/internal/ai"
	"wiki-character-chat/backend/internal/blob"
	"wiki-character-chat/backend/internal/models"
	"wiki-character-chat/backend/pkg/logger"
)

// PortraitKind distinguishes a generated portrait from the deterministic
// placeholder fallback.
type PortraitKind int

const (
	PortraitGenerated PortraitKind = iota
	PortraitPlaceholder
)

// PortraitResult is returned by both the success and degraded paths so
// downstream code never branches on outcome.
type PortraitResult struct {
	Kind        PortraitKind
	PortraitRef string
	PromptUsed  string
}

// PortraitSynthesizer renders a character portrait. Image generation is
// best-effort: any failure, including a zero-image response, degrades to a
// placeholder reference derived purely from the character name and never
// fails the creation pipeline.
type PortraitSynthesizer struct {
	images ai.ImageSynthesizer
	store  blob.Store
	log    *logger.Logger
}

func NewPortraitSynthesizer(images ai.ImageSynthesizer, store blob.Store, log *logger.Logger) *PortraitSynthesizer {
	return &PortraitSynthesizer{
		images: images,
		store:  store,
		log:    log.WithComponent("portrait_synthesis"),
	}
}

// PlaceholderRef is the portrait reference used when no image could be
// generated. It is a pure function of the character name: no external call,
// same name, same reference.
func PlaceholderRef(characterName string) string {
	return "/api/v1/characters/placeholder-avatar/" + url.PathEscape(characterName)
}

// Synthesize requests exactly one image, persists it to the blob store and
// returns its reference, or falls back to the placeholder.
func (s *PortraitSynthesizer) Synthesize(ctx context.Context, profile *models.CharacterProfile) PortraitResult {
	prompt := buildPortraitPrompt(profile)

	images, err := s.images.Generate(ctx, prompt, 1)
	if err != nil {
		s.log.LogError(err, "portrait generation failed, using placeholder", "name", profile.Name)
		return PortraitResult{
			Kind:        PortraitPlaceholder,
			PortraitRef: PlaceholderRef(profile.Name),
			PromptUsed:  prompt,
		}
	}
	if len(images) == 0 {
		s.log.Warn("portrait generation returned no images, using placeholder", "name", profile.Name)
		return PortraitResult{
			Kind:        PortraitPlaceholder,
			PortraitRef: PlaceholderRef(profile.Name),
			PromptUsed:  prompt,
		}
	}

	fileName, err := s.store.SavePortrait(profile.Name, images[0])
	if err != nil {
		s.log.LogError(err, "portrait persistence failed, using placeholder", "name", profile.Name)
		return PortraitResult{
			Kind:        PortraitPlaceholder,
			PortraitRef: PlaceholderRef(profile.Name),
			PromptUsed:  prompt,
		}
	}

	s.log.Info("portrait stored", "name", profile.Name, "file", fileName)
	return PortraitResult{
		Kind:        PortraitGenerated,
		PortraitRef: "/api/v1/characters/images/" + fileName,
		PromptUsed:  prompt,
	}
}
