package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wiki-character-chat/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func testProfile() *models.CharacterProfile {
	return &models.CharacterProfile{
		Name:             "Ada the Enchantress",
		Description:      "A poised Victorian mathematician.",
		Personality:      "Analytical and imaginative.",
		Background:       "Daughter of a poet.",
		SpecialAbilities: "Analytical engine mastery",
		Catchphrase:      "The engine weaves algebraic patterns.",
	}
}

func TestPortraitSynthesisStoresGeneratedImage(t *testing.T) {
	store := newFakeBlobStore()
	synth := NewPortraitSynthesizer(&stubImages{images: [][]byte{{0x89, 0x50, 0x4e, 0x47}}}, store, testLogger())

	result := synth.Synthesize(context.Background(), testProfile())

	assert.Equal(t, PortraitGenerated, result.Kind)
	assert.True(t, strings.HasPrefix(result.PortraitRef, "/api/v1/characters/images/"))
	assert.Contains(t, result.PromptUsed, "Ada the Enchantress")
	assert.Len(t, store.saved, 1)
}

func TestPortraitSynthesisNeverFailsTheCaller(t *testing.T) {
	cases := map[string]*stubImages{
		"synthesizer error": {err: errors.New("quota exhausted")},
		"zero images":       {images: nil},
	}

	for name, images := range cases {
		t.Run(name, func(t *testing.T) {
			store := newFakeBlobStore()
			synth := NewPortraitSynthesizer(images, store, testLogger())

			result := synth.Synthesize(context.Background(), testProfile())

			assert.Equal(t, PortraitPlaceholder, result.Kind)
			assert.Equal(t, PlaceholderRef("Ada the Enchantress"), result.PortraitRef)
			assert.NotEmpty(t, result.PromptUsed)
			assert.Empty(t, store.saved)
		})
	}
}

func TestPortraitSynthesisFallsBackWhenStorageFails(t *testing.T) {
	store := newFakeBlobStore()
	store.saveErr = errors.New("disk full")
	synth := NewPortraitSynthesizer(&stubImages{images: [][]byte{{1, 2, 3}}}, store, testLogger())

	result := synth.Synthesize(context.Background(), testProfile())

	assert.Equal(t, PortraitPlaceholder, result.Kind)
	assert.Equal(t, PlaceholderRef("Ada the Enchantress"), result.PortraitRef)
}

func TestPlaceholderRefIsPureFunctionOfName(t *testing.T) {
	assert.Equal(t, PlaceholderRef("Ada Lovelace"), PlaceholderRef("Ada Lovelace"))
	assert.NotEqual(t, PlaceholderRef("Ada Lovelace"), PlaceholderRef("Alan Turing"))
	// names with spaces must produce a valid URI path segment
	assert.NotContains(t, PlaceholderRef("Ada Lovelace"), " ")
}
