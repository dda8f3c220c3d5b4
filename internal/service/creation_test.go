package service

import (
	"context"
	"errors"
	"testing"

	"wiki-character-chat/backend/internal/wiki"
	apperrors "wiki-character-chat/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adaURL = "https://en.wikipedia.org/wiki/Ada_Lovelace"

func newTestCreation(repo *fakeCharacterRepo, wikiClient wiki.Client, text *stubText, images *stubImages) *CreationService {
	log := testLogger()
	profiles := NewProfileSynthesizer(text, 2000, log)
	portraits := NewPortraitSynthesizer(images, newFakeBlobStore(), log)
	return NewCreationService(repo, wikiClient, profiles, portraits, nil, log)
}

func TestCreationRejectsMalformedReference(t *testing.T) {
	svc := newTestCreation(newFakeCharacterRepo(), &fakeWiki{}, &stubText{}, &stubImages{})

	for _, ref := range []string{
		"",
		"not a url",
		"https://example.com/wiki/Ada_Lovelace",
		"https://en.wikipedia.org/w/index.php?title=Ada",
	} {
		character, err := svc.Create(context.Background(), ref)
		assert.Nil(t, character, "reference %q", ref)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "reference %q", ref)
	}
}

func TestCreationShortCircuitsOnExistingReference(t *testing.T) {
	repo := newFakeCharacterRepo()
	svc := newTestCreation(repo, &fakeWiki{doc: testDocument()},
		&stubText{replies: []string{validProfileJSON}}, &stubImages{})

	first, err := svc.Create(context.Background(), adaURL)
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := svc.Create(context.Background(), adaURL)
	assert.Nil(t, second)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, map[string]uint{"character_id": first.ID}, appErr.Details)

	// still exactly one stored character
	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreationMapsSourceDocumentErrors(t *testing.T) {
	cases := map[string]struct {
		fetchErr error
		wantCode string
	}{
		"not found":      {wiki.ErrNotFound, apperrors.CodeNotFound},
		"disambiguation": {wiki.ErrDisambiguation, apperrors.CodeAmbiguousReference},
		"invalid url":    {wiki.ErrInvalidURL, apperrors.CodeValidation},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newFakeCharacterRepo()
			svc := newTestCreation(repo, &fakeWiki{err: tc.fetchErr}, &stubText{}, &stubImages{})

			character, err := svc.Create(context.Background(), adaURL)
			assert.Nil(t, character)
			assert.True(t, apperrors.HasCode(err, tc.wantCode))

			all, _ := repo.GetAll()
			assert.Empty(t, all, "no partial character may be written")
		})
	}
}

func TestCreationAbortsOnProfileFailureWithoutPartialWrite(t *testing.T) {
	repo := newFakeCharacterRepo()
	svc := newTestCreation(repo, &fakeWiki{doc: testDocument()},
		&stubText{replies: []string{"sorry, no JSON today"}}, &stubImages{})

	character, err := svc.Create(context.Background(), adaURL)
	assert.Nil(t, character)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeGeneration))

	all, _ := repo.GetAll()
	assert.Empty(t, all)
}

func TestCreationPersistsCharacterWithPlaceholderOnImageFailure(t *testing.T) {
	repo := newFakeCharacterRepo()
	svc := newTestCreation(repo, &fakeWiki{doc: testDocument()},
		&stubText{replies: []string{validProfileJSON}},
		&stubImages{err: errors.New("image backend down")})

	character, err := svc.Create(context.Background(), adaURL)
	require.NoError(t, err)

	assert.Contains(t, character.Name, "Ada")
	assert.Equal(t, 1, character.Level)
	assert.Equal(t, 0, character.Experience)
	assert.Equal(t, adaURL, character.WikipediaURL)
	assert.Equal(t, "Ada Lovelace", character.WikipediaTitle)
	assert.Equal(t, PlaceholderRef("Ada the Enchantress"), character.PortraitURL)

	sheet, err := character.DecodeSheet()
	require.NoError(t, err)
	assert.Equal(t, 20, sheet.Intelligence)
	assert.Equal(t, "Analytical engine mastery, prophetic computation, cipher weaving", sheet.SpecialAbilities)
	assert.NotEmpty(t, sheet.Catchphrase)
	assert.NotEmpty(t, sheet.PortraitPrompt)
}

func TestCreationPersistsGeneratedPortraitReference(t *testing.T) {
	repo := newFakeCharacterRepo()
	svc := newTestCreation(repo, &fakeWiki{doc: testDocument()},
		&stubText{replies: []string{validProfileJSON}},
		&stubImages{images: [][]byte{{0x89, 0x50}}})

	character, err := svc.Create(context.Background(), adaURL)
	require.NoError(t, err)
	assert.Contains(t, character.PortraitURL, "/api/v1/characters/images/")
}
