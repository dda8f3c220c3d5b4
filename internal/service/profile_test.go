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

const validProfileJSON = `{
  "name": "Ada the Enchantress",
  "description": "A poised Victorian mathematician with ink-stained fingers.",
  "personality": "Analytical, imaginative, quietly mischievous.",
  "background": "Daughter of a poet, she saw music in machines.",
  "specialAbilities": "Analytical engine mastery, prophetic computation, cipher weaving",
  "stats": {
    "strength": 8,
    "intelligence": 20,
    "charisma": 14,
    "wisdom": 16,
    "dexterity": 11,
    "constitution": 10
  },
  "catchphrase": "The engine weaves algebraic patterns as the loom weaves flowers."
}`

func testDocument() *wiki.Document {
	return &wiki.Document{
		Title:     "Ada Lovelace",
		Summary:   "Mathematician and writer",
		Extract:   "Augusta Ada King, Countess of Lovelace, was an English mathematician...",
		SourceURL: "https://en.wikipedia.org/wiki/Ada_Lovelace",
	}
}

func TestProfileSynthesisParsesPlainJSON(t *testing.T) {
	text := &stubText{replies: []string{validProfileJSON}}
	synth := NewProfileSynthesizer(text, 2000, testLogger())

	profile, err := synth.Synthesize(context.Background(), testDocument())
	require.NoError(t, err)

	assert.Equal(t, "Ada the Enchantress", profile.Name)
	assert.Equal(t, 20, profile.Stats.Intelligence)
	assert.Equal(t, 10, profile.Stats.Constitution)
	assert.NotEmpty(t, profile.Catchphrase)
}

func TestProfileSynthesisStripsCodeFences(t *testing.T) {
	cases := map[string]string{
		"json fence": "```json\n" + validProfileJSON + "\n```",
		"bare fence": "```\n" + validProfileJSON + "\n```",
		"whitespace": "\n\n  " + validProfileJSON + "  \n",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			text := &stubText{replies: []string{raw}}
			synth := NewProfileSynthesizer(text, 2000, testLogger())

			profile, err := synth.Synthesize(context.Background(), testDocument())
			require.NoError(t, err)
			assert.Equal(t, "Ada the Enchantress", profile.Name)
		})
	}
}

func TestProfileSynthesisRejectsMalformedOutput(t *testing.T) {
	cases := map[string]string{
		"not json":          "I cannot help with that request.",
		"missing name":      `{"description":"d","personality":"p","background":"b","specialAbilities":"a","catchphrase":"c","stats":{"strength":1,"intelligence":1,"charisma":1,"wisdom":1,"dexterity":1,"constitution":1}}`,
		"missing stats":     `{"name":"n","description":"d","personality":"p","background":"b","specialAbilities":"a","catchphrase":"c"}`,
		"partial stats":     `{"name":"n","description":"d","personality":"p","background":"b","specialAbilities":"a","catchphrase":"c","stats":{"strength":1}}`,
		"wrong typed stat":  `{"name":"n","description":"d","personality":"p","background":"b","specialAbilities":"a","catchphrase":"c","stats":{"strength":"mighty","intelligence":1,"charisma":1,"wisdom":1,"dexterity":1,"constitution":1}}`,
		"empty name":        `{"name":"  ","description":"d","personality":"p","background":"b","specialAbilities":"a","catchphrase":"c","stats":{"strength":1,"intelligence":1,"charisma":1,"wisdom":1,"dexterity":1,"constitution":1}}`,
		"wrong typed field": `{"name":42,"description":"d","personality":"p","background":"b","specialAbilities":"a","catchphrase":"c","stats":{"strength":1,"intelligence":1,"charisma":1,"wisdom":1,"dexterity":1,"constitution":1}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			text := &stubText{replies: []string{raw}}
			synth := NewProfileSynthesizer(text, 2000, testLogger())

			profile, err := synth.Synthesize(context.Background(), testDocument())
			assert.Nil(t, profile)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeGeneration))
		})
	}
}

func TestProfileSynthesisWrapsUpstreamFailure(t *testing.T) {
	text := &stubText{err: errors.New("upstream 503")}
	synth := NewProfileSynthesizer(text, 2000, testLogger())

	profile, err := synth.Synthesize(context.Background(), testDocument())
	assert.Nil(t, profile)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeGeneration))
}

func TestProfilePromptEmbedsTruncatedArticle(t *testing.T) {
	doc := testDocument()
	longExtract := make([]byte, 5000)
	for i := range longExtract {
		longExtract[i] = 'x'
	}
	doc.Extract = string(longExtract)

	text := &stubText{replies: []string{validProfileJSON}}
	synth := NewProfileSynthesizer(text, 2000, testLogger())

	_, err := synth.Synthesize(context.Background(), doc)
	require.NoError(t, err)

	prompt := text.lastPrompt()
	assert.Contains(t, prompt, doc.Title)
	assert.Contains(t, prompt, doc.Summary)
	// the full 5000-char extract must not appear; only the 2000-char budget
	assert.NotContains(t, prompt, doc.Extract)
	assert.Contains(t, prompt, doc.Extract[:2000])
}
