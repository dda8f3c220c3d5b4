package service

import (
	"fmt"
	"strings"

	"wiki-character-chat/backend/internal/models"
	"wiki-character-chat/backend/internal/wiki"
)

// Fixed system utterance used to open every session. Only the character's
// reply is persisted for it.
const conversationOpener = "Hello! This is the start of our conversation."

func buildProfilePrompt(doc *wiki.Document, articleCharBudget int) string {
	return fmt.Sprintf(`You are a creative RPG character designer. Based on this Wikipedia article, create a detailed RPG character profile.

WIKIPEDIA DATA:
Title: %s
Extract: %s
Content: %s

Create a character profile in JSON format. Return ONLY the JSON object, no other text:

{
  "name": "Character name based on the Wikipedia subject",
  "description": "2-3 sentence physical and general description",
  "personality": "Key personality traits and quirks (2-3 sentences)",
  "background": "Brief backstory connecting to the Wikipedia subject (2-3 sentences)",
  "specialAbilities": "3-5 unique abilities or skills related to the subject",
  "stats": {
    "strength": 15,
    "intelligence": 18,
    "charisma": 12,
    "wisdom": 16,
    "dexterity": 10,
    "constitution": 14
  },
  "catchphrase": "A memorable quote or saying for this character"
}

Return ONLY valid JSON with no markdown formatting, no explanations, just the JSON object.`,
		doc.Title, doc.Summary, truncate(doc.Extract, articleCharBudget))
}

func buildPortraitPrompt(profile *models.CharacterProfile) string {
	return fmt.Sprintf(`Generate a high-quality fantasy character portrait for "%s".

Character Details:
- Description: %s
- Personality: %s
- Background: %s

Style: Digital art portrait, fantasy RPG character, detailed, professional quality, centered composition, neutral background. Focus on the character's face and upper body. Make it suitable for a character profile picture.`,
		profile.Name, profile.Description, profile.Personality, profile.Background)
}

func buildChatPrompt(character *models.Character, history []models.ChatMessage, userMessage string) string {
	abilities := "None specified"
	catchphrase := "None"
	if sheet, err := character.DecodeSheet(); err == nil {
		if strings.TrimSpace(sheet.SpecialAbilities) != "" {
			abilities = sheet.SpecialAbilities
		}
		if strings.TrimSpace(sheet.Catchphrase) != "" {
			catchphrase = sheet.Catchphrase
		}
	}

	var transcript strings.Builder
	for _, msg := range history {
		speaker := character.Name
		if msg.SenderType == models.SenderUser {
			speaker = "User"
		}
		fmt.Fprintf(&transcript, "%s: %s\n", speaker, msg.Body)
	}

	return fmt.Sprintf(`You are roleplaying as this character. Stay in character and respond naturally to the user's message.

CHARACTER PROFILE:
Name: %s
Description: %s
Personality: %s
Background: %s
Special Abilities: %s
Catchphrase: %s

CHAT HISTORY:
%s
USER'S MESSAGE: %s

Respond as %s. Keep responses engaging, in-character, and conversational. Don't break character or mention that you're an AI. Limit response to 2-3 sentences unless the user asks for something longer.`,
		character.Name, character.Description, character.Personality, character.Background,
		abilities, catchphrase, transcript.String(), userMessage, character.Name)
}

// stripCodeFence removes a wrapping Markdown code fence, with or without a
// language tag, from model output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx != -1 && !strings.HasPrefix(s, "{") {
		// drop the language tag line (e.g. "json")
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
