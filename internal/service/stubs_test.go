package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"wiki-character-chat/backend/internal/models"
	"wiki-character-chat/backend/internal/wiki"
	"wiki-character-chat/backend/pkg/logger"
)

func testLogger() *logger.Logger {
	cfg := logger.DefaultConfig()
	cfg.Output = io.Discard
	return logger.New(cfg)
}

// stubText lets each test script the text synthesizer and inspect the
// prompts it received.
type stubText struct {
	mu       sync.Mutex
	replies  []string
	err      error
	prompts  []string
	replyIdx int
}

func (s *stubText) Generate(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) == 0 {
		return "", nil
	}
	reply := s.replies[s.replyIdx%len(s.replies)]
	s.replyIdx++
	return reply, nil
}

func (s *stubText) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

type stubImages struct {
	images [][]byte
	err    error
}

func (s *stubImages) Generate(_ context.Context, _ string, _ int) ([][]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.images, nil
}

type fakeBlobStore struct {
	saved     map[string][]byte
	saveErr   error
	nextToken int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{saved: make(map[string][]byte)}
}

func (s *fakeBlobStore) SavePortrait(characterName string, data []byte) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.nextToken++
	name := "character_test_" + string(rune('a'+s.nextToken-1)) + ".png"
	s.saved[name] = data
	return name, nil
}

func (s *fakeBlobStore) FilePath(fileName string) (string, error) {
	if _, ok := s.saved[fileName]; !ok {
		return "", errors.New("not found")
	}
	return "/tmp/" + fileName, nil
}

type fakeCharacterRepo struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*models.Character
	byURL  map[string]uint
}

func newFakeCharacterRepo() *fakeCharacterRepo {
	return &fakeCharacterRepo{
		byID:  make(map[uint]*models.Character),
		byURL: make(map[string]uint),
	}
}

func (r *fakeCharacterRepo) ExistsByURL(url string) (uint, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byURL[url]
	return id, ok, nil
}

func (r *fakeCharacterRepo) Create(character *models.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	character.ID = r.nextID
	clone := *character
	r.byID[character.ID] = &clone
	r.byURL[character.WikipediaURL] = character.ID
	return nil
}

func (r *fakeCharacterRepo) GetByID(id uint) (*models.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	character, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	clone := *character
	return &clone, nil
}

func (r *fakeCharacterRepo) GetAll() ([]models.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Character, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, *c)
	}
	return out, nil
}

type fakeChatRepo struct {
	mu            sync.Mutex
	nextSessionID uint
	nextMessageID uint
	sessions      map[uint]*models.ChatSession
	characters    *fakeCharacterRepo
	messages      []models.ChatMessage
	appendErr     error
}

func newFakeChatRepo(characters *fakeCharacterRepo) *fakeChatRepo {
	return &fakeChatRepo{
		sessions:   make(map[uint]*models.ChatSession),
		characters: characters,
	}
}

func (r *fakeChatRepo) CreateSession(session *models.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSessionID++
	session.ID = r.nextSessionID
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *fakeChatRepo) GetSessionWithCharacter(sessionID uint) (*models.ChatSession, *models.Character, error) {
	r.mu.Lock()
	session, ok := r.sessions[sessionID]
	r.mu.Unlock()
	if !ok {
		return nil, nil, nil
	}
	character, err := r.characters.GetByID(session.CharacterID)
	if err != nil {
		return nil, nil, err
	}
	clone := *session
	return &clone, character, nil
}

func (r *fakeChatRepo) AppendMessage(message *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.nextMessageID++
	message.ID = r.nextMessageID
	r.messages = append(r.messages, *message)
	return nil
}

func (r *fakeChatRepo) RecentMessages(sessionID uint, limit int) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var forSession []models.ChatMessage
	for _, msg := range r.messages {
		if msg.SessionID == sessionID {
			forSession = append(forSession, msg)
		}
	}
	// newest first
	var out []models.ChatMessage
	for i := len(forSession) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, forSession[i])
	}
	return out, nil
}

func (r *fakeChatRepo) MessagesAsc(sessionID uint) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.ChatMessage{}
	for _, msg := range r.messages {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) SessionSummaries(userID string) ([]models.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.SessionSummary{}
	for _, session := range r.sessions {
		if session.UserID != userID {
			continue
		}
		summary := models.SessionSummary{
			SessionID:   session.ID,
			CharacterID: session.CharacterID,
			UserID:      session.UserID,
			CreatedAt:   session.CreatedAt,
		}
		if character, _ := r.characters.GetByID(session.CharacterID); character != nil {
			summary.CharacterName = character.Name
			summary.CharacterDescription = character.Description
			summary.CharacterPortraitURL = character.PortraitURL
		}
		for i := len(r.messages) - 1; i >= 0; i-- {
			if r.messages[i].SessionID == session.ID {
				summary.LastMessage = r.messages[i].Body
				break
			}
		}
		out = append(out, summary)
	}
	return out, nil
}

type fakeWiki struct {
	doc *wiki.Document
	err error
}

func (f *fakeWiki) Fetch(_ context.Context, _ string) (*wiki.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}
