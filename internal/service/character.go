package service

import (
	"wiki-character-chat/backend/internal/models"
	"wiki-character-chat/backend/internal/repository"
	apperrors "wiki-character-chat/backend/pkg/errors"
)

// CharacterService is the read-only projection over stored characters.
type CharacterService struct {
	repo repository.CharacterRepository
}

func NewCharacterService(repo repository.CharacterRepository) *CharacterService {
	return &CharacterService{repo: repo}
}

func (s *CharacterService) GetCharacterByID(id uint) (*models.Character, error) {
	character, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load character").WithCause(err)
	}
	if character == nil {
		return nil, apperrors.NewNotFoundError("character not found")
	}
	return character, nil
}

func (s *CharacterService) GetAllCharacters() ([]models.Character, error) {
	characters, err := s.repo.GetAll()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load characters").WithCause(err)
	}
	return characters, nil
}
