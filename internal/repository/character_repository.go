package repository

import (
	"errors"

	"wiki-character-chat/backend/internal/models"

	"gorm.io/gorm"
)

// CharacterRepository is the durable store for characters. The creation
// pipeline writes through it and the conversation engine reads from it.
type CharacterRepository interface {
	// ExistsByURL returns the id of the character created for the given
	// Wikipedia URL, if any.
	ExistsByURL(url string) (uint, bool, error)
	Create(character *models.Character) error
	GetByID(id uint) (*models.Character, error)
	GetAll() ([]models.Character, error)
}

type GormCharacterRepository struct {
	db *gorm.DB
}

func NewGormCharacterRepository(db *gorm.DB) *GormCharacterRepository {
	return &GormCharacterRepository{db: db}
}

func (r *GormCharacterRepository) ExistsByURL(url string) (uint, bool, error) {
	var character models.Character
	err := r.db.Select("id").Where("wikipedia_url = ?", url).First(&character).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return character.ID, true, nil
}

func (r *GormCharacterRepository) Create(character *models.Character) error {
	return r.db.Create(character).Error
}

func (r *GormCharacterRepository) GetByID(id uint) (*models.Character, error) {
	var character models.Character
	err := r.db.First(&character, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &character, nil
}

func (r *GormCharacterRepository) GetAll() ([]models.Character, error) {
	var characters []models.Character
	err := r.db.Order("created_at DESC").Find(&characters).Error
	if characters == nil {
		characters = []models.Character{}
	}
	return characters, err
}
