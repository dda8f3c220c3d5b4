package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"wiki-character-chat/backend/internal/blob"
	"wiki-character-chat/backend/internal/models"
	"wiki-character-chat/backend/internal/service"
	apperrors "wiki-character-chat/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// CharacterHandler serves character creation, listing and portrait routes.
type CharacterHandler struct {
	creation   *service.CreationService
	characters *service.CharacterService
	portraits  blob.Store
}

func NewCharacterHandler(creation *service.CreationService, characters *service.CharacterService, portraits blob.Store) *CharacterHandler {
	return &CharacterHandler{
		creation:   creation,
		characters: characters,
		portraits:  portraits,
	}
}

// CreateCharacter runs the full creation pipeline for one Wikipedia URL.
func (h *CharacterHandler) CreateCharacter(c *gin.Context) {
	var req models.CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("wikipedia_url is required"))
		return
	}

	character, err := h.creation.Create(c.Request.Context(), req.WikipediaURL)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"character": character,
		"message":   "Character created successfully!",
	})
}

func (h *CharacterHandler) ListCharacters(c *gin.Context) {
	characters, err := h.characters.GetAllCharacters()
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, characters)
}

func (h *CharacterHandler) GetCharacter(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	character, err := h.characters.GetCharacterByID(id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, character)
}

// ServePortrait streams a stored portrait image. The blob store rejects
// names that escape the storage directory.
func (h *CharacterHandler) ServePortrait(c *gin.Context) {
	fileName := c.Param("fileName")

	path, err := h.portraits.FilePath(fileName)
	if err != nil {
		c.Error(apperrors.NewNotFoundError("image not found"))
		return
	}

	contentType := "image/png"
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".gif":
		contentType = "image/gif"
	case ".webp":
		contentType = "image/webp"
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=31536000")
	c.File(path)
}

var placeholderColors = []string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7", "#DDA0DD"}

// ServePlaceholderAvatar renders a deterministic SVG initials avatar. Same
// name, same avatar; no external call involved.
func (h *CharacterHandler) ServePlaceholderAvatar(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		name = "Character"
	}

	var initials strings.Builder
	for _, word := range strings.Fields(name) {
		initials.WriteRune([]rune(word)[0])
		if initials.Len() >= 2 {
			break
		}
	}
	text := strings.ToUpper(initials.String())
	if text == "" {
		text = "C"
	}

	bgColor := placeholderColors[len(name)%len(placeholderColors)]

	svg := fmt.Sprintf(`<svg width="200" height="200" xmlns="http://www.w3.org/2000/svg">
  <rect width="200" height="200" fill="%s"/>
  <text x="100" y="125" font-family="Arial, sans-serif" font-size="80" font-weight="bold" text-anchor="middle" fill="white">%s</text>
</svg>`, bgColor, text)

	c.Header("Content-Type", "image/svg+xml")
	c.String(http.StatusOK, svg)
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid %s parameter", name))
	}
	return uint(id), nil
}
