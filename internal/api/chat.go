package api

import (
	"net/http"

	"wiki-character-chat/backend/internal/models"
	"wiki-character-chat/backend/internal/service"
	apperrors "wiki-character-chat/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves session and message routes for the conversation engine.
type ChatHandler struct {
	conversations *service.ConversationService
}

func NewChatHandler(conversations *service.ConversationService) *ChatHandler {
	return &ChatHandler{conversations: conversations}
}

// StartSession opens a session and returns the character's greeting.
func (h *ChatHandler) StartSession(c *gin.Context) {
	var req models.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("character_id is required"))
		return
	}

	start, err := h.conversations.StartSession(c.Request.Context(), req.CharacterID, req.UserID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session": start.Session,
		"character": gin.H{
			"id":           start.Character.ID,
			"name":         start.Character.Name,
			"description":  start.Character.Description,
			"portrait_url": start.Character.PortraitURL,
		},
		"greeting": start.Greeting,
	})
}

// ListSessions returns the session summaries for one user.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	userID := c.Query("user_id")

	summaries, err := h.conversations.ListSessions(userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// ListMessages returns a session's message log in chronological order.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	messages, err := h.conversations.ListMessages(sessionID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SendMessage executes one conversation turn.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewValidationError("message cannot be empty"))
		return
	}

	result, err := h.conversations.SendMessage(c.Request.Context(), sessionID, req.Message)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_message":       req.Message,
		"character_response": result.Reply,
		"timestamp":          result.CompletedAt,
	})
}
