package handlers

import (
	"errors"
	"net/http"
	"strings"

	tenantRepo "frontdesk/database/repository/tenant"
	"frontdesk/models"
	"frontdesk/services/conversation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler serves the text chat entry point.
type ChatHandler struct {
	Orchestrator *conversation.Orchestrator
}

func NewChatHandler(orc *conversation.Orchestrator) *ChatHandler {
	return &ChatHandler{Orchestrator: orc}
}

// HandleChat processes one chat message and returns the assistant reply plus
// the structured turn outcome.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	logger := getLogger(c)

	var input struct {
		TenantID  string `json:"tenantId" binding:"required"`
		SessionID string `json:"sessionId"`
		Message   string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if strings.TrimSpace(input.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
		return
	}

	result, err := h.Orchestrator.HandleTurn(c.Request.Context(), models.TurnInput{
		Kind:      models.TurnKindChat,
		TenantID:  input.TenantID,
		SessionID: input.SessionID,
		Message:   input.Message,
	})
	if err != nil {
		if errors.Is(err, tenantRepo.ErrTenantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown tenant"})
			return
		}
		logger.Error("chat turn failed",
			zap.String("tenantId", input.TenantID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		return
	}

	c.JSON(http.StatusOK, result)
}
