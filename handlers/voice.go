package handlers

import (
	"errors"
	"net/http"

	tenantRepo "frontdesk/database/repository/tenant"
	"frontdesk/models"
	"frontdesk/services/conversation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VoiceHandler serves the structured function calls a voice agent makes
// during a call. Each endpoint maps onto one agent tool.
type VoiceHandler struct {
	Orchestrator *conversation.Orchestrator
}

func NewVoiceHandler(orc *conversation.Orchestrator) *VoiceHandler {
	return &VoiceHandler{Orchestrator: orc}
}

// GetDaysHandler returns the bookable days for the tenant.
func (h *VoiceHandler) GetDaysHandler(c *gin.Context) {
	var input struct {
		TenantID  string            `json:"tenantId" binding:"required"`
		SessionID string            `json:"sessionId"`
		Fields    map[string]string `json:"fields"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	h.run(c, models.TurnInput{
		Kind:      models.TurnKindVoiceFunction,
		Function:  models.VoiceFuncGetDays,
		TenantID:  input.TenantID,
		SessionID: input.SessionID,
		Fields:    input.Fields,
	})
}

// GetSlotsHandler returns free slots for a previously offered day.
func (h *VoiceHandler) GetSlotsHandler(c *gin.Context) {
	var input struct {
		TenantID  string            `json:"tenantId" binding:"required"`
		SessionID string            `json:"sessionId" binding:"required"`
		DayNumber int               `json:"dayNumber" binding:"required"`
		Fields    map[string]string `json:"fields"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	h.run(c, models.TurnInput{
		Kind:      models.TurnKindVoiceFunction,
		Function:  models.VoiceFuncGetSlots,
		TenantID:  input.TenantID,
		SessionID: input.SessionID,
		DayNumber: input.DayNumber,
		Fields:    input.Fields,
	})
}

// BookHandler books a previously offered slot.
func (h *VoiceHandler) BookHandler(c *gin.Context) {
	var input struct {
		TenantID   string            `json:"tenantId" binding:"required"`
		SessionID  string            `json:"sessionId" binding:"required"`
		SlotNumber int               `json:"slotNumber" binding:"required"`
		Fields     map[string]string `json:"fields"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	h.run(c, models.TurnInput{
		Kind:       models.TurnKindVoiceFunction,
		Function:   models.VoiceFuncBook,
		TenantID:   input.TenantID,
		SessionID:  input.SessionID,
		SlotNumber: input.SlotNumber,
		Fields:     input.Fields,
	})
}

func (h *VoiceHandler) run(c *gin.Context, input models.TurnInput) {
	logger := getLogger(c)

	result, err := h.Orchestrator.HandleTurn(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, tenantRepo.ErrTenantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown tenant"})
			return
		}
		logger.Error("voice function failed",
			zap.String("tenantId", input.TenantID),
			zap.String("function", input.Function),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
		return
	}

	c.JSON(http.StatusOK, result)
}
