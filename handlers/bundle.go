package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Chat endpoint
	ChatHandler gin.HandlerFunc

	// Voice function endpoints
	VoiceGetDaysHandler  gin.HandlerFunc
	VoiceGetSlotsHandler gin.HandlerFunc
	VoiceBookHandler     gin.HandlerFunc
}
