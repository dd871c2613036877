package handlers

import (
	"net/http"
	"os"

	"gamecafe-pos/internal/ai"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

// --- POST /api/ask ---
func AskAI(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Message is required")
		return
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		respondError(c, http.StatusInternalServerError, "Server missing Gemini API key")
		return
	}

	reply, err := ai.RunAgent(req.Message, apiKey)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondOK(c, gin.H{"reply": reply})
}
