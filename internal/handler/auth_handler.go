package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"maintenance-app/tracking-service/internal/utils"
)

// AuthHandler issues anonymous session tokens. There are no accounts; the
// token only gives writes a stable userId.
type AuthHandler struct {
	jwtSecret string
	log       *zap.Logger
}

func NewAuthHandler(jwtSecret string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{jwtSecret: jwtSecret, log: log}
}

// SignInAnonymously mints a fresh user id and returns a signed session
// token for it.
func (h *AuthHandler) SignInAnonymously(c *gin.Context) {
	userID := uuid.NewString()

	token, err := utils.GenerateSessionToken(h.jwtSecret, userID)
	if err != nil {
		h.log.Error("failed to sign session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId": userID,
		"token":  token,
	})
}
