package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/smirnypavel/edu-backend/pkg/apihelpers/middlewares"
	emailsending "github.com/smirnypavel/edu-backend/pkg/messaging/email-sending"
	usermanagement "github.com/smirnypavel/edu-backend/pkg/user-management"
	umUtils "github.com/smirnypavel/edu-backend/pkg/user-management/utils"
)

func (h *HttpEndpoints) AddPasswordResetAPI(rg *gin.RouterGroup) {
	resetGroup := rg.Group("/password-reset")
	{
		resetGroup.POST("/initiate", mw.RequirePayload(), h.initiatePasswordReset)
		resetGroup.POST("/reset", mw.RequirePayload(), h.completePasswordReset)
	}
}

type InitiatePasswordResetReq struct {
	Email string `json:"email"`
}

func (h *HttpEndpoints) initiatePasswordReset(c *gin.Context) {
	var req InitiatePasswordResetReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email"})
		return
	}

	err := usermanagement.InitiatePasswordReset(req.Email, emailsending.SendPasswordResetEmail)
	if err != nil {
		if errors.Is(err, usermanagement.ErrAccountNotFound) {
			slog.Warn("password reset requested for unknown email", slog.String("email", umUtils.BlurEmailAddress(req.Email)))
			randomWait(3, 6)
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password reset email sent"})
}

type CompletePasswordResetReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *HttpEndpoints) completePasswordReset(c *gin.Context) {
	var req CompletePasswordResetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}
	if !umUtils.CheckPasswordFormat(req.NewPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password too weak"})
		return
	}

	email, err := usermanagement.CompletePasswordReset(req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, usermanagement.ErrInvalidOrExpiredToken) {
			randomWait(3, 6)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	go func() {
		if err := emailsending.SendPasswordChangedNotification(email); err != nil {
			slog.Error("failed to send password changed notification", slog.String("error", err.Error()))
		}
	}()

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
