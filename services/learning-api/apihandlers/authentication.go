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

const (
	signupRateLimitWindow = 5 * 60 // to count the new signups, seconds
)

func (h *HttpEndpoints) AddUserAuthAPI(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login", mw.RequirePayload(), h.loginWithEmail)
		authGroup.POST("/signup", mw.RequirePayload(), h.signupWithEmail)
		authGroup.POST("/login-with-google", mw.RequirePayload(), h.loginWithGoogle)
		authGroup.POST("/verify-email", mw.RequirePayload(), h.verifyEmail)
		authGroup.GET("/token/validate", mw.GetAndValidateUserJWT(h.tokenSignKey), h.validateToken)
	}
}

type LoginWithEmailReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *HttpEndpoints) loginWithEmail(c *gin.Context) {
	var req LoginWithEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Email == "" || req.Password == "" {
		slog.Error("missing required fields")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	resp, err := usermanagement.Authenticate(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usermanagement.ErrInvalidCredentials):
			randomWait(3, 6)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		case errors.Is(err, usermanagement.ErrAccountLocked):
			c.JSON(http.StatusForbidden, gin.H{"error": "account temporarily locked, try again later"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

type SignupWithEmailReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *HttpEndpoints) signupWithEmail(c *gin.Context) {
	var req SignupWithEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !umUtils.CheckEmailFormat(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email format"})
		return
	}
	if !umUtils.CheckPasswordFormat(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password too weak"})
		return
	}

	if h.maxNewUsersPer5Minutes > 0 {
		count, err := h.userDBConn.CountRecentlyCreatedUsers(signupRateLimitWindow)
		if err != nil {
			slog.Error("failed to count recently created users", slog.String("error", err.Error()))
		} else if count >= int64(h.maxNewUsersPer5Minutes) {
			slog.Warn("signup rate limit reached")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "try again later"})
			return
		}
	}

	resp, err := usermanagement.Register(
		req.Email,
		req.Password,
		req.FirstName,
		req.LastName,
		emailsending.SendVerificationEmail,
	)
	if err != nil {
		switch {
		case errors.Is(err, usermanagement.ErrAccountExists):
			randomWait(3, 6)
			c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
		case errors.Is(err, usermanagement.ErrInvalidAccountData):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account data"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

type LoginWithGoogleReq struct {
	Email     string `json:"email"`
	GoogleID  string `json:"googleId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *HttpEndpoints) loginWithGoogle(c *gin.Context) {
	var req LoginWithGoogleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Email == "" || req.GoogleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	resp, err := usermanagement.LoginWithGoogle(req.Email, req.GoogleID, req.FirstName, req.LastName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

type VerifyEmailReq struct {
	Token string `json:"token"`
}

func (h *HttpEndpoints) verifyEmail(c *gin.Context) {
	var req VerifyEmailReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}

	if err := usermanagement.VerifyEmail(req.Token); err != nil {
		if errors.Is(err, usermanagement.ErrInvalidOrExpiredToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}

func (h *HttpEndpoints) validateToken(c *gin.Context) {
	claims, err := getUserClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokenInfos": claims})
}
