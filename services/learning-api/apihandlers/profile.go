package apihandlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	mw "github.com/smirnypavel/edu-backend/pkg/apihelpers/middlewares"
)

func (h *HttpEndpoints) AddUserProfileAPI(rg *gin.RouterGroup) {
	userGroup := rg.Group("/user")
	userGroup.Use(mw.GetAndValidateUserJWT(h.tokenSignKey))
	{
		userGroup.GET("/profile", h.getProfile)
		userGroup.PUT("/profile", mw.RequirePayload(), h.updateProfile)
		userGroup.GET("/dashboard", h.getDashboard)
	}
}

func (h *HttpEndpoints) getProfile(c *gin.Context) {
	claims, err := getUserClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	user, err := h.userDBConn.GetUser(claims.Subject)
	if err != nil {
		slog.Error("failed to load user", slog.String("error", err.Error()), slog.String("userID", claims.Subject))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID.Hex(),
		"email":         user.Account.Email,
		"emailVerified": user.Account.EmailVerified,
		"profile":       user.Profile,
		"role":          user.Role,
		"createdAt":     user.Timestamps.CreatedAt,
	})
}

type UpdateProfileReq struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Avatar    *string `json:"avatar"`
}

func (h *HttpEndpoints) updateProfile(c *gin.Context) {
	claims, err := getUserClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	var req UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{}
	if req.FirstName != nil {
		set["profile.firstName"] = *req.FirstName
	}
	if req.LastName != nil {
		set["profile.lastName"] = *req.LastName
	}
	if req.Avatar != nil {
		set["profile.avatar"] = *req.Avatar
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}
	set["timestamps.updatedAt"] = time.Now().Unix()

	if err := h.userDBConn.UpdateUser(claims.Subject, bson.M{"$set": set}); err != nil {
		slog.Error("failed to update profile", slog.String("error", err.Error()), slog.String("userID", claims.Subject))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}

func (h *HttpEndpoints) getDashboard(c *gin.Context) {
	claims, err := getUserClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	user, err := h.userDBConn.GetUser(claims.Subject)
	if err != nil {
		slog.Error("failed to load user", slog.String("error", err.Error()), slog.String("userID", claims.Subject))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	totalScore := 0
	completedLessons := 0
	var progressSum float64
	for _, ec := range user.EnrolledCourses {
		totalScore += ec.TotalScore
		completedLessons += len(ec.CompletedLessons)
		progressSum += ec.Progress
	}
	overallProgress := 0.0
	if len(user.EnrolledCourses) > 0 {
		overallProgress = progressSum / float64(len(user.EnrolledCourses))
	}

	c.JSON(http.StatusOK, gin.H{
		"activeCourses":    len(user.EnrolledCourses),
		"completedLessons": completedLessons,
		"totalScore":       totalScore,
		"overallProgress":  overallProgress,
		"enrolledCourses":  user.EnrolledCourses,
	})
}
