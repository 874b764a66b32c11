package main

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/smirnypavel/edu-backend/services/learning-api/apihandlers"
)

var conf LearningApiConfig

func main() {
	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length"},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add handlers
	router.GET("/", apihandlers.HealthCheckHandle)
	v1Root := router.Group("/v1")

	v1APIHandlers := apihandlers.NewHTTPHandler(
		conf.UserManagementConfig.UserJWTConfig.SignKey,
		conf.UserManagementConfig.UserJWTConfig.ExpiresIn,
		userDBService,
		courseDBService,
		conf.UserManagementConfig.MaxNewUsersPer5Minutes,
	)
	v1APIHandlers.AddUserAuthAPI(v1Root)
	v1APIHandlers.AddPasswordResetAPI(v1Root)
	v1APIHandlers.AddUserProfileAPI(v1Root)
	v1APIHandlers.AddCoursesAPI(v1Root)
	v1APIHandlers.AddAssessmentsAPI(v1Root)
	v1APIHandlers.AddAIAssistAPI(v1Root)

	// Start the server
	slog.Info("Starting Learning API on port " + conf.GinConfig.Port)
	if err := router.Run(":" + conf.GinConfig.Port); err != nil {
		slog.Error("Exited Learning API", slog.String("error", err.Error()))
		return
	}
}
