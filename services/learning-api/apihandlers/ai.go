package apihandlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smirnypavel/edu-backend/pkg/aireview"
	mw "github.com/smirnypavel/edu-backend/pkg/apihelpers/middlewares"
)

func (h *HttpEndpoints) AddAIAssistAPI(rg *gin.RouterGroup) {
	aiGroup := rg.Group("/ai")
	aiGroup.Use(mw.GetAndValidateUserJWT(h.tokenSignKey))
	{
		aiGroup.POST("/check-code", mw.RequirePayload(), h.aiCheckCode)
		aiGroup.POST("/generate-hint", mw.RequirePayload(), h.aiGenerateHint)
	}

	aiAdminGroup := aiGroup.Group("")
	aiAdminGroup.Use(mw.IsAdminUser())
	{
		aiAdminGroup.POST("/generate-test", mw.RequirePayload(), h.aiGenerateTest)
	}
}

type AICheckCodeReq struct {
	Language string   `json:"language"`
	Code     string   `json:"code"`
	Tests    []string `json:"tests"`
}

func (h *HttpEndpoints) aiCheckCode(c *gin.Context) {
	var req AICheckCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Language == "" || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	review, err := aireview.ReviewCode(req.Language, req.Code, req.Tests)
	if err != nil {
		if errors.Is(err, aireview.ErrModelUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, review)
}

type AIGenerateHintReq struct {
	Language   string `json:"language"`
	Code       string `json:"code"`
	Difficulty string `json:"difficulty"`
}

func (h *HttpEndpoints) aiGenerateHint(c *gin.Context) {
	var req AIGenerateHintReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Language == "" || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "beginner"
	}

	hint, err := aireview.GenerateHint(req.Language, req.Code, req.Difficulty)
	if err != nil {
		if errors.Is(err, aireview.ErrModelUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"hint": hint})
}

type AIGenerateTestReq struct {
	LessonID          string `json:"lessonId"`
	Difficulty        string `json:"difficulty"`
	NumberOfQuestions int    `json:"numberOfQuestions"`
}

func (h *HttpEndpoints) aiGenerateTest(c *gin.Context) {
	var req AIGenerateTestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.NumberOfQuestions < 1 || req.NumberOfQuestions > 20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "numberOfQuestions must be between 1 and 20"})
		return
	}

	lesson, err := h.courseDBConn.GetLesson(req.LessonID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		return
	}

	draft, err := aireview.GenerateQuestions(lesson.Content, req.Difficulty, req.NumberOfQuestions)
	if err != nil {
		if errors.Is(err, aireview.ErrModelUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	// draft questions go back to the author for review, they are never
	// stored directly
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}
