package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	mw "github.com/smirnypavel/edu-backend/pkg/apihelpers/middlewares"
	courseDB "github.com/smirnypavel/edu-backend/pkg/db/course"
	"github.com/smirnypavel/edu-backend/pkg/grading"
)

func (h *HttpEndpoints) AddAssessmentsAPI(rg *gin.RouterGroup) {
	assessmentGroup := rg.Group("/courses/:courseID/lessons/:lessonID")
	assessmentGroup.Use(mw.GetAndValidateUserJWT(h.tokenSignKey))
	{
		assessmentGroup.POST("/quiz-submissions", mw.RequirePayload(), h.submitQuiz)
		assessmentGroup.GET("/quiz-submissions", h.getQuizSubmissions)
		assessmentGroup.POST("/code-submissions", mw.RequirePayload(), h.submitCode)
	}
}

// lessonInCourse guards against submissions through a course the lesson does
// not belong to.
func (h *HttpEndpoints) lessonInCourse(courseID string, lessonID string) (courseDB.Course, bool) {
	course, err := h.courseDBConn.GetCourse(courseID)
	if err != nil {
		return courseDB.Course{}, false
	}
	for _, id := range course.Lessons {
		if id.Hex() == lessonID {
			return course, true
		}
	}
	return courseDB.Course{}, false
}

type SubmitQuizReq struct {
	Answers   []courseDB.QuizAnswer `json:"answers"`
	TimeTaken int                   `json:"timeTaken"`
}

func (h *HttpEndpoints) submitQuiz(c *gin.Context) {
	claims, err := getUserClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	var req SubmitQuizReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, ok := h.lessonInCourse(c.Param("courseID"), c.Param("lessonID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		return
	}

	result, err := grading.EvaluateQuizSubmission(claims.Subject, c.Param("lessonID"), req.Answers, req.TimeTaken)
	if err != nil {
		switch {
		case errors.Is(err, grading.ErrLessonNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		case errors.Is(err, grading.ErrNoQuestions):
			c.JSON(http.StatusBadRequest, gin.H{"error": "lesson has no quiz"})
		case errors.Is(err, grading.ErrUnknownQuestion):
			c.JSON(http.StatusBadRequest, gin.H{"error": "answer references an unknown question"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	if result.Passed {
		h.addScoreToEnrollment(claims.Subject, course.ID, result.TotalScore)
	}

	c.JSON(http.StatusOK, result)
}

// addScoreToEnrollment accumulates the earned points on the user's
// enrollment record. The grade already stands at this point, so failures
// here are logged and swallowed.
func (h *HttpEndpoints) addScoreToEnrollment(userID string, courseID primitive.ObjectID, points int) {
	user, err := h.userDBConn.GetUser(userID)
	if err != nil {
		slog.Error("failed to load user for score update", slog.String("error", err.Error()), slog.String("userID", userID))
		return
	}
	if err := user.AddCourseScore(courseID, points); err != nil {
		slog.Warn("quiz passed without enrollment", slog.String("userID", userID), slog.String("courseID", courseID.Hex()))
		return
	}
	if _, err := h.userDBConn.ReplaceUser(user); err != nil {
		slog.Error("failed to save score update", slog.String("error", err.Error()), slog.String("userID", userID))
	}
}

func (h *HttpEndpoints) getQuizSubmissions(c *gin.Context) {
	claims, err := getUserClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if _, ok := h.lessonInCourse(c.Param("courseID"), c.Param("lessonID")); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		return
	}

	lessonID, err := primitive.ObjectIDFromHex(c.Param("lessonID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	submissions, err := h.courseDBConn.GetQuizSubmissionsForUser([]primitive.ObjectID{lessonID}, userID)
	if err != nil {
		slog.Error("failed to load submissions", slog.String("error", err.Error()), slog.String("userID", claims.Subject))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

type SubmitCodeReq struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

func (h *HttpEndpoints) submitCode(c *gin.Context) {
	if _, err := getUserClaims(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	var req SubmitCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Language == "" || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	if _, ok := h.lessonInCourse(c.Param("courseID"), c.Param("lessonID")); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		return
	}

	result, err := grading.EvaluateCodeSubmission(c.Request.Context(), c.Param("lessonID"), req.Language, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, grading.ErrLessonNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		case errors.Is(err, grading.ErrExerciseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no exercise for this language"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
