package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	mw "github.com/smirnypavel/edu-backend/pkg/apihelpers/middlewares"
	courseDB "github.com/smirnypavel/edu-backend/pkg/db/course"
	userTypes "github.com/smirnypavel/edu-backend/pkg/user-management/types"
	"github.com/smirnypavel/edu-backend/pkg/utils"
)

var courseLevels = []string{
	courseDB.COURSE_LEVEL_BEGINNER,
	courseDB.COURSE_LEVEL_INTERMEDIATE,
	courseDB.COURSE_LEVEL_ADVANCED,
}

var courseStatuses = []string{
	courseDB.COURSE_STATUS_DRAFT,
	courseDB.COURSE_STATUS_PUBLISHED,
	courseDB.COURSE_STATUS_ARCHIVED,
}

func (h *HttpEndpoints) AddCoursesAPI(rg *gin.RouterGroup) {
	coursesGroup := rg.Group("/courses")
	coursesGroup.Use(mw.GetAndValidateUserJWT(h.tokenSignKey))
	{
		coursesGroup.GET("", h.getCourses)
		coursesGroup.GET("/:courseID", h.getCourse)
		coursesGroup.POST("/:courseID/enroll", h.enrollInCourse)
		coursesGroup.POST("/:courseID/lessons/:lessonID/complete", h.completeLesson)
	}

	adminGroup := coursesGroup.Group("")
	adminGroup.Use(mw.IsAdminUser())
	{
		adminGroup.POST("", mw.RequirePayload(), h.createCourse)
		adminGroup.PUT("/:courseID", mw.RequirePayload(), h.updateCourse)
		adminGroup.POST("/:courseID/lessons", mw.RequirePayload(), h.addLesson)
		adminGroup.PUT("/:courseID/lessons/:lessonID", mw.RequirePayload(), h.updateLesson)
		adminGroup.POST("/:courseID/lessons/:lessonID/questions", mw.RequirePayload(), h.addQuestionsToLesson)
	}
}

func (h *HttpEndpoints) getCourses(c *gin.Context) {
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

	enrolledIDs := make([]primitive.ObjectID, 0, len(user.EnrolledCourses))
	for _, ec := range user.EnrolledCourses {
		enrolledIDs = append(enrolledIDs, ec.CourseID)
	}

	enrolled, available, err := h.courseDBConn.GetPublishedCoursesPartitioned(enrolledIDs)
	if err != nil {
		slog.Error("failed to load courses", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"enrolled":  enrolled,
		"available": available,
	})
}

func (h *HttpEndpoints) getCourse(c *gin.Context) {
	claims, err := getUserClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	course, err := h.courseDBConn.GetCourse(c.Param("courseID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	// drafts are only visible to authors and admins
	if course.Status != courseDB.COURSE_STATUS_PUBLISHED &&
		claims.Role != userTypes.ROLE_ADMIN && course.Author.Hex() != claims.Subject {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	lessons, err := h.courseDBConn.GetLessonsByIDs(course.Lessons)
	if err != nil {
		slog.Error("failed to load lessons", slog.String("error", err.Error()), slog.String("courseID", course.ID.Hex()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"course":  course,
		"lessons": lessons,
	})
}

type CreateCourseReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Level       string   `json:"level"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

func (h *HttpEndpoints) createCourse(c *gin.Context) {
	claims, err := getUserClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	var req CreateCourseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	if !utils.ContainsString(courseLevels, req.Level) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course level"})
		return
	}

	author, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	now := time.Now().Unix()
	course := courseDB.Course{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		Price:       req.Price,
		Currency:    req.Currency,
		Category:    req.Category,
		Tags:        req.Tags,
		Lessons:     []primitive.ObjectID{},
		Author:      author,
		Status:      courseDB.COURSE_STATUS_DRAFT,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := h.courseDBConn.AddCourse(course)
	if err != nil {
		slog.Error("failed to create course", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	slog.Info("course created", slog.String("courseID", id), slog.String("userID", claims.Subject))
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type UpdateCourseReq struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Level       *string  `json:"level"`
	Price       *float64 `json:"price"`
	Currency    *string  `json:"currency"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"`
	Status      *string  `json:"status"`
}

func (h *HttpEndpoints) updateCourse(c *gin.Context) {
	var req UpdateCourseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Level != nil {
		if !utils.ContainsString(courseLevels, *req.Level) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course level"})
			return
		}
		set["level"] = *req.Level
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.Currency != nil {
		set["currency"] = *req.Currency
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.Tags != nil {
		set["tags"] = req.Tags
	}
	if req.Status != nil {
		if !utils.ContainsString(courseStatuses, *req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course status"})
			return
		}
		set["status"] = *req.Status
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	course, err := h.courseDBConn.UpdateCourse(c.Param("courseID"), bson.M{"$set": set})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
			return
		}
		slog.Error("failed to update course", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, course)
}

type AddLessonReq struct {
	Title         string                  `json:"title"`
	Order         int                     `json:"order"`
	Content       string                  `json:"content"`
	Images        []string                `json:"images"`
	VideoURL      string                  `json:"videoUrl"`
	CodeExercises []courseDB.CodeExercise `json:"codeExercises"`
}

func (h *HttpEndpoints) addLesson(c *gin.Context) {
	var req AddLessonReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	course, err := h.courseDBConn.GetCourse(c.Param("courseID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	now := time.Now().Unix()
	lesson := courseDB.Lesson{
		Title:         req.Title,
		Order:         req.Order,
		Content:       req.Content,
		Images:        req.Images,
		VideoURL:      req.VideoURL,
		CodeExercises: req.CodeExercises,
		Questions:     []courseDB.QuizQuestion{},
		Submissions:   []courseDB.QuizSubmissionRecord{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	id, err := h.courseDBConn.AddLesson(lesson)
	if err != nil {
		slog.Error("failed to create lesson", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	lessonID, _ := primitive.ObjectIDFromHex(id)
	if err := h.courseDBConn.AddLessonRefToCourse(course.ID.Hex(), lessonID); err != nil {
		slog.Error("failed to attach lesson to course", slog.String("error", err.Error()), slog.String("lessonID", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type UpdateLessonReq struct {
	Title    *string  `json:"title"`
	Order    *int     `json:"order"`
	Content  *string  `json:"content"`
	Images   []string `json:"images"`
	VideoURL *string  `json:"videoUrl"`
}

func (h *HttpEndpoints) updateLesson(c *gin.Context) {
	var req UpdateLessonReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Order != nil {
		set["order"] = *req.Order
	}
	if req.Content != nil {
		set["content"] = *req.Content
	}
	if req.Images != nil {
		set["images"] = req.Images
	}
	if req.VideoURL != nil {
		set["videoUrl"] = *req.VideoURL
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	lesson, err := h.courseDBConn.UpdateLesson(c.Param("lessonID"), bson.M{"$set": set})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
			return
		}
		slog.Error("failed to update lesson", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, lesson)
}

type AddQuestionsReq struct {
	Questions []struct {
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correctAnswer"`
		Points        int      `json:"points"`
		TimeLimit     int      `json:"timeLimit"`
	} `json:"questions"`
}

func (h *HttpEndpoints) addQuestionsToLesson(c *gin.Context) {
	var req AddQuestionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Questions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no questions provided"})
		return
	}

	questions := make([]courseDB.QuizQuestion, 0, len(req.Questions))
	for _, q := range req.Questions {
		question := courseDB.QuizQuestion{
			ID:            primitive.NewObjectID(),
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
			TimeLimit:     q.TimeLimit,
		}
		if err := question.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		questions = append(questions, question)
	}

	if err := h.courseDBConn.AddQuestionsToLesson(c.Param("lessonID"), questions); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
			return
		}
		slog.Error("failed to add questions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"added": len(questions)})
}

func (h *HttpEndpoints) enrollInCourse(c *gin.Context) {
	claims, err := getUserClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	course, err := h.courseDBConn.GetCourse(c.Param("courseID"))
	if err != nil || course.Status != courseDB.COURSE_STATUS_PUBLISHED {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}

	user, err := h.userDBConn.GetUser(claims.Subject)
	if err != nil {
		slog.Error("failed to load user", slog.String("error", err.Error()), slog.String("userID", claims.Subject))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if err := user.EnrollInCourse(course.ID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "already enrolled in course"})
		return
	}

	if _, err := h.userDBConn.ReplaceUser(user); err != nil {
		slog.Error("failed to save enrollment", slog.String("error", err.Error()), slog.String("userID", claims.Subject))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	slog.Info("user enrolled in course", slog.String("userID", claims.Subject), slog.String("courseID", course.ID.Hex()))
	c.JSON(http.StatusOK, gin.H{"message": "enrolled"})
}

func (h *HttpEndpoints) completeLesson(c *gin.Context) {
	claims, err := getUserClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	course, err := h.courseDBConn.GetCourse(c.Param("courseID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return
	}
	lessonID, err := primitive.ObjectIDFromHex(c.Param("lessonID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}

	user, err := h.userDBConn.GetUser(claims.Subject)
	if err != nil {
		slog.Error("failed to load user", slog.String("error", err.Error()), slog.String("userID", claims.Subject))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if err := user.MarkLessonCompleted(course.ID, lessonID, len(course.Lessons)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.userDBConn.ReplaceUser(user); err != nil {
		slog.Error("failed to save lesson completion", slog.String("error", err.Error()), slog.String("userID", claims.Subject))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	enrollment, _ := user.FindEnrolledCourse(course.ID.Hex())
	c.JSON(http.StatusOK, gin.H{"progress": enrollment.Progress})
}
