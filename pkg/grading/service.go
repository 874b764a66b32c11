package grading

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	courseTypes "github.com/smirnypavel/edu-backend/pkg/db/course"
)

type CourseDBConnector interface {
	GetLesson(lessonID string) (courseTypes.Lesson, error)
	AddQuizSubmission(lessonID string, record courseTypes.QuizSubmissionRecord) error
}

var (
	courseDBService CourseDBConnector
	codeTestRunner  TestRunner
	codeTestTimeout time.Duration
)

func Init(courseDB CourseDBConnector, runner TestRunner, testTimeout time.Duration) {
	courseDBService = courseDB
	codeTestRunner = runner
	codeTestTimeout = testTimeout
}

// EvaluateQuizSubmission grades the answers against the lesson's question
// bank and appends the outcome to the lesson's submission history. A history
// write failure is logged but does not void the grade the caller receives.
func EvaluateQuizSubmission(userID string, lessonID string, answers []courseTypes.QuizAnswer, timeTaken int) (*QuizResult, error) {
	lesson, err := courseDBService.GetLesson(lessonID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLessonNotFound
		}
		slog.Error("failed to load lesson", slog.String("error", err.Error()), slog.String("lessonID", lessonID))
		return nil, ErrServiceUnavailable
	}

	result, err := GradeQuiz(lesson.Questions, answers, timeTaken)
	if err != nil {
		return nil, err
	}

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		slog.Error("invalid user id on quiz submission", slog.String("error", err.Error()))
		return nil, ErrServiceUnavailable
	}
	record := courseTypes.QuizSubmissionRecord{
		UserID:    uID,
		Answers:   answers,
		Score:     result.Score,
		TimeBonus: result.TimeBonus,
		TimeTaken: timeTaken,
		Passed:    result.Passed,
	}
	if err := courseDBService.AddQuizSubmission(lessonID, record); err != nil {
		slog.Error("failed to record quiz submission", slog.String("error", err.Error()), slog.String("lessonID", lessonID), slog.String("userID", userID))
	}

	return result, nil
}

// EvaluateCodeSubmission runs the lesson's code exercise for the given
// language against the submitted code. Nothing is persisted.
func EvaluateCodeSubmission(ctx context.Context, lessonID string, language string, code string) (*CodeResult, error) {
	lesson, err := courseDBService.GetLesson(lessonID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLessonNotFound
		}
		slog.Error("failed to load lesson", slog.String("error", err.Error()), slog.String("lessonID", lessonID))
		return nil, ErrServiceUnavailable
	}

	exercise, ok := lesson.FindCodeExercise(language)
	if !ok {
		return nil, ErrExerciseNotFound
	}

	return GradeCode(ctx, codeTestRunner, exercise, code, codeTestTimeout), nil
}
