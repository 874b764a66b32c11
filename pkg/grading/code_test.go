package grading

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	courseTypes "github.com/smirnypavel/edu-backend/pkg/db/course"
)

type testRunnerMock struct {
	// tests containing one of these markers change the runner's behavior
	failMarker  string
	errMarker   string
	slowMarker  string
	invocations int
}

func (r *testRunnerMock) RunTest(ctx context.Context, language string, code string, test string) (bool, string, error) {
	r.invocations++
	if r.errMarker != "" && strings.Contains(test, r.errMarker) {
		return false, "", errors.New("runner exploded")
	}
	if r.slowMarker != "" && strings.Contains(test, r.slowMarker) {
		select {
		case <-ctx.Done():
			return false, "", ctx.Err()
		case <-time.After(time.Minute):
			return true, "ok", nil
		}
	}
	if r.failMarker != "" && strings.Contains(test, r.failMarker) {
		return false, "assertion failed", nil
	}
	return true, "ok", nil
}

func TestGradeCode(t *testing.T) {
	exercise := courseTypes.CodeExercise{
		Language: "javascript",
		Tests:    []string{"test 1", "test 2", "test 3"},
	}

	t.Run("all tests pass", func(t *testing.T) {
		runner := &testRunnerMock{}
		result := GradeCode(context.Background(), runner, exercise, "code", time.Second)
		if !result.Passed {
			t.Error("submission should pass")
		}
		if result.Score != 3 || result.MaxScore != 3 {
			t.Errorf("unexpected score: %d/%d", result.Score, result.MaxScore)
		}
	})

	t.Run("one failing test fails the submission", func(t *testing.T) {
		runner := &testRunnerMock{failMarker: "test 2"}
		result := GradeCode(context.Background(), runner, exercise, "code", time.Second)
		if result.Passed {
			t.Error("submission should not pass")
		}
		if result.Score != 2 {
			t.Errorf("unexpected score: %d", result.Score)
		}
		if result.Results[1].Passed {
			t.Error("second test should be marked failed")
		}
	})

	t.Run("runner error fails only that test", func(t *testing.T) {
		runner := &testRunnerMock{errMarker: "test 1"}
		result := GradeCode(context.Background(), runner, exercise, "code", time.Second)
		if result.Score != 2 {
			t.Errorf("unexpected score: %d", result.Score)
		}
		if result.Results[0].Error == "" {
			t.Error("first test should carry the runner error")
		}
		if runner.invocations != 3 {
			t.Errorf("all tests should still run, got %d invocations", runner.invocations)
		}
	})

	t.Run("hanging test hits its own timeout", func(t *testing.T) {
		runner := &testRunnerMock{slowMarker: "test 2"}
		result := GradeCode(context.Background(), runner, exercise, "code", 50*time.Millisecond)
		if result.Score != 2 {
			t.Errorf("unexpected score: %d", result.Score)
		}
		if result.Results[1].Error == "" {
			t.Error("second test should carry the timeout error")
		}
		if runner.invocations != 3 {
			t.Errorf("all tests should still run, got %d invocations", runner.invocations)
		}
	})

	t.Run("exercise without tests cannot pass", func(t *testing.T) {
		runner := &testRunnerMock{}
		result := GradeCode(context.Background(), runner, courseTypes.CodeExercise{Language: "javascript"}, "code", time.Second)
		if result.Passed {
			t.Error("submission without tests should not pass")
		}
	})
}

func TestEvaluateCodeSubmission(t *testing.T) {
	mock := newCourseDBMock()
	runner := &testRunnerMock{}
	Init(mock, runner, time.Second)

	lesson := courseTypes.Lesson{
		ID: primitive.NewObjectID(),
		CodeExercises: []courseTypes.CodeExercise{
			{Language: "javascript", Tests: []string{"test 1", "test 2"}},
		},
	}
	mock.lessons[lesson.ID.Hex()] = lesson

	t.Run("with unknown lesson", func(t *testing.T) {
		_, err := EvaluateCodeSubmission(context.Background(), primitive.NewObjectID().Hex(), "javascript", "code")
		if !errors.Is(err, ErrLessonNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("with unknown language", func(t *testing.T) {
		_, err := EvaluateCodeSubmission(context.Background(), lesson.ID.Hex(), "cobol", "code")
		if !errors.Is(err, ErrExerciseNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("with matching exercise", func(t *testing.T) {
		result, err := EvaluateCodeSubmission(context.Background(), lesson.ID.Hex(), "javascript", "code")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if !result.Passed || result.Score != 2 {
			t.Errorf("unexpected result: %+v", result)
		}
	})
}
