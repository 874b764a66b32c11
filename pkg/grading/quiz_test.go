package grading

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	courseTypes "github.com/smirnypavel/edu-backend/pkg/db/course"
)

func testQuestion(question string, correct string, points int, timeLimit int) courseTypes.QuizQuestion {
	return courseTypes.QuizQuestion{
		ID:            primitive.NewObjectID(),
		Question:      question,
		Options:       []string{correct, "something else"},
		CorrectAnswer: correct,
		Points:        points,
		TimeLimit:     timeLimit,
	}
}

func TestGradeQuiz(t *testing.T) {
	t.Run("with empty question bank", func(t *testing.T) {
		_, err := GradeQuiz(nil, nil, 10)
		if !errors.Is(err, ErrNoQuestions) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("with answer for unknown question", func(t *testing.T) {
		questions := []courseTypes.QuizQuestion{testQuestion("q1", "A", 10, 300)}
		answers := []courseTypes.QuizAnswer{
			{QuestionID: primitive.NewObjectID().Hex(), Answer: "A"},
		}
		_, err := GradeQuiz(questions, answers, 10)
		if !errors.Is(err, ErrUnknownQuestion) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("single question answered correctly and quickly", func(t *testing.T) {
		q := testQuestion("q1", "A", 10, 300)
		answers := []courseTypes.QuizAnswer{{QuestionID: q.ID.Hex(), Answer: "A"}}

		result, err := GradeQuiz([]courseTypes.QuizQuestion{q}, answers, 100)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if result.Score != 10 {
			t.Errorf("unexpected score: %d", result.Score)
		}
		if result.TimeBonus != 10 {
			t.Errorf("unexpected time bonus: %d", result.TimeBonus)
		}
		if result.TotalScore != 20 {
			t.Errorf("unexpected total score: %d", result.TotalScore)
		}
		if !result.Passed {
			t.Error("submission should pass")
		}
	})

	t.Run("answer comparison is exact", func(t *testing.T) {
		q := testQuestion("q1", "A", 10, 300)
		answers := []courseTypes.QuizAnswer{{QuestionID: q.ID.Hex(), Answer: "a"}}

		result, err := GradeQuiz([]courseTypes.QuizQuestion{q}, answers, 300)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if result.Score != 0 {
			t.Errorf("unexpected score: %d", result.Score)
		}
		if result.Passed {
			t.Error("submission should not pass")
		}
	})

	t.Run("unanswered questions score zero without error", func(t *testing.T) {
		q1 := testQuestion("q1", "A", 10, 300)
		q2 := testQuestion("q2", "B", 10, 300)
		answers := []courseTypes.QuizAnswer{{QuestionID: q1.ID.Hex(), Answer: "A"}}

		result, err := GradeQuiz([]courseTypes.QuizQuestion{q1, q2}, answers, 300)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if result.Score != 10 {
			t.Errorf("unexpected score: %d", result.Score)
		}
		if len(result.Breakdown) != 2 {
			t.Errorf("unexpected breakdown length: %d", len(result.Breakdown))
			return
		}
		if result.Breakdown[1].Answered {
			t.Error("second question should be marked unanswered")
		}
	})

	t.Run("pass threshold excludes the time bonus", func(t *testing.T) {
		// 10 of 20 base points is below the threshold; the bonus must not
		// tip the submission into passing.
		q1 := testQuestion("q1", "A", 10, 300)
		q2 := testQuestion("q2", "B", 10, 300)
		answers := []courseTypes.QuizAnswer{{QuestionID: q1.ID.Hex(), Answer: "A"}}

		result, err := GradeQuiz([]courseTypes.QuizQuestion{q1, q2}, answers, 60)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if result.TimeBonus != 10 {
			t.Errorf("unexpected time bonus: %d", result.TimeBonus)
		}
		if result.Passed {
			t.Error("submission should not pass on bonus points")
		}
	})

	t.Run("pass threshold is inclusive", func(t *testing.T) {
		q1 := testQuestion("q1", "A", 7, 300)
		q2 := testQuestion("q2", "B", 3, 300)
		answers := []courseTypes.QuizAnswer{{QuestionID: q1.ID.Hex(), Answer: "A"}}

		result, err := GradeQuiz([]courseTypes.QuizQuestion{q1, q2}, answers, 300)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if !result.Passed {
			t.Errorf("exactly 70%% should pass, got %.2f", result.Percentage)
		}
	})

	t.Run("bonus uses the longest time limit in the bank", func(t *testing.T) {
		q1 := testQuestion("q1", "A", 10, 60)
		q2 := testQuestion("q2", "B", 10, 600)
		answers := []courseTypes.QuizAnswer{
			{QuestionID: q1.ID.Hex(), Answer: "A"},
			{QuestionID: q2.ID.Hex(), Answer: "B"},
		}

		// 200s is over 3x q1's limit but under half of q2's.
		result, err := GradeQuiz([]courseTypes.QuizQuestion{q1, q2}, answers, 200)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if result.TimeBonus != TIME_BONUS_FAST_POINTS {
			t.Errorf("unexpected time bonus: %d", result.TimeBonus)
		}
	})

	t.Run("bonus thresholds are strict", func(t *testing.T) {
		q := testQuestion("q1", "A", 10, 300)
		answers := []courseTypes.QuizAnswer{{QuestionID: q.ID.Hex(), Answer: "A"}}

		for _, tc := range []struct {
			timeTaken int
			bonus     int
		}{
			{149, TIME_BONUS_FAST_POINTS},
			{150, TIME_BONUS_OK_POINTS},
			{224, TIME_BONUS_OK_POINTS},
			{225, 0},
			{300, 0},
		} {
			result, err := GradeQuiz([]courseTypes.QuizQuestion{q}, answers, tc.timeTaken)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				continue
			}
			if result.TimeBonus != tc.bonus {
				t.Errorf("timeTaken %d: expected bonus %d, got %d", tc.timeTaken, tc.bonus, result.TimeBonus)
			}
		}
	})
}

type courseDBMock struct {
	lessons     map[string]courseTypes.Lesson
	submissions map[string][]courseTypes.QuizSubmissionRecord
}

func newCourseDBMock() *courseDBMock {
	return &courseDBMock{
		lessons:     map[string]courseTypes.Lesson{},
		submissions: map[string][]courseTypes.QuizSubmissionRecord{},
	}
}

func (m *courseDBMock) GetLesson(lessonID string) (courseTypes.Lesson, error) {
	lesson, ok := m.lessons[lessonID]
	if !ok {
		return courseTypes.Lesson{}, mongo.ErrNoDocuments
	}
	return lesson, nil
}

func (m *courseDBMock) AddQuizSubmission(lessonID string, record courseTypes.QuizSubmissionRecord) error {
	if _, ok := m.lessons[lessonID]; !ok {
		return mongo.ErrNoDocuments
	}
	m.submissions[lessonID] = append(m.submissions[lessonID], record)
	return nil
}

func TestEvaluateQuizSubmission(t *testing.T) {
	mock := newCourseDBMock()
	Init(mock, nil, 0)

	q := testQuestion("q1", "A", 10, 300)
	lesson := courseTypes.Lesson{
		ID:        primitive.NewObjectID(),
		Title:     "test lesson",
		Questions: []courseTypes.QuizQuestion{q},
	}
	mock.lessons[lesson.ID.Hex()] = lesson
	userID := primitive.NewObjectID().Hex()

	t.Run("with unknown lesson", func(t *testing.T) {
		_, err := EvaluateQuizSubmission(userID, primitive.NewObjectID().Hex(), nil, 10)
		if !errors.Is(err, ErrLessonNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("appends to submission history", func(t *testing.T) {
		answers := []courseTypes.QuizAnswer{{QuestionID: q.ID.Hex(), Answer: "A"}}

		result, err := EvaluateQuizSubmission(userID, lesson.ID.Hex(), answers, 100)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if !result.Passed {
			t.Error("submission should pass")
		}

		records := mock.submissions[lesson.ID.Hex()]
		if len(records) != 1 {
			t.Errorf("unexpected history length: %d", len(records))
			return
		}
		if records[0].Score != 10 || records[0].TimeBonus != 10 || !records[0].Passed {
			t.Errorf("unexpected record: %+v", records[0])
		}

		if _, err := EvaluateQuizSubmission(userID, lesson.ID.Hex(), answers, 280); err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if len(mock.submissions[lesson.ID.Hex()]) != 2 {
			t.Error("repeated submissions should append, not replace")
		}
	})
}
