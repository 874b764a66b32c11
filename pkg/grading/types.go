package grading

import "errors"

const (
	// Share of the base score (bonus excluded) required to pass a quiz.
	QUIZ_PASS_THRESHOLD = 0.7

	// Completing a quiz in under half of the longest question time limit
	// earns the large bonus, under three quarters the small one.
	TIME_BONUS_FAST_FACTOR = 0.5
	TIME_BONUS_FAST_POINTS = 10
	TIME_BONUS_OK_FACTOR   = 0.75
	TIME_BONUS_OK_POINTS   = 5
)

var (
	ErrNoQuestions        = errors.New("lesson has no quiz questions")
	ErrUnknownQuestion    = errors.New("answer references an unknown question")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrExerciseNotFound   = errors.New("code exercise not found")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)

// QuestionResult is the per question line of a quiz grading breakdown.
type QuestionResult struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
	Points     int    `json:"points"`
	MaxPoints  int    `json:"maxPoints"`
	Answered   bool   `json:"answered"`
}

// QuizResult is the outcome of grading one quiz submission. Score is the sum
// of points for correctly answered questions; TimeBonus is added on top but
// never counts towards the pass decision.
type QuizResult struct {
	Score      int              `json:"score"`
	MaxScore   int              `json:"maxScore"`
	TimeBonus  int              `json:"timeBonus"`
	TotalScore int              `json:"totalScore"`
	Percentage float64          `json:"percentage"`
	Passed     bool             `json:"passed"`
	Breakdown  []QuestionResult `json:"breakdown"`
}

// CodeTestResult is the outcome of one test of a code exercise. A runner
// failure or timeout marks the test failed and is reported in Error.
type CodeTestResult struct {
	Test   string `json:"test"`
	Passed bool   `json:"passed"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// CodeResult is the outcome of grading one code exercise submission. Score
// counts passing tests; Passed requires every test to pass.
type CodeResult struct {
	Passed   bool             `json:"passed"`
	Score    int              `json:"score"`
	MaxScore int              `json:"maxScore"`
	Results  []CodeTestResult `json:"results"`
}
