package grading

import (
	courseTypes "github.com/smirnypavel/edu-backend/pkg/db/course"
)

// GradeQuiz scores a set of answers against a lesson's question bank.
// Answers are matched to questions by question ID; an answer is correct only
// if it is exactly equal to the stored correct option. Unanswered questions
// score zero, they are not an error. An answer for a question the bank does
// not contain rejects the whole submission.
func GradeQuiz(questions []courseTypes.QuizQuestion, answers []courseTypes.QuizAnswer, timeTaken int) (*QuizResult, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	answerByQuestion := map[string]string{}
	answered := map[string]bool{}
	for _, a := range answers {
		answerByQuestion[a.QuestionID] = a.Answer
		answered[a.QuestionID] = true
	}

	knownQuestions := map[string]bool{}
	for _, q := range questions {
		knownQuestions[q.ID.Hex()] = true
	}
	for _, a := range answers {
		if !knownQuestions[a.QuestionID] {
			return nil, ErrUnknownQuestion
		}
	}

	result := QuizResult{
		Breakdown: make([]QuestionResult, 0, len(questions)),
	}
	maxTimeLimit := 0
	for _, q := range questions {
		result.MaxScore += q.Points
		if q.TimeLimit > maxTimeLimit {
			maxTimeLimit = q.TimeLimit
		}

		qID := q.ID.Hex()
		line := QuestionResult{
			QuestionID: qID,
			MaxPoints:  q.Points,
			Answered:   answered[qID],
		}
		if answered[qID] && answerByQuestion[qID] == q.CorrectAnswer {
			line.Correct = true
			line.Points = q.Points
			result.Score += q.Points
		}
		result.Breakdown = append(result.Breakdown, line)
	}

	result.TimeBonus = timeBonus(timeTaken, maxTimeLimit)
	result.TotalScore = result.Score + result.TimeBonus
	result.Percentage = float64(result.Score) / float64(result.MaxScore)
	result.Passed = result.Percentage >= QUIZ_PASS_THRESHOLD

	return &result, nil
}

// timeBonus awards speed points against the longest time limit in the bank.
// Both thresholds are strict: finishing at exactly half the limit earns the
// small bonus, not the large one.
func timeBonus(timeTaken int, maxTimeLimit int) int {
	if maxTimeLimit <= 0 || timeTaken < 0 {
		return 0
	}
	taken := float64(timeTaken)
	limit := float64(maxTimeLimit)
	if taken < limit*TIME_BONUS_FAST_FACTOR {
		return TIME_BONUS_FAST_POINTS
	}
	if taken < limit*TIME_BONUS_OK_FACTOR {
		return TIME_BONUS_OK_POINTS
	}
	return 0
}
