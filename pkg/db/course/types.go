package course

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	COURSE_STATUS_DRAFT     = "draft"
	COURSE_STATUS_PUBLISHED = "published"
	COURSE_STATUS_ARCHIVED  = "archived"

	COURSE_LEVEL_BEGINNER     = "beginner"
	COURSE_LEVEL_INTERMEDIATE = "intermediate"
	COURSE_LEVEL_ADVANCED     = "advanced"
)

type Course struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description" json:"description"`
	Level       string               `bson:"level" json:"level"`
	Price       float64              `bson:"price" json:"price"`
	Currency    string               `bson:"currency" json:"currency"`
	Category    string               `bson:"category" json:"category"`
	Tags        []string             `bson:"tags" json:"tags"`
	Lessons     []primitive.ObjectID `bson:"lessons" json:"lessons"`
	Author      primitive.ObjectID   `bson:"author,omitempty" json:"author"`
	Status      string               `bson:"status" json:"status"`
	CreatedAt   int64                `bson:"createdAt" json:"createdAt"`
	UpdatedAt   int64                `bson:"updatedAt" json:"updatedAt"`
}

type Lesson struct {
	ID            primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Title         string                 `bson:"title" json:"title"`
	Order         int                    `bson:"order" json:"order"`
	Content       string                 `bson:"content" json:"content"`
	Images        []string               `bson:"images" json:"images"`
	VideoURL      string                 `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	CodeExercises []CodeExercise         `bson:"codeExercises" json:"codeExercises"`
	Questions     []QuizQuestion         `bson:"questions" json:"questions"`
	Submissions   []QuizSubmissionRecord `bson:"quizSubmissions" json:"quizSubmissions"`
	CreatedAt     int64                  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     int64                  `bson:"updatedAt" json:"updatedAt"`
}

type CodeExercise struct {
	Language    string   `bson:"language" json:"language"`
	InitialCode string   `bson:"initialCode" json:"initialCode"`
	Solution    string   `bson:"solution" json:"-"`
	Tests       []string `bson:"tests" json:"tests"`
}

// QuizQuestion is one entry of a lesson's question bank. The generated ID is
// the only identifier used when matching submitted answers.
type QuizQuestion struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Question      string             `bson:"question" json:"question"`
	Options       []string           `bson:"options" json:"options"`
	CorrectAnswer string             `bson:"correctAnswer" json:"-"`
	Points        int                `bson:"points" json:"points"`
	TimeLimit     int                `bson:"timeLimit" json:"timeLimit"`
}

func (q QuizQuestion) Validate() error {
	if len(q.Options) < 2 {
		return errors.New("question needs at least 2 options")
	}
	if q.Points < 1 {
		return errors.New("points must be at least 1")
	}
	if q.TimeLimit < 30 {
		return errors.New("time limit must be at least 30 seconds")
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return nil
		}
	}
	return errors.New("correct answer must be one of the options")
}

// QuizSubmissionRecord is one immutable entry of a lesson's submission
// history. Records are only ever appended, never rewritten.
type QuizSubmissionRecord struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Answers     []QuizAnswer       `bson:"answers" json:"answers"`
	Score       int                `bson:"score" json:"score"`
	TimeBonus   int                `bson:"timeBonus" json:"timeBonus"`
	TimeTaken   int                `bson:"timeTaken" json:"timeTaken"`
	Passed      bool               `bson:"passed" json:"passed"`
	SubmittedAt int64              `bson:"submittedAt" json:"submittedAt"`
}

type QuizAnswer struct {
	QuestionID string `bson:"questionId" json:"questionId"`
	Answer     string `bson:"answer" json:"answer"`
}

func (l Lesson) FindQuestion(questionID string) (QuizQuestion, bool) {
	for _, q := range l.Questions {
		if q.ID.Hex() == questionID {
			return q, true
		}
	}
	return QuizQuestion{}, false
}

func (l Lesson) FindCodeExercise(language string) (CodeExercise, bool) {
	for _, ex := range l.CodeExercises {
		if ex.Language == language {
			return ex, true
		}
	}
	return CodeExercise{}, false
}
