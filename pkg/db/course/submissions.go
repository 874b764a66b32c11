package course

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AddQuizSubmission appends one graded result to the lesson's submission
// history. History entries are append-only; prior records are never touched.
func (dbService *CourseDBService) AddQuizSubmission(lessonID string, record QuizSubmissionRecord) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(lessonID)
	if err != nil {
		return err
	}

	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	if record.SubmittedAt == 0 {
		record.SubmittedAt = time.Now().Unix()
	}

	update := bson.M{
		"$push": bson.M{"quizSubmissions": record},
	}
	res, err := dbService.collectionLessons().UpdateOne(ctx, bson.M{"_id": _id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// GetQuizSubmissionsForUser collects the user's graded attempts across the
// given lessons, newest first.
func (dbService *CourseDBService) GetQuizSubmissionsForUser(lessonIDs []primitive.ObjectID, userID primitive.ObjectID) ([]QuizSubmissionRecord, error) {
	lessons, err := dbService.GetLessonsByIDs(lessonIDs)
	if err != nil {
		return nil, err
	}

	records := []QuizSubmissionRecord{}
	for _, lesson := range lessons {
		for _, rec := range lesson.Submissions {
			if rec.UserID == userID {
				records = append(records, rec)
			}
		}
	}
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if records[j].SubmittedAt > records[i].SubmittedAt {
				records[i], records[j] = records[j], records[i]
			}
		}
	}
	return records, nil
}
