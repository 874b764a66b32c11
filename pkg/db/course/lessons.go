package course

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (dbService *CourseDBService) CreateIndexForLessons() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionLessons().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "order", Value: 1},
				},
			},
			{
				Keys: bson.D{
					{Key: "questions._id", Value: 1},
				},
			},
		},
	)
	return err
}

func (dbService *CourseDBService) AddLesson(lesson Lesson) (string, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	lesson.ID = primitive.NilObjectID
	now := time.Now().Unix()
	lesson.CreatedAt = now
	lesson.UpdatedAt = now
	if lesson.CodeExercises == nil {
		lesson.CodeExercises = []CodeExercise{}
	}
	if lesson.Questions == nil {
		lesson.Questions = []QuizQuestion{}
	}
	if lesson.Submissions == nil {
		lesson.Submissions = []QuizSubmissionRecord{}
	}

	res, err := dbService.collectionLessons().InsertOne(ctx, lesson)
	if err != nil {
		return "", err
	}
	id := res.InsertedID.(primitive.ObjectID)
	return id.Hex(), nil
}

func (dbService *CourseDBService) GetLesson(lessonID string) (Lesson, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(lessonID)
	if err != nil {
		return Lesson{}, err
	}

	var lesson Lesson
	err = dbService.collectionLessons().FindOne(ctx, bson.M{"_id": _id}).Decode(&lesson)
	return lesson, err
}

// GetLessonsByIDs returns the referenced lessons sorted by their order field.
func (dbService *CourseDBService) GetLessonsByIDs(lessonIDs []primitive.ObjectID) ([]Lesson, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"_id": bson.M{"$in": lessonIDs}}
	opts := options.Find().SetSort(bson.M{"order": 1})

	cursor, err := dbService.collectionLessons().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	lessons := []Lesson{}
	if err := cursor.All(ctx, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

func (dbService *CourseDBService) UpdateLesson(lessonID string, update bson.M) (Lesson, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(lessonID)
	if err != nil {
		return Lesson{}, err
	}

	if setter, ok := update["$set"].(bson.M); ok {
		setter["updatedAt"] = time.Now().Unix()
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var lesson Lesson
	err = dbService.collectionLessons().FindOneAndUpdate(ctx, bson.M{"_id": _id}, update, opts).Decode(&lesson)
	return lesson, err
}

// AddQuestionsToLesson appends validated questions to the lesson's bank.
func (dbService *CourseDBService) AddQuestionsToLesson(lessonID string, questions []QuizQuestion) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(lessonID)
	if err != nil {
		return err
	}

	update := bson.M{
		"$push": bson.M{"questions": bson.M{"$each": questions}},
		"$set":  bson.M{"updatedAt": time.Now().Unix()},
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
