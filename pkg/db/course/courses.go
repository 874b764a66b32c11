package course

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (dbService *CourseDBService) CreateIndexForCourses() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionCourses().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "status", Value: 1},
				},
			},
			{
				Keys: bson.D{
					{Key: "category", Value: 1},
					{Key: "level", Value: 1},
				},
			},
			{
				Keys: bson.D{
					{Key: "title", Value: "text"},
					{Key: "description", Value: "text"},
				},
			},
		},
	)
	return err
}

func (dbService *CourseDBService) AddCourse(course Course) (string, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	course.ID = primitive.NilObjectID
	now := time.Now().Unix()
	course.CreatedAt = now
	course.UpdatedAt = now
	if course.Lessons == nil {
		course.Lessons = []primitive.ObjectID{}
	}

	res, err := dbService.collectionCourses().InsertOne(ctx, course)
	if err != nil {
		return "", err
	}
	id := res.InsertedID.(primitive.ObjectID)
	return id.Hex(), nil
}

func (dbService *CourseDBService) GetCourse(courseID string) (Course, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return Course{}, err
	}

	var course Course
	err = dbService.collectionCourses().FindOne(ctx, bson.M{"_id": _id}).Decode(&course)
	return course, err
}

func (dbService *CourseDBService) GetCoursesByStatus(status string) ([]Course, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"status": status}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})

	cursor, err := dbService.collectionCourses().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	courses := []Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// GetPublishedCoursesPartitioned splits published courses into the set the
// user is enrolled in and the remaining available ones.
func (dbService *CourseDBService) GetPublishedCoursesPartitioned(enrolledIDs []primitive.ObjectID) (enrolled []Course, available []Course, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if enrolledIDs == nil {
		enrolledIDs = []primitive.ObjectID{}
	}

	cursor, err := dbService.collectionCourses().Find(ctx, bson.M{"status": COURSE_STATUS_PUBLISHED})
	if err != nil {
		return nil, nil, err
	}
	defer cursor.Close(ctx)

	enrolled = []Course{}
	available = []Course{}
	for cursor.Next(ctx) {
		var c Course
		if err := cursor.Decode(&c); err != nil {
			return nil, nil, err
		}
		isEnrolled := false
		for _, id := range enrolledIDs {
			if id == c.ID {
				isEnrolled = true
				break
			}
		}
		if isEnrolled {
			enrolled = append(enrolled, c)
		} else {
			available = append(available, c)
		}
	}
	return enrolled, available, cursor.Err()
}

func (dbService *CourseDBService) UpdateCourse(courseID string, update bson.M) (Course, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return Course{}, err
	}

	if setter, ok := update["$set"].(bson.M); ok {
		setter["updatedAt"] = time.Now().Unix()
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var course Course
	err = dbService.collectionCourses().FindOneAndUpdate(ctx, bson.M{"_id": _id}, update, opts).Decode(&course)
	return course, err
}

// AddLessonRefToCourse appends the lesson id to the course's ordered list.
func (dbService *CourseDBService) AddLessonRefToCourse(courseID string, lessonID primitive.ObjectID) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		return err
	}

	update := bson.M{
		"$push": bson.M{"lessons": lessonID},
		"$set":  bson.M{"updatedAt": time.Now().Unix()},
	}
	res, err := dbService.collectionCourses().UpdateOne(ctx, bson.M{"_id": _id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return errors.New("course not found")
	}
	return nil
}
