package course

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smirnypavel/edu-backend/pkg/db"
)

// collection names
const (
	COLLECTION_NAME_COURSES = "courses"
	COLLECTION_NAME_LESSONS = "lessons"
)

type CourseDBService struct {
	DBClient     *mongo.Client
	timeout      int
	DBNamePrefix string
}

func NewCourseDBService(configs db.DBConfig) (*CourseDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)
	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	err = dbClient.Ping(ctx, nil)
	defer conCancel()

	if err != nil {
		return nil, err
	}

	cdbSc := &CourseDBService{
		DBClient:     dbClient,
		timeout:      configs.Timeout,
		DBNamePrefix: configs.DBNamePrefix,
	}

	if configs.RunIndexCreation {
		cdbSc.CreateDefaultIndexes()
	}
	return cdbSc, nil
}

func (dbService *CourseDBService) getDBName() string {
	return dbService.DBNamePrefix + "courses"
}

func (dbService *CourseDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *CourseDBService) collectionCourses() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_COURSES)
}

func (dbService *CourseDBService) collectionLessons() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_LESSONS)
}

func (dbService *CourseDBService) CreateDefaultIndexes() {
	if err := dbService.CreateIndexForCourses(); err != nil {
		slog.Error("failed to create indexes for courses", slog.String("error", err.Error()))
	}
	if err := dbService.CreateIndexForLessons(); err != nil {
		slog.Error("failed to create indexes for lessons", slog.String("error", err.Error()))
	}
}
