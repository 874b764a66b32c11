package user

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	userTypes "github.com/smirnypavel/edu-backend/pkg/user-management/types"
)

func (dbService *UserDBService) CreateIndexForUsers() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionUsers().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "account.email", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{
					{Key: "account.resetPasswordToken", Value: 1},
				},
			},
			{
				Keys: bson.D{
					{Key: "timestamps.createdAt", Value: 1},
				},
			},
			{
				Keys: bson.D{
					{Key: "enrolledCourses.courseId", Value: 1},
				},
			},
		},
	)
	return err
}

func (dbService *UserDBService) AddUser(user userTypes.User) (string, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	user.ID = primitive.NilObjectID
	res, err := dbService.collectionUsers().InsertOne(ctx, user)
	if err != nil {
		return "", err
	}
	id := res.InsertedID.(primitive.ObjectID)
	return id.Hex(), nil
}

func (dbService *UserDBService) GetUser(userID string) (userTypes.User, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return userTypes.User{}, err
	}

	var user userTypes.User
	err = dbService.collectionUsers().FindOne(ctx, bson.M{"_id": _id}).Decode(&user)
	return user, err
}

func (dbService *UserDBService) GetUserByEmail(email string) (userTypes.User, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"account.email": email}
	var user userTypes.User
	err := dbService.collectionUsers().FindOne(ctx, filter).Decode(&user)
	return user, err
}

// GetUserByResetToken matches the hashed reset token and a still valid expiry
// in a single query.
func (dbService *UserDBService) GetUserByResetToken(tokenHash string) (userTypes.User, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"account.resetPasswordToken":   tokenHash,
		"account.resetPasswordExpires": bson.M{"$gt": time.Now().Unix()},
	}
	var user userTypes.User
	err := dbService.collectionUsers().FindOne(ctx, filter).Decode(&user)
	return user, err
}

func (dbService *UserDBService) ReplaceUser(user userTypes.User) (userTypes.User, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	user.Timestamps.UpdatedAt = time.Now().Unix()

	filter := bson.M{"_id": user.ID}
	res, err := dbService.collectionUsers().ReplaceOne(ctx, filter, user)
	if err != nil {
		return user, err
	}
	if res.MatchedCount < 1 {
		return user, errors.New("user not found")
	}
	return user, nil
}

func (dbService *UserDBService) UpdateUser(userID string, update bson.M) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	res, err := dbService.collectionUsers().UpdateOne(ctx, bson.M{"_id": _id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return errors.New("user not found")
	}
	return nil
}

// UpdateLoginAttempts persists the failed attempt counter and lockout state.
// A zero lockUntil removes the lock field from the document.
func (dbService *UserDBService) UpdateLoginAttempts(userID string, attempts int, lockUntil int64) error {
	update := bson.M{
		"$set": bson.M{
			"account.loginAttempts": attempts,
			"timestamps.updatedAt":  time.Now().Unix(),
		},
	}
	if lockUntil > 0 {
		update["$set"].(bson.M)["account.lockUntil"] = lockUntil
	} else {
		update["$unset"] = bson.M{"account.lockUntil": ""}
	}
	return dbService.UpdateUser(userID, update)
}

// SetPasswordResetToken stores the hashed token plus expiry on the account.
func (dbService *UserDBService) SetPasswordResetToken(userID string, tokenHash string, expiresAt int64) error {
	return dbService.UpdateUser(userID, bson.M{
		"$set": bson.M{
			"account.resetPasswordToken":   tokenHash,
			"account.resetPasswordExpires": expiresAt,
			"timestamps.updatedAt":         time.Now().Unix(),
		},
	})
}

// UpdateAccountPassword writes the new password hash and clears the reset
// token fields in the same update.
func (dbService *UserDBService) UpdateAccountPassword(userID string, newHash string) error {
	now := time.Now().Unix()
	return dbService.UpdateUser(userID, bson.M{
		"$set": bson.M{
			"account.password":              newHash,
			"timestamps.lastPasswordChange": now,
			"timestamps.updatedAt":          now,
		},
		"$unset": bson.M{
			"account.resetPasswordToken":   "",
			"account.resetPasswordExpires": "",
		},
	})
}

func (dbService *UserDBService) CountRecentlyCreatedUsers(interval int64) (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"timestamps.createdAt": bson.M{"$gt": time.Now().Unix() - interval}}
	return dbService.collectionUsers().CountDocuments(ctx, filter)
}

// DeleteUnverifiedUsers removes password accounts that never confirmed their
// email address. Provider accounts are verified on creation and never match.
func (dbService *UserDBService) DeleteUnverifiedUsers(createdBefore int64) (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"account.emailVerified": false,
		"account.authType":      userTypes.AUTH_TYPE_PASSWORD,
		"timestamps.createdAt":  bson.M{"$lt": createdBefore},
	}
	res, err := dbService.collectionUsers().DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ClearExpiredResetTokens removes stale reset token fields. Expired tokens
// can never match a reset query, this only keeps the documents tidy.
func (dbService *UserDBService) ClearExpiredResetTokens() (int64, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"account.resetPasswordToken":   bson.M{"$exists": true, "$ne": ""},
		"account.resetPasswordExpires": bson.M{"$lt": time.Now().Unix()},
	}
	update := bson.M{"$unset": bson.M{
		"account.resetPasswordToken":   "",
		"account.resetPasswordExpires": "",
	}}
	res, err := dbService.collectionUsers().UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
