package usermanagement

import (
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	jwthandling "github.com/smirnypavel/edu-backend/pkg/jwt-handling"
	"github.com/smirnypavel/edu-backend/pkg/user-management/pwhash"
	userTypes "github.com/smirnypavel/edu-backend/pkg/user-management/types"
	umUtils "github.com/smirnypavel/edu-backend/pkg/user-management/utils"
)

const (
	MAX_LOGIN_ATTEMPTS = 5
	LOCK_DURATION      = 2 * time.Hour

	RESET_TOKEN_TTL              = time.Hour
	EMAIL_VERIFICATION_TOKEN_TTL = 24 * time.Hour
)

// Domain errors. Handlers map these to status codes with errors.Is; anything
// else coming out of this package is already logged and safe to show as a
// generic failure.
var (
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrAccountLocked         = errors.New("account temporarily locked")
	ErrAccountExists         = errors.New("account already exists")
	ErrInvalidAccountData    = errors.New("invalid account data")
	ErrRegistrationFailed    = errors.New("registration failed")
	ErrAccountNotFound       = errors.New("account not found")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrServiceUnavailable    = errors.New("service temporarily unavailable")
)

type UserDBConnector interface {
	GetUser(userID string) (userTypes.User, error)
	GetUserByEmail(email string) (userTypes.User, error)
	GetUserByResetToken(tokenHash string) (userTypes.User, error)
	AddUser(user userTypes.User) (string, error)
	UpdateUser(userID string, update bson.M) error
	UpdateLoginAttempts(userID string, attempts int, lockUntil int64) error
	SetPasswordResetToken(userID string, tokenHash string, expiresAt int64) error
	UpdateAccountPassword(userID string, newHash string) error
}

var (
	userDBService  UserDBConnector
	tokenSignKey   string
	tokenExpiresIn time.Duration
)

func Init(
	userDB UserDBConnector,
	signKey string,
	expiresIn time.Duration,
) {
	userDBService = userDB
	tokenSignKey = signKey
	tokenExpiresIn = expiresIn
}

type PublicProfile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type AuthResult struct {
	AccessToken string        `json:"accessToken"`
	ExpiresIn   float64       `json:"expiresIn"`
	User        PublicProfile `json:"user"`
}

func publicProfile(user userTypes.User) PublicProfile {
	return PublicProfile{
		ID:        user.ID.Hex(),
		Email:     user.Account.Email,
		FirstName: user.Profile.FirstName,
		LastName:  user.Profile.LastName,
	}
}

func issueSessionToken(user userTypes.User) (string, error) {
	return jwthandling.GenerateNewUserToken(
		tokenExpiresIn,
		user.ID.Hex(),
		user.Account.Email,
		user.Role,
		user.Account.EmailVerified,
		tokenSignKey,
	)
}

// Authenticate verifies the credential for the account behind email and
// returns a session token on success. Failed attempts are counted on the
// account; reaching MAX_LOGIN_ATTEMPTS locks it for LOCK_DURATION. A locked
// account short-circuits before any hash comparison. Every branch that
// changes attempt or lock state persists before returning.
//
// The read-then-write sequence is not atomic against concurrent logins for
// the same account; two parallel failures may both persist the same counter
// value. Lockout is a best-effort defense, the lost update is accepted.
func Authenticate(email string, password string) (*AuthResult, error) {
	email = umUtils.SanitizeEmail(email)

	user, err := userDBService.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		slog.Error("failed to look up account", slog.String("error", err.Error()))
		return nil, ErrServiceUnavailable
	}

	if user.IsLocked() {
		slog.Warn("login attempt on locked account", slog.String("userID", user.ID.Hex()))
		return nil, ErrAccountLocked
	}

	match, err := pwhash.ComparePasswordWithHash(user.Account.Password, password)
	if err != nil || !match {
		attempts := user.Account.LoginAttempts + 1
		var lockUntil int64
		if attempts >= MAX_LOGIN_ATTEMPTS {
			lockUntil = time.Now().Add(LOCK_DURATION).Unix()
		}
		if err := userDBService.UpdateLoginAttempts(user.ID.Hex(), attempts, lockUntil); err != nil {
			slog.Error("failed to persist login attempt", slog.String("error", err.Error()), slog.String("userID", user.ID.Hex()))
			return nil, ErrServiceUnavailable
		}
		slog.Warn("login attempt with wrong password", slog.String("userID", user.ID.Hex()), slog.Int("attempts", attempts))
		return nil, ErrInvalidCredentials
	}

	now := time.Now().Unix()
	err = userDBService.UpdateUser(user.ID.Hex(), bson.M{
		"$set": bson.M{
			"account.loginAttempts": 0,
			"timestamps.lastLogin":  now,
			"timestamps.updatedAt":  now,
		},
		"$unset": bson.M{"account.lockUntil": ""},
	})
	if err != nil {
		slog.Error("failed to reset login attempts", slog.String("error", err.Error()), slog.String("userID", user.ID.Hex()))
		return nil, ErrServiceUnavailable
	}

	token, err := issueSessionToken(user)
	if err != nil {
		slog.Error("failed to generate session token", slog.String("error", err.Error()))
		return nil, ErrServiceUnavailable
	}

	slog.Info("login successful", slog.String("userID", user.ID.Hex()))
	return &AuthResult{
		AccessToken: token,
		ExpiresIn:   tokenExpiresIn.Seconds(),
		User:        publicProfile(user),
	}, nil
}

// Register creates a password account. The verification token is handed to
// sendVerificationEmail asynchronously: notification delivery failures are
// logged but never abort an already persisted registration.
func Register(
	email string,
	password string,
	firstName string,
	lastName string,
	sendVerificationEmail func(email string, token string) error,
) (*AuthResult, error) {
	email = umUtils.SanitizeEmail(email)

	_, err := userDBService.GetUserByEmail(email)
	if err == nil {
		return nil, ErrAccountExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		slog.Error("failed to check for existing account", slog.String("error", err.Error()))
		return nil, ErrRegistrationFailed
	}

	hashedPassword, err := pwhash.HashPassword(password)
	if err != nil {
		slog.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, ErrRegistrationFailed
	}

	now := time.Now().Unix()
	newUser := userTypes.User{
		Account: userTypes.Account{
			Email:    email,
			Password: hashedPassword,
			AuthType: userTypes.AUTH_TYPE_PASSWORD,
		},
		Profile: userTypes.Profile{
			FirstName: firstName,
			LastName:  lastName,
		},
		Role:            userTypes.ROLE_USER,
		EnrolledCourses: []userTypes.EnrolledCourse{},
		Timestamps: userTypes.Timestamps{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	id, err := userDBService.AddUser(newUser)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAccountExists
		}
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			slog.Error("user record rejected by store", slog.String("error", err.Error()))
			return nil, ErrInvalidAccountData
		}
		slog.Error("failed to create user", slog.String("error", err.Error()))
		return nil, ErrRegistrationFailed
	}
	newUser.ID, _ = primitive.ObjectIDFromHex(id)

	verificationToken, err := jwthandling.GenerateNewUserToken(
		EMAIL_VERIFICATION_TOKEN_TTL,
		id,
		email,
		newUser.Role,
		false,
		tokenSignKey,
	)
	if err != nil {
		slog.Error("failed to generate verification token", slog.String("error", err.Error()))
	} else if sendVerificationEmail != nil {
		go func() {
			if err := sendVerificationEmail(email, verificationToken); err != nil {
				slog.Error("failed to send verification email", slog.String("error", err.Error()), slog.String("email", umUtils.BlurEmailAddress(email)))
			}
		}()
	}

	token, err := issueSessionToken(newUser)
	if err != nil {
		slog.Error("failed to generate session token", slog.String("error", err.Error()))
		return nil, ErrRegistrationFailed
	}

	slog.Info("registration successful", slog.String("userID", id))
	return &AuthResult{
		AccessToken: token,
		ExpiresIn:   tokenExpiresIn.Seconds(),
		User:        publicProfile(newUser),
	}, nil
}

// LoginWithGoogle creates the account on first sight of the provider
// identity; repeated logins for the same email are idempotent.
func LoginWithGoogle(email string, googleID string, firstName string, lastName string) (*AuthResult, error) {
	email = umUtils.SanitizeEmail(email)

	user, err := userDBService.GetUserByEmail(email)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			slog.Error("failed to look up account", slog.String("error", err.Error()))
			return nil, ErrServiceUnavailable
		}

		now := time.Now().Unix()
		newUser := userTypes.User{
			Account: userTypes.Account{
				Email:         email,
				GoogleID:      googleID,
				AuthType:      userTypes.AUTH_TYPE_GOOGLE,
				EmailVerified: true,
			},
			Profile: userTypes.Profile{
				FirstName: firstName,
				LastName:  lastName,
			},
			Role:            userTypes.ROLE_USER,
			EnrolledCourses: []userTypes.EnrolledCourse{},
			Timestamps: userTypes.Timestamps{
				CreatedAt: now,
				UpdatedAt: now,
			},
		}
		id, err := userDBService.AddUser(newUser)
		if err != nil {
			slog.Error("failed to create user from google profile", slog.String("error", err.Error()))
			return nil, ErrServiceUnavailable
		}
		newUser.ID, _ = primitive.ObjectIDFromHex(id)
		user = newUser
	} else if user.Account.GoogleID != googleID {
		err = userDBService.UpdateUser(user.ID.Hex(), bson.M{
			"$set": bson.M{
				"account.googleId":     googleID,
				"timestamps.updatedAt": time.Now().Unix(),
			},
		})
		if err != nil {
			slog.Error("failed to update google id", slog.String("error", err.Error()), slog.String("userID", user.ID.Hex()))
			return nil, ErrServiceUnavailable
		}
	}

	token, err := issueSessionToken(user)
	if err != nil {
		slog.Error("failed to generate session token", slog.String("error", err.Error()))
		return nil, ErrServiceUnavailable
	}

	slog.Info("google login successful", slog.String("userID", user.ID.Hex()))
	return &AuthResult{
		AccessToken: token,
		ExpiresIn:   tokenExpiresIn.Seconds(),
		User:        publicProfile(user),
	}, nil
}

// InitiatePasswordReset stores a hashed reset token with a one hour expiry
// and hands the plaintext to the notifier. The plaintext never reaches the
// store.
func InitiatePasswordReset(email string, sendResetEmail func(email string, token string) error) error {
	email = umUtils.SanitizeEmail(email)

	user, err := userDBService.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrAccountNotFound
		}
		slog.Error("failed to look up account", slog.String("error", err.Error()))
		return ErrServiceUnavailable
	}

	resetToken, err := umUtils.GenerateResetToken()
	if err != nil {
		slog.Error("failed to generate reset token", slog.String("error", err.Error()))
		return ErrServiceUnavailable
	}

	expiresAt := time.Now().Add(RESET_TOKEN_TTL).Unix()
	if err := userDBService.SetPasswordResetToken(user.ID.Hex(), umUtils.HashToken(resetToken), expiresAt); err != nil {
		slog.Error("failed to store reset token", slog.String("error", err.Error()), slog.String("userID", user.ID.Hex()))
		return ErrServiceUnavailable
	}

	if sendResetEmail != nil {
		go func() {
			if err := sendResetEmail(email, resetToken); err != nil {
				slog.Error("failed to send password reset email", slog.String("error", err.Error()), slog.String("email", umUtils.BlurEmailAddress(email)))
			}
		}()
	}

	slog.Info("password reset initiated", slog.String("userID", user.ID.Hex()))
	return nil
}

// CompletePasswordReset consumes a reset token. Token match and expiry are
// checked in a single query; the password update clears the token fields in
// the same write, so a token is usable at most once. Returns the account
// email for the change notification.
func CompletePasswordReset(token string, newPassword string) (string, error) {
	user, err := userDBService.GetUserByResetToken(umUtils.HashToken(token))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrInvalidOrExpiredToken
		}
		slog.Error("failed to look up reset token", slog.String("error", err.Error()))
		return "", ErrServiceUnavailable
	}

	hashedPassword, err := pwhash.HashPassword(newPassword)
	if err != nil {
		slog.Error("failed to hash password", slog.String("error", err.Error()))
		return "", ErrServiceUnavailable
	}

	if err := userDBService.UpdateAccountPassword(user.ID.Hex(), hashedPassword); err != nil {
		slog.Error("failed to update password", slog.String("error", err.Error()), slog.String("userID", user.ID.Hex()))
		return "", ErrServiceUnavailable
	}

	slog.Info("password reset successful", slog.String("userID", user.ID.Hex()))
	return user.Account.Email, nil
}

// VerifyEmail consumes an email verification token issued at registration.
func VerifyEmail(token string) error {
	claims, valid, err := jwthandling.ValidateUserToken(token, tokenSignKey)
	if err != nil || !valid {
		return ErrInvalidOrExpiredToken
	}

	user, err := userDBService.GetUser(claims.Subject)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidOrExpiredToken
		}
		slog.Error("failed to look up account", slog.String("error", err.Error()))
		return ErrServiceUnavailable
	}

	if user.Account.Email != claims.Email {
		return ErrInvalidOrExpiredToken
	}

	if user.Account.EmailVerified {
		return nil
	}

	err = userDBService.UpdateUser(user.ID.Hex(), bson.M{
		"$set": bson.M{
			"account.emailVerified": true,
			"timestamps.updatedAt":  time.Now().Unix(),
		},
	})
	if err != nil {
		slog.Error("failed to mark email verified", slog.String("error", err.Error()), slog.String("userID", user.ID.Hex()))
		return ErrServiceUnavailable
	}

	slog.Info("email verified", slog.String("userID", user.ID.Hex()))
	return nil
}
