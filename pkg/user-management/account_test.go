package usermanagement

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/smirnypavel/edu-backend/pkg/user-management/pwhash"
	userTypes "github.com/smirnypavel/edu-backend/pkg/user-management/types"
	umUtils "github.com/smirnypavel/edu-backend/pkg/user-management/utils"
)

type userDBMock struct {
	users map[string]*userTypes.User
}

func newUserDBMock() *userDBMock {
	return &userDBMock{users: map[string]*userTypes.User{}}
}

func (m *userDBMock) addTestUser(user userTypes.User) string {
	id, _ := m.AddUser(user)
	return id
}

func (m *userDBMock) GetUser(userID string) (userTypes.User, error) {
	user, ok := m.users[userID]
	if !ok {
		return userTypes.User{}, mongo.ErrNoDocuments
	}
	return *user, nil
}

func (m *userDBMock) GetUserByEmail(email string) (userTypes.User, error) {
	for _, user := range m.users {
		if user.Account.Email == email {
			return *user, nil
		}
	}
	return userTypes.User{}, mongo.ErrNoDocuments
}

func (m *userDBMock) GetUserByResetToken(tokenHash string) (userTypes.User, error) {
	now := time.Now().Unix()
	for _, user := range m.users {
		if user.Account.ResetPasswordToken == tokenHash && user.Account.ResetPasswordExpires > now {
			return *user, nil
		}
	}
	return userTypes.User{}, mongo.ErrNoDocuments
}

func (m *userDBMock) AddUser(user userTypes.User) (string, error) {
	user.ID = primitive.NewObjectID()
	m.users[user.ID.Hex()] = &user
	return user.ID.Hex(), nil
}

func (m *userDBMock) UpdateUser(userID string, update bson.M) error {
	user, ok := m.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if set, ok := update["$set"].(bson.M); ok {
		if v, ok := set["account.loginAttempts"].(int); ok {
			user.Account.LoginAttempts = v
		}
		if v, ok := set["account.emailVerified"].(bool); ok {
			user.Account.EmailVerified = v
		}
		if v, ok := set["account.googleId"].(string); ok {
			user.Account.GoogleID = v
		}
		if v, ok := set["timestamps.lastLogin"].(int64); ok {
			user.Timestamps.LastLogin = v
		}
	}
	if unset, ok := update["$unset"].(bson.M); ok {
		if _, ok := unset["account.lockUntil"]; ok {
			user.Account.LockUntil = 0
		}
	}
	return nil
}

func (m *userDBMock) UpdateLoginAttempts(userID string, attempts int, lockUntil int64) error {
	user, ok := m.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.Account.LoginAttempts = attempts
	user.Account.LockUntil = lockUntil
	return nil
}

func (m *userDBMock) SetPasswordResetToken(userID string, tokenHash string, expiresAt int64) error {
	user, ok := m.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.Account.ResetPasswordToken = tokenHash
	user.Account.ResetPasswordExpires = expiresAt
	return nil
}

func (m *userDBMock) UpdateAccountPassword(userID string, newHash string) error {
	user, ok := m.users[userID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	user.Account.Password = newHash
	user.Account.ResetPasswordToken = ""
	user.Account.ResetPasswordExpires = 0
	user.Timestamps.LastPasswordChange = time.Now().Unix()
	return nil
}

func mockUserWithPassword(email string, password string) userTypes.User {
	hash, _ := pwhash.HashPassword(password)
	return userTypes.User{
		Account: userTypes.Account{
			Email:    email,
			Password: hash,
			AuthType: userTypes.AUTH_TYPE_PASSWORD,
		},
		Role: userTypes.ROLE_USER,
	}
}

func TestAuthenticate(t *testing.T) {
	mock := newUserDBMock()
	Init(mock, "testSignKey", time.Hour)

	password := "SuperSecurePassword123!$"
	userID := mock.addTestUser(mockUserWithPassword("test-login@test.com", password))

	t.Run("with unknown email", func(t *testing.T) {
		_, err := Authenticate("nobody@test.com", password)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("with wrong password", func(t *testing.T) {
		_, err := Authenticate("test-login@test.com", "wrong-password")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("unexpected error: %v", err)
		}
		if mock.users[userID].Account.LoginAttempts != 1 {
			t.Errorf("unexpected attempt count: %d", mock.users[userID].Account.LoginAttempts)
		}
	})

	t.Run("account locks after repeated failures", func(t *testing.T) {
		for i := 0; i < MAX_LOGIN_ATTEMPTS-1; i++ {
			Authenticate("test-login@test.com", "wrong-password")
		}
		if mock.users[userID].Account.LoginAttempts != MAX_LOGIN_ATTEMPTS {
			t.Errorf("unexpected attempt count: %d", mock.users[userID].Account.LoginAttempts)
		}
		if mock.users[userID].Account.LockUntil <= time.Now().Unix() {
			t.Errorf("account should be locked, lockUntil is %d", mock.users[userID].Account.LockUntil)
		}
	})

	t.Run("locked account rejects correct password", func(t *testing.T) {
		_, err := Authenticate("test-login@test.com", password)
		if !errors.Is(err, ErrAccountLocked) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("expired lock allows login again", func(t *testing.T) {
		mock.users[userID].Account.LockUntil = time.Now().Add(-time.Minute).Unix()

		resp, err := Authenticate("test-login@test.com", password)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if resp.AccessToken == "" {
			t.Error("token should not be empty")
		}
		if mock.users[userID].Account.LoginAttempts != 0 {
			t.Errorf("attempt counter should be reset, got %d", mock.users[userID].Account.LoginAttempts)
		}
		if mock.users[userID].Account.LockUntil != 0 {
			t.Errorf("lock should be cleared, got %d", mock.users[userID].Account.LockUntil)
		}
	})

	t.Run("with normalized email casing", func(t *testing.T) {
		_, err := Authenticate("TEST-Login@test.com ", password)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestRegister(t *testing.T) {
	mock := newUserDBMock()
	Init(mock, "testSignKey", time.Hour)

	t.Run("with new email", func(t *testing.T) {
		sentToken := make(chan string, 1)
		resp, err := Register("newuser@test.com", "SuperSecurePassword123!$", "New", "User", func(email string, token string) error {
			sentToken <- token
			return nil
		})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if resp.AccessToken == "" {
			t.Error("token should not be empty")
		}

		user, err := mock.GetUserByEmail("newuser@test.com")
		if err != nil {
			t.Errorf("user should be persisted: %v", err)
			return
		}
		if user.Account.Password == "SuperSecurePassword123!$" {
			t.Error("password should not be stored in plaintext")
		}
		if user.Account.EmailVerified {
			t.Error("email should not be verified yet")
		}

		select {
		case token := <-sentToken:
			if token == "" {
				t.Error("verification token should not be empty")
			}
		case <-time.After(time.Second):
			t.Error("verification email was never sent")
		}
	})

	t.Run("with existing email", func(t *testing.T) {
		_, err := Register("newuser@test.com", "SuperSecurePassword123!$", "New", "User", nil)
		if !errors.Is(err, ErrAccountExists) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestPasswordResetFlow(t *testing.T) {
	mock := newUserDBMock()
	Init(mock, "testSignKey", time.Hour)

	userID := mock.addTestUser(mockUserWithPassword("reset@test.com", "OldPassword123!$"))

	t.Run("initiate with unknown email", func(t *testing.T) {
		err := InitiatePasswordReset("nobody@test.com", nil)
		if !errors.Is(err, ErrAccountNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	var plaintextToken string
	t.Run("initiate stores only the token hash", func(t *testing.T) {
		sentToken := make(chan string, 1)
		err := InitiatePasswordReset("reset@test.com", func(email string, token string) error {
			sentToken <- token
			return nil
		})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}

		select {
		case plaintextToken = <-sentToken:
		case <-time.After(time.Second):
			t.Fatal("reset email was never sent")
		}

		stored := mock.users[userID].Account.ResetPasswordToken
		if stored == plaintextToken {
			t.Error("plaintext token should not be stored")
		}
		if stored != umUtils.HashToken(plaintextToken) {
			t.Error("stored value should be the token hash")
		}
		if mock.users[userID].Account.ResetPasswordExpires <= time.Now().Unix() {
			t.Error("token expiry should be in the future")
		}
	})

	t.Run("complete with wrong token", func(t *testing.T) {
		_, err := CompletePasswordReset("not-the-token", "NewPassword123!$")
		if !errors.Is(err, ErrInvalidOrExpiredToken) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("complete with valid token", func(t *testing.T) {
		email, err := CompletePasswordReset(plaintextToken, "NewPassword123!$")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if email != "reset@test.com" {
			t.Errorf("unexpected email: %s", email)
		}

		if _, err := Authenticate("reset@test.com", "NewPassword123!$"); err != nil {
			t.Errorf("login with new password failed: %v", err)
		}
	})

	t.Run("token cannot be used twice", func(t *testing.T) {
		_, err := CompletePasswordReset(plaintextToken, "AnotherPassword123!$")
		if !errors.Is(err, ErrInvalidOrExpiredToken) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		sentToken := make(chan string, 1)
		err := InitiatePasswordReset("reset@test.com", func(email string, token string) error {
			sentToken <- token
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var token string
		select {
		case token = <-sentToken:
		case <-time.After(time.Second):
			t.Fatal("reset email was never sent")
		}

		mock.users[userID].Account.ResetPasswordExpires = time.Now().Add(-time.Minute).Unix()

		_, err = CompletePasswordReset(token, "NewPassword123!$")
		if !errors.Is(err, ErrInvalidOrExpiredToken) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestLoginWithGoogle(t *testing.T) {
	mock := newUserDBMock()
	Init(mock, "testSignKey", time.Hour)

	t.Run("first login creates the account", func(t *testing.T) {
		resp, err := LoginWithGoogle("google@test.com", "google-id-1", "Google", "User")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if resp.AccessToken == "" {
			t.Error("token should not be empty")
		}

		user, err := mock.GetUserByEmail("google@test.com")
		if err != nil {
			t.Errorf("user should be persisted: %v", err)
			return
		}
		if user.Account.AuthType != userTypes.AUTH_TYPE_GOOGLE {
			t.Errorf("unexpected auth type: %s", user.Account.AuthType)
		}
		if !user.Account.EmailVerified {
			t.Error("provider verified email should be marked verified")
		}
	})

	t.Run("repeated login reuses the account", func(t *testing.T) {
		_, err := LoginWithGoogle("google@test.com", "google-id-1", "Google", "User")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(mock.users) != 1 {
			t.Errorf("unexpected user count: %d", len(mock.users))
		}
	})
}

func TestVerifyEmail(t *testing.T) {
	mock := newUserDBMock()
	Init(mock, "testSignKey", time.Hour)

	sentToken := make(chan string, 1)
	_, err := Register("verify@test.com", "SuperSecurePassword123!$", "Veri", "Fy", func(email string, token string) error {
		sentToken <- token
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var token string
	select {
	case token = <-sentToken:
	case <-time.After(time.Second):
		t.Fatal("verification email was never sent")
	}

	t.Run("with invalid token", func(t *testing.T) {
		err := VerifyEmail("not.a.token")
		if !errors.Is(err, ErrInvalidOrExpiredToken) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("with valid token", func(t *testing.T) {
		if err := VerifyEmail(token); err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		user, _ := mock.GetUserByEmail("verify@test.com")
		if !user.Account.EmailVerified {
			t.Error("email should be verified")
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		if err := VerifyEmail(token); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
