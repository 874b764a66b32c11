package jwthandling

import (
	"testing"
	"time"
)

func TestUserTokenRoundtrip(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		tokenStr, err := GenerateNewUserToken(time.Minute, "user-id-1", "t@t.com", "user", true, "testKey")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		claims, valid, err := ValidateUserToken(tokenStr, "testKey")
		if err != nil || !valid {
			t.Errorf("token should be valid: %v", err)
			return
		}
		if claims.Subject != "user-id-1" {
			t.Errorf("unexpected subject: %s", claims.Subject)
		}
		if claims.Email != "t@t.com" {
			t.Errorf("unexpected email: %s", claims.Email)
		}
		if !claims.EmailVerified {
			t.Error("emailVerified should be true")
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		tokenStr, err := GenerateNewUserToken(time.Minute, "user-id-1", "t@t.com", "user", false, "testKey")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		_, valid, err := ValidateUserToken(tokenStr, "otherKey")
		if err == nil && valid {
			t.Error("token should not validate with wrong key")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		tokenStr, err := GenerateNewUserToken(-time.Minute, "user-id-1", "t@t.com", "user", false, "testKey")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		_, valid, _ := ValidateUserToken(tokenStr, "testKey")
		if valid {
			t.Error("expired token should not be valid")
		}
	})
}
