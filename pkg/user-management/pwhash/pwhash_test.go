package pwhash

import (
	"strings"
	"testing"
)

func TestHashAndComparePassword(t *testing.T) {
	t.Run("matching password", func(t *testing.T) {
		hash, err := HashPassword("Tt1,.Lo%4superSecret")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if !strings.HasPrefix(hash, "$2a$") {
			t.Errorf("unexpected hash format: %s", hash)
		}
		match, err := ComparePasswordWithHash(hash, "Tt1,.Lo%4superSecret")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if !match {
			t.Error("should match")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		hash, err := HashPassword("Tt1,.Lo%4superSecret")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		match, err := ComparePasswordWithHash(hash, "wrongPassword123")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if match {
			t.Error("should not match")
		}
	})

	t.Run("malformed hash", func(t *testing.T) {
		_, err := ComparePasswordWithHash("not-a-hash", "pw")
		if err == nil {
			t.Error("should produce error")
		}
	})
}
