package utils

import (
	"testing"
)

func TestSanitizeEmail(t *testing.T) {
	t.Run("with different formats", func(t *testing.T) {
		email := SanitizeEmail("\n23234@test.DE")
		if email != "23234@test.de" {
			t.Errorf("unexpected email: %s", email)
		}

		email = SanitizeEmail("  \n 23234@test.DE \n\r")
		if email != "23234@test.de" {
			t.Errorf("unexpected email: %s", email)
		}

		email = SanitizeEmail("23234@test.de")
		if email != "23234@test.de" {
			t.Errorf("unexpected email: %s", email)
		}
	})
}

func TestCheckEmailFormat(t *testing.T) {
	t.Run("with missing @", func(t *testing.T) {
		if CheckEmailFormat("t.t.com") {
			t.Error("should be false")
		}
	})
	t.Run("with missing domain", func(t *testing.T) {
		if CheckEmailFormat("t@") {
			t.Error("should be false")
		}
	})
	t.Run("with valid addresses", func(t *testing.T) {
		if !CheckEmailFormat("t@t.com") {
			t.Error("should be true")
		}
		if !CheckEmailFormat("first.last+tag@sub.example.org") {
			t.Error("should be true")
		}
	})
}

func TestCheckPasswordFormat(t *testing.T) {
	t.Run("with a too short password", func(t *testing.T) {
		if CheckPasswordFormat("1n34T6@") {
			t.Error("should be false")
		}
	})
	t.Run("with a too weak password", func(t *testing.T) {
		if CheckPasswordFormat("13342678") {
			t.Error("should be false")
		}
		if CheckPasswordFormat("11111aaaa") {
			t.Error("should be false")
		}
	})
	t.Run("with good passwords", func(t *testing.T) {
		if !CheckPasswordFormat("1n34T678") {
			t.Error("should be true")
		}
		if !CheckPasswordFormat("Tt1,.Lo%4") {
			t.Error("should be true")
		}
	})
}

func TestGenerateResetToken(t *testing.T) {
	t.Run("tokens are unique and hex encoded", func(t *testing.T) {
		t1, err := GenerateResetToken()
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		t2, err := GenerateResetToken()
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if len(t1) != 64 {
			t.Errorf("unexpected token length: %d", len(t1))
		}
		if t1 == t2 {
			t.Error("tokens should differ")
		}
	})
}

func TestHashToken(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		if HashToken("abc") != HashToken("abc") {
			t.Error("hash should be deterministic")
		}
	})
	t.Run("different inputs", func(t *testing.T) {
		if HashToken("abc") == HashToken("abd") {
			t.Error("hashes should differ")
		}
	})
}
