package aireview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDetermineTestsPassed(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{"explicit positive", "Summary: all tests passed without issues.", true},
		{"positive with different casing", "ALL TESTS PASSED", true},
		{"no verdict at all", "The code looks reasonable but could be simplified.", false},
		{"explicit negative", "The second test failed because of an off by one error.", false},
		{"positive and negative together", "Most checks ok, all tests passed except one failed test.", false},
		{"empty content", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineTestsPassed(tt.content); got != tt.expected {
				t.Errorf("DetermineTestsPassed(%q) = %v, want %v", tt.content, got, tt.expected)
			}
		})
	}
}

func TestReviewCode(t *testing.T) {
	t.Run("without initialized backend", func(t *testing.T) {
		Init("", "", "", time.Second)
		if _, err := ReviewCode("javascript", "code", nil); err != ErrModelUnavailable {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("with responding backend", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/generate" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			var req generateReq
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("unexpected payload: %v", err)
			}
			if req.Model != "test-model" {
				t.Errorf("unexpected model: %s", req.Model)
			}
			json.NewEncoder(w).Encode(map[string]string{
				"response": "Looks good, all tests passed.",
			})
		}))
		defer srv.Close()

		Init(srv.URL, "", "test-model", time.Second)
		review, err := ReviewCode("javascript", "function sum(a, b) { return a + b; }", []string{"sum(2, 2) === 4"})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			return
		}
		if !review.Passed {
			t.Error("review should be marked passed")
		}
		if review.Analysis == "" {
			t.Error("analysis should not be empty")
		}
	})

	t.Run("with backend error response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"error": "model not loaded"})
		}))
		defer srv.Close()

		Init(srv.URL, "", "test-model", time.Second)
		if _, err := ReviewCode("javascript", "code", nil); err != ErrModelUnavailable {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
