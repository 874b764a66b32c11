package aireview

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	httpclient "github.com/smirnypavel/edu-backend/pkg/http-client"
)

var (
	modelAPIClient *httpclient.ClientConfig
	modelName      string
)

var ErrModelUnavailable = errors.New("language model backend unavailable")

func Init(rootURL string, apiKey string, model string, timeout time.Duration) {
	modelAPIClient = &httpclient.ClientConfig{
		RootURL: rootURL,
		APIKey:  apiKey,
		Timeout: timeout,
	}
	modelName = model
}

type generateReq struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type CodeReview struct {
	Analysis string `json:"analysis"`
	Passed   bool   `json:"passed"`
}

func runCompletion(prompt string) (string, error) {
	if modelAPIClient == nil || modelAPIClient.RootURL == "" {
		return "", ErrModelUnavailable
	}

	resp, err := modelAPIClient.RunHTTPcall("/api/generate", generateReq{
		Model:  modelName,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		slog.Error("model completion call failed", slog.String("error", err.Error()))
		return "", ErrModelUnavailable
	}
	if errMsg, hasError := resp["error"]; hasError {
		slog.Error("model backend returned error", slog.Any("error", errMsg))
		return "", ErrModelUnavailable
	}
	response, ok := resp["response"].(string)
	if !ok {
		return "", ErrModelUnavailable
	}
	return response, nil
}

// ReviewCode asks the language model for feedback on submitted exercise
// code. The pass verdict is heuristic, derived from indicator phrases in the
// analysis text, and is advisory only. Actual grading runs the tests.
func ReviewCode(language string, code string, tests []string) (*CodeReview, error) {
	analysis, err := runCompletion(codeReviewPrompt(language, code, tests))
	if err != nil {
		return nil, err
	}
	return &CodeReview{
		Analysis: analysis,
		Passed:   DetermineTestsPassed(analysis),
	}, nil
}

// GenerateHint produces a solution hint for the learner without revealing a
// full solution.
func GenerateHint(language string, code string, difficulty string) (string, error) {
	return runCompletion(hintPrompt(language, code, difficulty))
}

// GenerateQuestions drafts quiz questions from lesson content. The output is
// raw model text for an author to review, it is never stored directly.
func GenerateQuestions(lessonContent string, difficulty string, numberOfQuestions int) (string, error) {
	return runCompletion(questionGenerationPrompt(lessonContent, difficulty, numberOfQuestions))
}

var positiveIndicators = []string{
	"all tests passed",
	"all tests pass",
	"every test passed",
	"all checks passed",
}

var negativeIndicators = []string{
	"test failed",
	"tests failed",
	"failing test",
	"failed test",
	"tests do not pass",
}

// DetermineTestsPassed scans an analysis text for pass and fail indicator
// phrases. Only an explicit positive with no negative counts as passed.
func DetermineTestsPassed(analysisContent string) bool {
	lowerContent := strings.ToLower(analysisContent)

	hasPositive := false
	for _, indicator := range positiveIndicators {
		if strings.Contains(lowerContent, indicator) {
			hasPositive = true
			break
		}
	}
	for _, indicator := range negativeIndicators {
		if strings.Contains(lowerContent, indicator) {
			return false
		}
	}
	return hasPositive
}
