package grading

import (
	"context"
	"log/slog"
	"time"

	courseTypes "github.com/smirnypavel/edu-backend/pkg/db/course"
)

const DEFAULT_TEST_TIMEOUT = 10 * time.Second

// TestRunner executes one test of a code exercise against submitted code.
// Implementations are expected to honor context cancellation.
type TestRunner interface {
	RunTest(ctx context.Context, language string, code string, test string) (passed bool, output string, err error)
}

// GradeCode runs every test of the exercise against the submitted code and
// aggregates the outcomes. Each test gets its own timeout; a runner error or
// timeout fails that test only and never aborts the remaining tests.
func GradeCode(ctx context.Context, runner TestRunner, exercise courseTypes.CodeExercise, code string, testTimeout time.Duration) *CodeResult {
	if testTimeout <= 0 {
		testTimeout = DEFAULT_TEST_TIMEOUT
	}

	result := CodeResult{
		MaxScore: len(exercise.Tests),
		Results:  make([]CodeTestResult, 0, len(exercise.Tests)),
	}

	for _, test := range exercise.Tests {
		testCtx, cancel := context.WithTimeout(ctx, testTimeout)
		passed, output, err := runner.RunTest(testCtx, exercise.Language, code, test)
		cancel()

		line := CodeTestResult{
			Test:   test,
			Passed: passed,
			Output: output,
		}
		if err != nil {
			line.Passed = false
			line.Error = err.Error()
			slog.Warn("code test execution failed", slog.String("language", exercise.Language), slog.String("error", err.Error()))
		}
		if line.Passed {
			result.Score++
		}
		result.Results = append(result.Results, line)
	}

	result.Passed = result.MaxScore > 0 && result.Score == result.MaxScore
	return &result
}
