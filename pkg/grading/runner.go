package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// HTTPTestRunner executes exercise tests through an external code execution
// sandbox. The request carries its context so a per test timeout cancels the
// call; the shared http client wrapper has no context support, which is why
// this runner builds its requests directly.
type HTTPTestRunner struct {
	RootURL string
	APIKey  string
}

type runTestReq struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Test     string `json:"test"`
}

type runTestResp struct {
	Passed bool   `json:"passed"`
	Output string `json:"output"`
	Error  string `json:"error"`
}

func (r *HTTPTestRunner) RunTest(ctx context.Context, language string, code string, test string) (bool, string, error) {
	if r.RootURL == "" {
		return false, "", errors.New("code execution sandbox not configured")
	}

	payload, err := json.Marshal(runTestReq{
		Language: language,
		Code:     code,
		Test:     test,
	})
	if err != nil {
		return false, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.RootURL+"/run-test", bytes.NewBuffer(payload))
	if err != nil {
		return false, "", err
	}
	if r.APIKey != "" {
		req.Header.Set("Api-Key", r.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, "", err
	}
	defer resp.Body.Close()

	var result runTestResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, "", err
	}
	if result.Error != "" {
		return false, result.Output, errors.New(result.Error)
	}
	return result.Passed, result.Output, nil
}
