package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/birmacher/ai-commit-generator/model"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
		Timeout:      time.Second,
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(errorKindHeader, kind)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: message})
}

func TestGenerate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, generatePath, r.URL.Path)
		var req model.GenerationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "add login", req.Changes)
		assert.Equal(t, "feat", req.CommitType)

		_, _ = w.Write([]byte(`{"commitMessage":"feat(auth): add login","body":"b","alternatives":["a","b","c"]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", fastRetryConfig())
	result, err := c.Generate(context.Background(), model.GenerationRequest{Changes: "add login", CommitType: "feat"})
	require.NoError(t, err)

	assert.Equal(t, model.CommitResult{
		CommitMessage: "feat(auth): add login",
		Body:          "b",
		Alternatives:  []string{"a", "b", "c"},
	}, result)
}

func TestGenerate_RetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeError(w, http.StatusInternalServerError, "malformed_upstream_response", "Could not parse response from AI")
			return
		}
		_, _ = w.Write([]byte(`{"commitMessage":"fix: x","body":"","alternatives":[]}`))
	}))
	defer srv.Close()

	result, err := New(srv.URL, fastRetryConfig()).Generate(context.Background(), model.GenerationRequest{Changes: "x"})
	require.NoError(t, err)
	assert.Equal(t, "fix: x", result.CommitMessage)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGenerate_ReturnsLastErrorAfterRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeError(w, http.StatusInternalServerError, "upstream_failure", "quota exceeded")
	}))
	defer srv.Close()

	_, err := New(srv.URL, fastRetryConfig()).Generate(context.Background(), model.GenerationRequest{Changes: "x"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "quota exceeded", apiErr.Message)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGenerate_DoesNotRetryPermanentErrors(t *testing.T) {
	cases := []struct {
		status  int
		kind    string
		message string
	}{
		{http.StatusBadRequest, "missing_input", "Either changes description or git diff is required"},
		{http.StatusUnauthorized, "upstream_auth_failure", "Invalid API key. Please check your GEMINI_API_KEY."},
		{http.StatusInternalServerError, "missing_credential", "API key not configured. Please set GEMINI_API_KEY in your environment variables."},
	}

	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				writeError(w, tc.status, tc.kind, tc.message)
			}))
			defer srv.Close()

			_, err := New(srv.URL, fastRetryConfig()).Generate(context.Background(), model.GenerationRequest{})

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.kind, apiErr.Kind)
			assert.Equal(t, tc.message, apiErr.Message)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}
