package client

import (
	"context"
	"net/http"
	"time"

	"github.com/birmacher/ai-commit-generator/logger"
	"github.com/hashicorp/go-retryablehttp"
)

// RetryConfig holds the caller-side retry policy for the generate endpoint
type RetryConfig struct {
	// Maximum number of retries
	RetryMax int
	// Minimum time to wait between retries
	RetryWaitMin time.Duration
	// Maximum time to wait between retries
	RetryWaitMax time.Duration
	// Timeout bounds a single attempt
	Timeout time.Duration
}

// DefaultRetryConfig returns a RetryConfig with sensible defaults
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		RetryMax:     3,
		RetryWaitMin: 1 * time.Second,
		RetryWaitMax: 5 * time.Second,
		Timeout:      90 * time.Second,
	}
}

// retryableKinds are the server error kinds for which a fresh attempt may succeed
var retryableKinds = map[string]bool{
	"upstream_failure":            true,
	"malformed_upstream_response": true,
}

// checkRetry follows the default policy but never retries a response the
// server classified as permanent (missing input, bad credential, ...).
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp != nil {
		if kind := resp.Header.Get(errorKindHeader); kind != "" && !retryableKinds[kind] {
			return false, nil
		}
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func newRetryableClient(config RetryConfig) *retryablehttp.Client {
	retryClient := retryablehttp.NewClient()

	retryClient.RetryMax = config.RetryMax
	retryClient.RetryWaitMin = config.RetryWaitMin
	retryClient.RetryWaitMax = config.RetryWaitMax
	retryClient.HTTPClient.Timeout = config.Timeout
	retryClient.CheckRetry = checkRetry
	// hand the last response back instead of a generic "giving up" error
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = zapRetryLogger{}

	logger.Debugf("Created retryable client with max retries: %d, min wait: %s, max wait: %s",
		config.RetryMax, config.RetryWaitMin, config.RetryWaitMax)

	return retryClient
}

// zapRetryLogger adapts our zap logger to retryablehttp.LeveledLogger
type zapRetryLogger struct{}

func (zapRetryLogger) Error(msg string, keysAndValues ...interface{}) {
	logger.With(keysAndValues...).Error(msg)
}

func (zapRetryLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.With(keysAndValues...).Info(msg)
}

func (zapRetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	logger.With(keysAndValues...).Debug(msg)
}

func (zapRetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	logger.With(keysAndValues...).Warn(msg)
}
