package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/birmacher/ai-commit-generator/model"
	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	generatePath    = "/api/generate"
	errorKindHeader = "X-Error-Kind"
)

// APIError is returned when the server answers with a non-2xx status
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client calls a running generate endpoint, retrying transient failures
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// New creates a Client for the server at baseURL
func New(baseURL string, config RetryConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newRetryableClient(config),
	}
}

// Generate posts req to the server and decodes the commit proposal
func (c *Client) Generate(ctx context.Context, req model.GenerationRequest) (model.CommitResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return model.CommitResult{}, errors.Wrap(err, "marshal request")
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(payload))
	if err != nil {
		return model.CommitResult{}, errors.Wrap(err, "build http request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return model.CommitResult{}, errors.Wrap(err, "call generate endpoint")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.CommitResult{}, errors.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Kind: resp.Header.Get(errorKindHeader)}
		var errResp model.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return model.CommitResult{}, apiErr
	}

	var result model.CommitResult
	if err := json.Unmarshal(body, &result); err != nil {
		return model.CommitResult{}, errors.Wrap(err, "decode response")
	}
	return result, nil
}
