package model

import (
	"encoding/json"
	"strings"
)

// GenerationRequest is the payload accepted by the generate endpoint.
// At least one of Changes or GitDiff must be non-blank.
type GenerationRequest struct {
	Changes    string `json:"changes,omitempty"`
	GitDiff    string `json:"gitDiff,omitempty"`
	CommitType string `json:"commitType,omitempty"`
	Context    string `json:"context,omitempty"`
}

// HasDiff reports whether the request carries a non-blank diff
func (r GenerationRequest) HasDiff() bool {
	return strings.TrimSpace(r.GitDiff) != ""
}

// CommitResult is the validated commit message proposal returned to the caller
type CommitResult struct {
	CommitMessage string   `json:"commitMessage"`
	Body          string   `json:"body"`
	Alternatives  []string `json:"alternatives"`
}

// MarshalJSON always emits alternatives as an array, never null.
func (r CommitResult) MarshalJSON() ([]byte, error) {
	type plain CommitResult
	p := plain(r)
	if p.Alternatives == nil {
		p.Alternatives = []string{}
	}
	return json.Marshal(p)
}

// String renders the result as a git commit message: subject, blank line, body.
func (r CommitResult) String() string {
	if strings.TrimSpace(r.Body) == "" {
		return r.CommitMessage
	}
	return r.CommitMessage + "\n\n" + r.Body
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}
