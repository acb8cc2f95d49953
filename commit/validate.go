package commit

import (
	"strings"

	"github.com/birmacher/ai-commit-generator/model"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// inputPresence is checked on trimmed copies of the request inputs
type inputPresence struct {
	Changes string `validate:"required_without=GitDiff"`
	GitDiff string `validate:"required_without=Changes"`
}

// Validate enforces that at least one of changes or gitDiff is non-blank.
// Blank inputs are normalized to empty strings; commitType and context pass
// through unmodified.
func Validate(req model.GenerationRequest) (model.GenerationRequest, error) {
	presence := inputPresence{
		Changes: strings.TrimSpace(req.Changes),
		GitDiff: strings.TrimSpace(req.GitDiff),
	}
	if err := validate.Struct(presence); err != nil {
		return model.GenerationRequest{}, newError(MissingInput, MsgMissingInput, err)
	}

	if presence.Changes == "" {
		req.Changes = ""
	}
	if presence.GitDiff == "" {
		req.GitDiff = ""
	}
	return req, nil
}
