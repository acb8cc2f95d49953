package commit

import (
	"testing"

	"github.com/birmacher/ai-commit-generator/model"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_RequiresChangesOrDiff(t *testing.T) {
	blank := []model.GenerationRequest{
		{},
		{Changes: "   ", GitDiff: "\n\t"},
		{CommitType: "feat", Context: "only context"},
	}
	for _, req := range blank {
		_, err := Validate(req)
		require.Error(t, err)

		var gerr *GenerationError
		require.True(t, errors.As(err, &gerr))
		assert.Equal(t, MissingInput, gerr.Kind)
		assert.Equal(t, MsgMissingInput, gerr.Message)
		assert.Equal(t, 400, gerr.StatusCode())
	}
}

func TestValidate_AcceptsEitherInput(t *testing.T) {
	req, err := Validate(model.GenerationRequest{Changes: "add login"})
	require.NoError(t, err)
	assert.Equal(t, "add login", req.Changes)

	req, err = Validate(model.GenerationRequest{GitDiff: "+a"})
	require.NoError(t, err)
	assert.Equal(t, "+a", req.GitDiff)
}

func TestValidate_NormalizesBlankInputs(t *testing.T) {
	req, err := Validate(model.GenerationRequest{
		Changes:    "  ",
		GitDiff:    "diff --git a/x b/x\n",
		CommitType: " feat ",
		Context:    "  ctx",
	})
	require.NoError(t, err)

	assert.Equal(t, "", req.Changes)
	assert.Equal(t, "diff --git a/x b/x\n", req.GitDiff)
	assert.Equal(t, " feat ", req.CommitType)
	assert.Equal(t, "  ctx", req.Context)
}
