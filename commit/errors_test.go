package commit

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindStatusCodes(t *testing.T) {
	assert.Equal(t, 400, MissingInput.StatusCode())
	assert.Equal(t, 400, InvalidRequest.StatusCode())
	assert.Equal(t, 500, MissingCredential.StatusCode())
	assert.Equal(t, 401, UpstreamAuthFailure.StatusCode())
	assert.Equal(t, 500, MalformedUpstreamResponse.StatusCode())
	assert.Equal(t, 500, UpstreamFailure.StatusCode())
}

func TestKindRetryable(t *testing.T) {
	assert.True(t, UpstreamFailure.Retryable())
	assert.True(t, MalformedUpstreamResponse.Retryable())
	assert.False(t, MissingInput.Retryable())
	assert.False(t, MissingCredential.Retryable())
	assert.False(t, UpstreamAuthFailure.Retryable())
}

func TestAsGenerationError(t *testing.T) {
	assert.Nil(t, AsGenerationError(nil))

	plain := errors.New("socket closed")
	gerr := AsGenerationError(plain)
	assert.Equal(t, UpstreamFailure, gerr.Kind)
	assert.True(t, errors.Is(gerr, plain))

	original := newError(MissingInput, MsgMissingInput, nil)
	wrapped := errors.Wrap(original, "handler")
	assert.Same(t, original, AsGenerationError(wrapped))
	assert.Equal(t, MissingInput, KindOf(wrapped))
	assert.Equal(t, MsgMissingInput, original.Error())
}
