package commit

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/birmacher/ai-commit-generator/llm"
	"github.com/birmacher/ai-commit-generator/logger"
	"github.com/birmacher/ai-commit-generator/model"
	"github.com/birmacher/ai-commit-generator/prompt"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeLLM records every request and replies with a canned response
type fakeLLM struct {
	mu       sync.Mutex
	requests []llm.Request
	response llm.Response
}

func (f *fakeLLM) Prompt(_ context.Context, req llm.Request) llm.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.response
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func requireKind(t *testing.T, err error, kind Kind) *GenerationError {
	t.Helper()
	require.Error(t, err)
	var gerr *GenerationError
	require.True(t, errors.As(err, &gerr), "expected *GenerationError, got %T", err)
	require.Equal(t, kind, gerr.Kind, gerr.Error())
	return gerr
}

func TestGenerate_BlankInputNeverCallsUpstream(t *testing.T) {
	fake := &fakeLLM{response: llm.Response{Content: cleanReply}}
	service := NewService(fake, "GEMINI_API_KEY")

	for _, req := range []model.GenerationRequest{{}, {Changes: " ", GitDiff: "\n"}} {
		_, err := service.Generate(context.Background(), req)
		gerr := requireKind(t, err, MissingInput)
		assert.Equal(t, MsgMissingInput, gerr.Message)
	}
	assert.Equal(t, 0, fake.calls())
}

func TestGenerate_ExactlyOneUpstreamCall(t *testing.T) {
	fake := &fakeLLM{response: llm.Response{Content: cleanReply}}
	service := NewService(fake, "GEMINI_API_KEY")

	req := model.GenerationRequest{GitDiff: "diff --git a/x b/x\n+console.log('x')"}
	result, err := service.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "feat(x): add logging", result.CommitMessage)
	assert.Equal(t, []string{"chore: add log", "feat: log x", "debug: add console log"}, result.Alternatives)
	require.Equal(t, 1, fake.calls())
	assert.Equal(t, prompt.GetSystemPrompt(), fake.requests[0].SystemPrompt)
	assert.Equal(t, prompt.GetCommitPrompt(req), fake.requests[0].UserPrompt)
}

func TestGenerate_FailedUpstreamIsNotRetried(t *testing.T) {
	fake := &fakeLLM{response: llm.Response{Error: errors.New("quota exceeded")}}
	service := NewService(fake, "GEMINI_API_KEY")

	_, err := service.Generate(context.Background(), model.GenerationRequest{Changes: "x"})
	gerr := requireKind(t, err, UpstreamFailure)
	assert.Equal(t, "quota exceeded", gerr.Message)
	assert.Equal(t, 500, gerr.StatusCode())
	assert.Equal(t, 1, fake.calls())
}

func TestGenerate_MissingCredential(t *testing.T) {
	client, err := llm.NewLLM(llm.ProviderGemini, "")
	require.NoError(t, err)
	service := NewService(client, "GEMINI_API_KEY")

	_, err = service.Generate(context.Background(), model.GenerationRequest{Changes: "x"})
	gerr := requireKind(t, err, MissingCredential)
	assert.Equal(t, "API key not configured. Please set GEMINI_API_KEY in your environment variables.", gerr.Message)
	assert.Equal(t, 500, gerr.StatusCode())
}

func TestGenerate_UnauthorizedUpstream(t *testing.T) {
	rejected := errors.Mark(errors.New("401 unauthorized"), llm.ErrUnauthorized)
	service := NewService(&fakeLLM{response: llm.Response{Error: rejected}}, "OPENAI_API_KEY")

	_, err := service.Generate(context.Background(), model.GenerationRequest{Changes: "x"})
	gerr := requireKind(t, err, UpstreamAuthFailure)
	assert.Equal(t, "Invalid API key. Please check your OPENAI_API_KEY.", gerr.Message)
	assert.Equal(t, 401, gerr.StatusCode())
}

func TestGenerate_TimeoutIsUpstreamFailure(t *testing.T) {
	timeout := errors.Wrap(context.DeadlineExceeded, "gemini generate content")
	service := NewService(&fakeLLM{response: llm.Response{Error: timeout}}, "GEMINI_API_KEY")

	_, err := service.Generate(context.Background(), model.GenerationRequest{Changes: "x"})
	gerr := requireKind(t, err, UpstreamFailure)
	assert.Equal(t, MsgUpstreamTimeout, gerr.Message)
}

func TestGenerate_MalformedResponseLogsRawText(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := logger.Replace(zap.New(core))
	defer restore()

	raw := "I cannot help with that."
	service := NewService(&fakeLLM{response: llm.Response{Content: raw}}, "GEMINI_API_KEY")

	_, err := service.Generate(context.Background(), model.GenerationRequest{Changes: "x"})
	gerr := requireKind(t, err, MalformedUpstreamResponse)
	assert.Equal(t, MsgNoJSON, gerr.Message)

	entries := logs.FilterMessage("Could not parse response from AI").All()
	require.Len(t, entries, 1)
	assert.Equal(t, raw, entries[0].ContextMap()["raw"])
}

func TestGenerate_EmptyAlternativesIsSuccessWithWarning(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := logger.Replace(zap.New(core))
	defer restore()

	raw := "```json\n{\"commitMessage\":\"fix(a): x\",\"body\":\"\",\"alternatives\":[]}\n```"
	service := NewService(&fakeLLM{response: llm.Response{Content: raw}}, "GEMINI_API_KEY")

	result, err := service.Generate(context.Background(), model.GenerationRequest{Changes: "x"})
	require.NoError(t, err)
	assert.Equal(t, "fix(a): x", result.CommitMessage)
	assert.Empty(t, result.Alternatives)
	assert.Equal(t, 1, logs.FilterMessage("AI response contained no alternatives").Len())
}

func TestGenerate_ConcurrentRequests(t *testing.T) {
	fake := &fakeLLM{response: llm.Response{Content: cleanReply}}
	service := NewService(fake, "GEMINI_API_KEY")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := service.Generate(context.Background(), model.GenerationRequest{Changes: strings.Repeat("x", i+1)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, fake.calls())
}
