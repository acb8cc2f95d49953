package commit

import (
	"context"
	"fmt"
	"strings"

	"github.com/birmacher/ai-commit-generator/llm"
	"github.com/birmacher/ai-commit-generator/logger"
	"github.com/birmacher/ai-commit-generator/model"
	"github.com/birmacher/ai-commit-generator/prompt"
	"github.com/cockroachdb/errors"
)

// Service runs the validate, prompt, generate, parse pipeline. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	client llm.LLM
	keyEnv string
}

// NewService creates a Service around client. keyEnv names the environment
// variable holding the credential and is only used in error messages.
func NewService(client llm.LLM, keyEnv string) *Service {
	return &Service{client: client, keyEnv: keyEnv}
}

// Generate produces a commit message proposal for req. Errors are always
// *GenerationError.
func (s *Service) Generate(ctx context.Context, req model.GenerationRequest) (model.CommitResult, error) {
	log := logger.FromContext(ctx)

	input, err := Validate(req)
	if err != nil {
		log.Infow("Rejected generation request", "kind", KindOf(err).String())
		return model.CommitResult{}, err
	}

	llmReq := llm.Request{
		SystemPrompt: prompt.GetSystemPrompt(),
		UserPrompt:   prompt.GetCommitPrompt(input),
	}

	log.Debugw("Sending generation request", "has_diff", input.HasDiff(), "prompt_bytes", len(llmReq.UserPrompt))

	resp := s.client.Prompt(ctx, llmReq)
	if resp.Error != nil {
		gerr := s.classify(resp.Error)
		log.Errorw("Error generating commit message", "kind", gerr.Kind.String(), "error", resp.Error)
		return model.CommitResult{}, gerr
	}

	result, err := ParseResult(resp.Content)
	if err != nil {
		// the raw reply is the only way to diagnose a misbehaving model
		log.Errorw("Could not parse response from AI", "error", err, "raw", resp.Content)
		return model.CommitResult{}, err
	}

	if len(result.Alternatives) == 0 {
		log.Warnw("AI response contained no alternatives", "commit_message", result.CommitMessage)
	}

	return result, nil
}

func (s *Service) classify(err error) *GenerationError {
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		return newError(MissingCredential,
			fmt.Sprintf("API key not configured. Please set %s in your environment variables.", s.keyEnv), err)
	case errors.Is(err, llm.ErrUnauthorized):
		return newError(UpstreamAuthFailure,
			fmt.Sprintf("Invalid API key. Please check your %s.", s.keyEnv), err)
	case errors.Is(err, context.DeadlineExceeded):
		return newError(UpstreamFailure, MsgUpstreamTimeout, err)
	default:
		message := strings.TrimSpace(errors.UnwrapAll(err).Error())
		if message == "" {
			message = MsgUpstreamDefault
		}
		return newError(UpstreamFailure, message, err)
	}
}
