package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/birmacher/ai-commit-generator/logger"
	"github.com/cockroachdb/errors"
)

// AnthropicModel implements the LLM interface using Anthropic's API
type AnthropicModel struct {
	client anthropic.Client
	apiKey string
	settings
}

// NewAnthropic creates a new Anthropic client
func NewAnthropic(apiKey string, opts ...Option) (*AnthropicModel, error) {
	model := &AnthropicModel{
		apiKey: apiKey,
		settings: settings{
			modelName: string(anthropic.ModelClaude3_7SonnetLatest),
			genConfig: DefaultGenerationConfig(),
		},
	}
	applyOptions(&model.settings, opts)

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// retries are the caller's decision
		option.WithMaxRetries(0),
	}
	if model.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(model.baseURL))
	}
	model.client = anthropic.NewClient(clientOpts...)

	logger.Debugf("Anthropic client initialized with model: %s, timeout: %s", model.modelName, model.apiTimeout)

	return model, nil
}

// Prompt sends a request to Anthropic and returns the response
func (a *AnthropicModel) Prompt(ctx context.Context, req Request) Response {
	if a.apiKey == "" {
		return Response{Error: ErrMissingAPIKey}
	}

	if a.apiTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.apiTimeout)
		defer cancel()
	}

	// Anthropic has no JSON response mode, the system prompt carries that contract
	messageParams := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.modelName),
		MaxTokens:   int64(a.genConfig.MaxOutputTokens),
		Temperature: anthropic.Float(float64(a.genConfig.Temperature)),
		TopP:        anthropic.Float(float64(a.genConfig.TopP)),
		TopK:        anthropic.Int(int64(a.genConfig.TopK)),
		System: []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}

	message, err := a.client.Messages.New(ctx, messageParams)
	if err != nil {
		statusCode := 0
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			statusCode = apiErr.StatusCode
		}
		return Response{
			Error: markUnauthorized(errors.Wrap(err, "failed to create message"), statusCode),
		}
	}

	var content strings.Builder
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			content.WriteString(b.Text)
		}
	}

	if content.Len() == 0 {
		return Response{Error: errors.New("Anthropic response contained no text")}
	}

	return Response{
		Content: content.String(),
	}
}
