package llm

import (
	"context"

	"github.com/birmacher/ai-commit-generator/logger"
	"github.com/cockroachdb/errors"
	"github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = "gpt-4.1"

// OpenAIModel implements the LLM interface using OpenAI's API
type OpenAIModel struct {
	client *openai.Client
	apiKey string
	settings
}

// NewOpenAI creates a new OpenAI client
func NewOpenAI(apiKey string, opts ...Option) (*OpenAIModel, error) {
	model := &OpenAIModel{
		apiKey: apiKey,
		settings: settings{
			modelName: DefaultOpenAIModel,
			genConfig: DefaultGenerationConfig(),
		},
	}
	applyOptions(&model.settings, opts)

	config := openai.DefaultConfig(apiKey)
	if model.baseURL != "" {
		config.BaseURL = model.baseURL
	}
	model.client = openai.NewClientWithConfig(config)

	logger.Debugf("OpenAI client initialized with model: %s, max tokens: %d, timeout: %s",
		model.modelName, model.genConfig.MaxOutputTokens, model.apiTimeout)

	return model, nil
}

// Prompt sends a request to OpenAI and returns the response
func (o *OpenAIModel) Prompt(ctx context.Context, req Request) Response {
	if o.apiKey == "" {
		return Response{Error: ErrMissingAPIKey}
	}

	if o.apiTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.apiTimeout)
		defer cancel()
	}

	chatReq := openai.ChatCompletionRequest{
		Model: o.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.UserPrompt,
			},
		},
		MaxTokens:   int(o.genConfig.MaxOutputTokens),
		Temperature: o.genConfig.Temperature,
		TopP:        o.genConfig.TopP,
	}
	// top-k has no equivalent in the chat completions API
	if o.genConfig.ResponseMIMEType == "application/json" {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	logger.Debugf("Sending request to OpenAI with model %s, max tokens %d", o.modelName, chatReq.MaxTokens)

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		statusCode := 0
		var apiErr *openai.APIError
		var reqErr *openai.RequestError
		switch {
		case errors.As(err, &apiErr):
			statusCode = apiErr.HTTPStatusCode
		case errors.As(err, &reqErr):
			statusCode = reqErr.HTTPStatusCode
		}
		return Response{
			Error: markUnauthorized(errors.Wrap(err, "failed to create chat completion"), statusCode),
		}
	}

	if len(resp.Choices) == 0 {
		return Response{
			Error: errors.New("OpenAI response contained no choices"),
		}
	}

	return Response{
		Content: resp.Choices[0].Message.Content,
	}
}
