package llm

import (
	"context"
	"strings"

	"github.com/birmacher/ai-commit-generator/logger"
	"github.com/cockroachdb/errors"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiModel implements the LLM interface using the Gemini API
type GeminiModel struct {
	client *genai.Client
	settings
}

// NewGemini creates a new Gemini client. The SDK client is only built when a
// key is present so that a missing key surfaces on Prompt instead.
func NewGemini(apiKey string, opts ...Option) (*GeminiModel, error) {
	model := &GeminiModel{
		settings: settings{
			modelName: DefaultGeminiModel,
			genConfig: DefaultGenerationConfig(),
		},
	}
	applyOptions(&model.settings, opts)

	if apiKey == "" {
		logger.Warn("Gemini API key is empty, requests will fail until it is configured")
		return model, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if model.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: model.baseURL}
	}

	client, err := genai.NewClient(context.Background(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}
	model.client = client

	logger.Debugf("Gemini client initialized with model: %s, timeout: %s", model.modelName, model.apiTimeout)

	return model, nil
}

// Prompt sends a request to Gemini and returns the response
func (g *GeminiModel) Prompt(ctx context.Context, req Request) Response {
	if g.client == nil {
		return Response{Error: ErrMissingAPIKey}
	}

	if g.apiTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.apiTimeout)
		defer cancel()
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(g.genConfig.Temperature),
		TopP:              genai.Ptr(g.genConfig.TopP),
		TopK:              genai.Ptr(float32(g.genConfig.TopK)),
		MaxOutputTokens:   g.genConfig.MaxOutputTokens,
		ResponseMIMEType:  g.genConfig.ResponseMIMEType,
	}

	logger.Debugf("Sending request to Gemini with model %s, max tokens %d", g.modelName, g.genConfig.MaxOutputTokens)

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(req.UserPrompt), config)
	if err != nil {
		statusCode := 0
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			statusCode = apiErr.Code
		}
		return Response{
			Error: markUnauthorized(errors.Wrap(err, "gemini generate content"), statusCode),
		}
	}

	content := resp.Text()
	if strings.TrimSpace(content) == "" {
		return Response{Error: errors.New("gemini response contained no text")}
	}

	return Response{Content: content}
}
