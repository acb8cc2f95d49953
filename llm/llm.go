package llm

import (
	"context"
	"strings"
	"time"

	"github.com/birmacher/ai-commit-generator/logger"
	"github.com/cockroachdb/errors"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var (
	// ErrMissingAPIKey is returned before any network call when no credential is configured
	ErrMissingAPIKey = errors.New("api key is not configured")
	// ErrUnauthorized marks upstream failures caused by a rejected credential
	ErrUnauthorized = errors.New("api key was rejected by the provider")
)

// OptionType defines the type of option
type OptionType string

// Available option types
const (
	ModelNameOption        OptionType = "model"
	APITimeoutOption       OptionType = "api_timeout"
	BaseURLOption          OptionType = "base_url"
	GenerationConfigOption OptionType = "generation_config"
)

// Option represents a generic configuration option for any LLM provider
type Option struct {
	Type  OptionType
	Value any
}

// WithModel creates an option to set the model name
func WithModel(model string) Option {
	return Option{
		Type:  ModelNameOption,
		Value: model,
	}
}

// WithAPITimeout creates an option to bound a single provider call
func WithAPITimeout(timeout time.Duration) Option {
	return Option{
		Type:  APITimeoutOption,
		Value: timeout,
	}
}

// WithBaseURL points the provider at a different API host
func WithBaseURL(baseURL string) Option {
	return Option{
		Type:  BaseURLOption,
		Value: baseURL,
	}
}

// WithGenerationConfig overrides the sampling parameters
func WithGenerationConfig(cfg GenerationConfig) Option {
	return Option{
		Type:  GenerationConfigOption,
		Value: cfg,
	}
}

// GenerationConfig holds the sampling parameters sent with every call
type GenerationConfig struct {
	Temperature      float32
	TopP             float32
	TopK             int32
	MaxOutputTokens  int32
	ResponseMIMEType string
}

// DefaultGenerationConfig returns the fixed parameters used for commit generation.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:      0.7,
		TopP:             0.95,
		TopK:             40,
		MaxOutputTokens:  2048,
		ResponseMIMEType: "application/json",
	}
}

// Request represents the data needed to prompt the LLM
type Request struct {
	SystemPrompt string
	UserPrompt   string
}

// Response represents the response from the LLM
type Response struct {
	Content string
	Error   error
}

// LLM defines the interface for language model prompting
type LLM interface {
	// Prompt sends exactly one request to the language model and returns its raw reply
	Prompt(ctx context.Context, req Request) Response
}

// settings collects the options shared by every provider
type settings struct {
	modelName  string
	apiTimeout time.Duration
	baseURL    string
	genConfig  GenerationConfig
}

func applyOptions(s *settings, opts []Option) {
	for _, opt := range opts {
		switch opt.Type {
		case ModelNameOption:
			if modelName, ok := opt.Value.(string); ok && modelName != "" {
				s.modelName = modelName
			}
		case APITimeoutOption:
			if timeout, ok := opt.Value.(time.Duration); ok && timeout > 0 {
				s.apiTimeout = timeout
			}
		case BaseURLOption:
			if baseURL, ok := opt.Value.(string); ok {
				s.baseURL = baseURL
			}
		case GenerationConfigOption:
			if cfg, ok := opt.Value.(GenerationConfig); ok {
				s.genConfig = cfg
			}
		}
	}
}

// APIKeyEnv returns the environment variable holding the provider's credential
func APIKeyEnv(providerName string) string {
	switch providerName {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// NewLLM creates the client for the given provider. An empty apiKey is not an
// error here; the returned client reports ErrMissingAPIKey on first use.
func NewLLM(providerName, apiKey string, opts ...Option) (LLM, error) {
	var llmClient LLM
	var err error

	options := []Option{
		WithAPITimeout(60 * time.Second),
		WithGenerationConfig(DefaultGenerationConfig()),
	}
	options = append(options, opts...)

	switch providerName {
	case ProviderGemini:
		llmClient, err = NewGemini(apiKey, options...)
	case ProviderOpenAI:
		llmClient, err = NewOpenAI(apiKey, options...)
	case ProviderAnthropic:
		llmClient, err = NewAnthropic(apiKey, options...)
	default:
		err = errors.Newf("unsupported provider: %s", providerName)
	}

	if err == nil {
		logger.Infof("Using LLM provider %s", providerName)
	}

	return llmClient, err
}

// markUnauthorized tags err with ErrUnauthorized when the status code or the
// provider's message points at a credential problem.
func markUnauthorized(err error, statusCode int) error {
	if err == nil {
		return nil
	}
	if statusCode == 401 || statusCode == 403 || mentionsAPIKey(err.Error()) {
		return errors.Mark(err, ErrUnauthorized)
	}
	return err
}

func mentionsAPIKey(msg string) bool {
	lower := strings.ToLower(msg)
	for _, needle := range []string{"api key", "api_key", "apikey", "x-api-key", "unauthenticated", "permission_denied"} {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}
