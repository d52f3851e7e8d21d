package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"golang.org/x/time/rate"
)

// ErrEmptyCompletion is returned when the model call succeeds but yields
// no usable text.
var ErrEmptyCompletion = errors.New("model returned empty completion")

// ChatConfig represents the configuration for a chat engine.
type ChatConfig struct {
	Model          string
	Temperature    float64
	MaxTokens      int
	APIKey         string
	BaseURL        string // OpenAI-compatible endpoint, empty for the default
	SystemTemplate string
	RateLimit      float64 // model requests per second
}

// ChatEngine is an engine that uses an LLM to generate chat responses.
type ChatEngine struct {
	config  ChatConfig
	llm     llms.Model
	limiter *rate.Limiter
}

// NewWithConfig creates a new ChatEngine with the given configuration.
func NewWithConfig(config ChatConfig) (*ChatEngine, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("model API key is required")
	}
	if config.Model == "" {
		config.Model = "gpt-4-turbo-preview"
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.SystemTemplate == "" {
		config.SystemTemplate = "You are a helpful assistant. Use clear, precise language, and limit pompous words. Use a natural tone. Prioritize substance."
	}
	if config.RateLimit == 0 {
		config.RateLimit = 1
	}

	opts := []openai.Option{
		openai.WithModel(config.Model),
		openai.WithToken(config.APIKey),
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &ChatEngine{
		config:  config,
		llm:     llm,
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}, nil
}

// Generate issues one chat completion: system persona, then the caller's
// accumulated history, then the new user prompt. The engine itself keeps
// no conversation state; continuity is the caller's job.
func (ce *ChatEngine) Generate(ctx context.Context, history []llms.MessageContent, prompt string) (string, error) {
	if err := ce.limiter.Wait(ctx); err != nil {
		return "", err
	}

	content := make([]llms.MessageContent, 0, len(history)+2)
	content = append(content, llms.TextParts(schema.ChatMessageTypeSystem, ce.config.SystemTemplate))
	content = append(content, history...)
	content = append(content, llms.TextParts(schema.ChatMessageTypeHuman, prompt))

	response, err := ce.llm.GenerateContent(ctx, content,
		llms.WithTemperature(ce.config.Temperature),
		llms.WithMaxTokens(ce.config.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("chat error: %w", err)
	}

	if response == nil || len(response.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(response.Choices[0].Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}

	return text, nil
}

// AppendExchange records one prompt/completion pair on the history so the
// next call sees the full conversation.
func AppendExchange(history []llms.MessageContent, prompt, completion string) []llms.MessageContent {
	history = append(history, llms.TextParts(schema.ChatMessageTypeHuman, prompt))
	history = append(history, llms.TextParts(schema.ChatMessageTypeAI, completion))
	return history
}
