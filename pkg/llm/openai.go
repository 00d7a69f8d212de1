package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultParallelTimeout = 30 * time.Second

// OpenAIClient invokes an OpenAI-compatible chat completion API across an
// ordered fallback chain of model identifiers.
type OpenAIClient struct {
	client          openai.Client
	models          []string
	parallelTimeout time.Duration
	logger          *slog.Logger
}

type clientConfig struct {
	requestOptions  []option.RequestOption
	parallelTimeout time.Duration
}

// Option configures an OpenAIClient.
type Option func(*clientConfig)

// WithBaseURL points the client at an alternative OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.requestOptions = append(c.requestOptions, option.WithBaseURL(url))
	}
}

// WithParallelTimeout overrides the shared deadline of the dual-model mode.
func WithParallelTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.parallelTimeout = timeout
	}
}

// NewOpenAIClient creates a model client. The apiKey and at least one model
// identifier are required; a missing credential is a configuration error
// surfaced immediately, not at call time.
func NewOpenAIClient(apiKey string, modelChain []string, logger *slog.Logger, opts ...Option) (*OpenAIClient, error) {
	if apiKey == "" || len(modelChain) == 0 {
		return nil, ErrNotConfigured
	}

	config := &clientConfig{
		requestOptions:  []option.RequestOption{option.WithAPIKey(apiKey)},
		parallelTimeout: defaultParallelTimeout,
	}

	for _, opt := range opts {
		opt(config)
	}

	return &OpenAIClient{
		client:          openai.NewClient(config.requestOptions...),
		models:          modelChain,
		parallelTimeout: config.parallelTimeout,
		logger:          logger.With("module", "llm"),
	}, nil
}

// Generate runs one generation through the fallback chain.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	return TryInOrder(ctx, c.models, func(ctx context.Context, model string) (string, error) {
		text, err := c.generateWith(ctx, model, req)
		if err != nil {
			c.logger.WarnContext(ctx, "Model call failed", "model", model, "error", err)
		}

		return text, err
	})
}

func (c *OpenAIClient) generateWith(ctx context.Context, model string, req Request) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: openai.Float(req.Params.Temperature),
		MaxTokens:   openai.Int(req.Params.MaxTokens),
	})
	if err != nil {
		return "", err
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return completion.Choices[0].Message.Content, nil
}

// Validate performs a minimal one-token round trip against the first model
// in the chain.
func (c *OpenAIClient) Validate(ctx context.Context) error {
	_, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.models[0]),
		Messages:  []openai.ChatCompletionMessageParamUnion{openai.UserMessage("ping")},
		MaxTokens: openai.Int(1),
	})

	return err
}

func toOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessageParamUnion {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			converted = append(converted, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			converted = append(converted, openai.AssistantMessage(msg.Content))
		default:
			converted = append(converted, openai.UserMessage(msg.Content))
		}
	}

	return converted
}
