package cmd

import (
	"log/slog"
	"strings"

	"github.com/pipewise/pipewise/pkg/llm"
)

// NewModelClient builds the model client from a comma-separated fallback
// chain ("gpt-4o,gpt-4o-mini"). An optional base URL points the client at a
// compatible alternative endpoint.
func NewModelClient(apiKey, modelChain, baseURL string, logger *slog.Logger) (*llm.OpenAIClient, error) {
	models := make([]string, 0)

	for _, model := range strings.Split(modelChain, ",") {
		model = strings.TrimSpace(model)
		if model != "" {
			models = append(models, model)
		}
	}

	opts := make([]llm.Option, 0, 1)
	if baseURL != "" {
		opts = append(opts, llm.WithBaseURL(baseURL))
	}

	return llm.NewOpenAIClient(apiKey, models, logger, opts...)
}
