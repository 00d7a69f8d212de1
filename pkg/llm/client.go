// Package llm provides the generative model client used to drive
// configuration conversations, with an ordered fallback chain across model
// identifiers and an optional parallel dual-model mode.
package llm

import "context"

// Role identifies the author of a chat message sent to the model.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the model-facing context.
type ChatMessage struct {
	Role    Role
	Content string
}

// GenerationParams bound a single model call. Structure-producing calls use
// a low temperature; prose-producing calls a higher one.
type GenerationParams struct {
	Temperature float64
	MaxTokens   int64
}

// Request is the full context for one generation call.
type Request struct {
	Messages []ChatMessage
	Params   GenerationParams
}

// Client generates text from a prompt context. Implementations try an
// ordered list of model identifiers internally and surface a single
// aggregated failure when every candidate is exhausted.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)

	// Validate performs a minimal round trip to confirm the backing
	// credential and service are reachable. Called once at process start,
	// never per turn.
	Validate(ctx context.Context) error
}

// DualResult carries the outputs of a successful parallel dual-model call.
type DualResult struct {
	Prose      string
	Structured string
}

// DualGenerator is the optional parallel mode: a prose-framing call and a
// strict-structure call issued concurrently under a shared deadline.
type DualGenerator interface {
	GenerateDual(ctx context.Context, prose, structured Request) (DualResult, error)
}

// Default generation parameter sets.
var (
	StructuredParams = GenerationParams{Temperature: 0.2, MaxTokens: 2048}
	ProseParams      = GenerationParams{Temperature: 0.7, MaxTokens: 1024}
)
