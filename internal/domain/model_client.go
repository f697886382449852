package domain

import (
	"context"
	"errors"
)

// GenerationMode selects the latency/quality tradeoff for a model call.
type GenerationMode string

const (
	// ModeAnalysis uses the deep-analysis model configuration (high thinking budget).
	ModeAnalysis GenerationMode = "analysis"
	// ModeChat uses the fast chat model configuration (low thinking budget).
	ModeChat GenerationMode = "chat"
)

// ErrModelBusy marks the transient, retry-worthy class of upstream failure
// (service busy or temporarily unavailable). Everything else is permanent.
var ErrModelBusy = errors.New("model service busy")

// TokenUsage reports the token accounting of one generation.
type TokenUsage struct {
	PromptTokens   int
	ResponseTokens int
	ThinkingTokens int
	TotalTokens    int
}

// ModelResponse carries the accumulated model output and its usage metadata.
type ModelResponse struct {
	Text  string
	Usage TokenUsage
}

// ModelClient sends a prompt to the generative-AI backend. Implementations must
// wrap busy/unavailable upstream failures with ErrModelBusy so callers can
// branch their retry policy with errors.Is.
type ModelClient interface {
	Generate(ctx context.Context, prompt string, mode GenerationMode) (*ModelResponse, error)
}
