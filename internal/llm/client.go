package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/testforge-labs/testforge/internal/config"
)

// Sentinel errors for classifying a failed completion. The pipeline
// controller treats all three as fatal to the run; no retry happens here.
var (
	// ErrUnavailable means the service could not be reached at all.
	ErrUnavailable = errors.New("llm service unavailable")
	// ErrTimeout means no response arrived within the configured deadline.
	ErrTimeout = errors.New("llm request timed out")
)

// StatusError is returned when the service responds with a non-success status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm service error (status %d): %s", e.StatusCode, e.Body)
}

// Message is a chat message sent to the completion endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is a text-completion backend. Complete performs exactly one round
// trip; retry policy belongs to the caller.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	Model() string
}

// New auto-selects a backend: OpenAI-compatible endpoint (if an API key is
// set) > Bedrock (if a region is set). A generation service is required, so
// unlike optional infrastructure this returns an error when neither is
// configured.
func New(cfg *config.Config) (Client, error) {
	if cfg.LLM.APIKey != "" {
		return NewOpenAIClient(cfg.LLM), nil
	}
	if cfg.Bedrock.Region != "" {
		return NewBedrockClient(cfg.Bedrock)
	}
	return nil, fmt.Errorf("no LLM backend configured: set LLM_API_KEY or BEDROCK_REGION")
}
