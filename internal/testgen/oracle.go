package testgen

import (
	"context"

	"github.com/testforge-labs/testforge/internal/llm"
)

// clientOracle adapts an llm.Client to the Oracle contract.
type clientOracle struct {
	client llm.Client
}

// NewOracle wraps a completion client as a pipeline oracle.
func NewOracle(c llm.Client) Oracle {
	return &clientOracle{client: c}
}

func (o *clientOracle) Complete(ctx context.Context, req Request) (string, error) {
	return o.client.Complete(ctx, []llm.Message{
		{Role: "system", Content: req.System},
		{Role: "user", Content: req.User},
	})
}
