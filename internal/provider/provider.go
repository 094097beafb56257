// Package provider defines the contract between the content generator and
// the text-generation backends, plus the registry backends add themselves to.
// Concrete implementations live under modules/provider and register from
// init().
package provider

import "context"

// Provider sends a single completion request to a language model.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// HealthChecker is implemented by providers that can verify their
// credentials without generating text. Used by `blogclaw config check`.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
