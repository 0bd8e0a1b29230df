package domain

import "context"

// Generator is the interface for the generative-model collaborator.
// Implementations hold their own credentials and sampling parameters;
// only the generated text is consumed downstream.
type Generator interface {
	// Generate returns the raw text the model produced for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}
