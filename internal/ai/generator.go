package ai

import "context"

// Generator produces prose for a prompt. The response is opaque text, callers
// must parse it defensively.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}
