// Package ai wraps the AI structuring oracle. The oracle is treated as a
// fallible collaborator: it may time out, return garbage or be absent
// entirely, and the pipeline proceeds on the fallback extraction alone.
package ai

import "context"

// Provider is one AI backend capable of turning a prompt into text.
type Provider interface {
	Name() string
	ExtractData(ctx context.Context, prompt string) (string, error)
}
