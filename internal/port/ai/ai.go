// Package ai defines the capability interfaces for external model inference.
package ai

import "context"

// Completer generates a short text completion for a natural-language prompt.
// Implementations are latency-bound and fallible; callers degrade to
// documented defaults on error rather than failing the operation.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Classifier assigns a single category label to a piece of task text.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}
