package classifier

import "context"

// Completer sends one system+user prompt pair to a reasoning service and
// returns the raw text of its answer. Implementations must request JSON output.
type Completer interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	Complete(ctx context.Context, system, prompt string) (string, error)
}
