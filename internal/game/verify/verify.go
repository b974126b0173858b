// Package verify judges whether a claimed answer is correct.
//
// The real verifier shells out to an external program; a coin-flip stand-in
// exists for development. Callers map every verification error to a failed
// outcome rather than dropping the result.
package verify

import (
	"context"

	"github.com/cory-johannsen/gamemaster/internal/config"
)

// Outcome is the verdict on a claimed answer.
type Outcome string

// Verdicts.
const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Verifier judges a claimed answer. Implementations must honor ctx
// cancellation and bound their own execution time.
type Verifier interface {
	Verify(ctx context.Context, claimed string) (Outcome, error)
}

// FromConfig builds the configured Verifier implementation.
//
// Precondition: cfg must have passed config validation.
func FromConfig(cfg config.VerifierConfig) Verifier {
	if cfg.Mode == "command" {
		return NewCommand(cfg.Command, cfg.Args, cfg.Timeout)
	}
	return NewCoinFlip()
}
