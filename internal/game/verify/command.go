package verify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrTimeout marks a verification run that exceeded its deadline.
var ErrTimeout = errors.New("verifier timeout")

// Command runs an external verifier program. The claimed answer is appended
// as the final argument and the last non-empty stdout line is parsed as a
// boolean verdict.
type Command struct {
	command string
	args    []string
	timeout time.Duration
}

// NewCommand constructs a subprocess verifier.
//
// Precondition: command must be non-empty; timeout must be positive.
func NewCommand(command string, args []string, timeout time.Duration) *Command {
	return &Command{command: command, args: args, timeout: timeout}
}

// Verify runs the program under the configured timeout.
//
// Postcondition: Returns OutcomeSuccess or OutcomeFailed, or an error for
// timeout, non-zero exit, or unparseable output. State never leaks between
// runs; each call spawns a fresh process.
func (c *Command) Verify(ctx context.Context, claimed string) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := make([]string, 0, len(c.args)+1)
	args = append(args, c.args...)
	args = append(args, claimed)

	out, err := exec.CommandContext(ctx, c.command, args...).Output()
	if ctx.Err() == context.DeadlineExceeded {
		return OutcomeFailed, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
	}
	if err != nil {
		return OutcomeFailed, fmt.Errorf("running verifier %s: %w", c.command, err)
	}

	verdict, err := parseVerdict(string(out))
	if err != nil {
		return OutcomeFailed, err
	}
	if verdict {
		return OutcomeSuccess, nil
	}
	return OutcomeFailed, nil
}

// parseVerdict interprets the last non-empty stdout line as a boolean.
func parseVerdict(stdout string) (bool, error) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return false, errors.New("verifier produced no output")
	}
	verdict, err := strconv.ParseBool(strings.ToLower(last))
	if err != nil {
		return false, fmt.Errorf("unparseable verifier output %q: %w", last, err)
	}
	return verdict, nil
}

var _ Verifier = (*Command)(nil)
