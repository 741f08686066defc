package runner

import (
	"fmt"
	"sync"
	"time"

	"github.com/mj1618/desktop-runner/internal/config"
)

// Timeouts is the nominal find timeout a retry temporarily shortens.
type Timeouts interface {
	Timeout() time.Duration
	// SetTimeout installs d and returns the previous value.
	SetTimeout(d time.Duration) time.Duration
}

// RetryBudget lowers the find timeout for the single retry of a failed step.
type RetryBudget struct {
	target  Timeouts
	reduced time.Duration
}

// NewRetryBudget returns a budget for target. reduced must be in
// (0, config.MaxReducedTimeout].
func NewRetryBudget(target Timeouts, reduced time.Duration) (*RetryBudget, error) {
	if reduced <= 0 || reduced > config.MaxReducedTimeout {
		return nil, fmt.Errorf("reduced timeout must be in (0, %s], got %s", config.MaxReducedTimeout, reduced)
	}
	return &RetryBudget{target: target, reduced: reduced}, nil
}

// Nominal returns the timeout currently in force.
func (b *RetryBudget) Nominal() time.Duration { return b.target.Timeout() }

// Reduced returns the retry timeout.
func (b *RetryBudget) Reduced() time.Duration { return b.reduced }

// Reduce installs the reduced timeout, never raising the current one, and
// returns a func restoring the previous value. Calling restore more than once
// is a no-op.
func (b *RetryBudget) Reduce() (restore func()) {
	prev := b.target.SetTimeout(min(b.reduced, b.target.Timeout()))
	var once sync.Once
	return func() {
		once.Do(func() { b.target.SetTimeout(prev) })
	}
}
