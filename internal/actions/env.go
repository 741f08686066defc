package actions

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/desktop-runner/internal/element"
	"github.com/mj1618/desktop-runner/internal/finder"
	"github.com/mj1618/desktop-runner/internal/locator"
	"github.com/mj1618/desktop-runner/internal/platform"
)

// Fixed waits used by steps that take no duration.
const (
	assertWait  = 5 * time.Second
	enableWait  = 3 * time.Second
	dragWait    = 2 * time.Second
	focusWait   = 5 * time.Second
	writePause  = 200 * time.Millisecond
	keySettle   = 100 * time.Millisecond
)

// Env is what built-in steps act through.
type Env struct {
	Finder   *finder.Finder
	Provider *platform.Provider
	Status   *Status
	Logger   *zap.Logger
	// BaseDir resolves relative paths in file steps.
	BaseDir string
}

// NewBuiltins returns a registry holding every built-in step bound to env.
func NewBuiltins(env *Env) *Registry {
	if env.Logger == nil {
		env.Logger = zap.NewNop()
	}
	if env.Status == nil {
		env.Status = &Status{}
	}
	if env.Provider == nil {
		env.Provider = &platform.Provider{}
	}
	r := NewRegistry()
	env.registerElementSteps(r)
	env.registerInputSteps(r)
	env.registerWindowSteps(r)
	env.registerContextSteps(r)
	env.registerWaitSteps(r)
	env.registerAssertSteps(r)
	return r
}

var locatorParams = []string{"locator", "param1", "param2"}

func withLocator(extra ...string) []string {
	return append(append([]string(nil), locatorParams...), extra...)
}

// parseLocator builds a Spec from the first three step arguments.
func parseLocator(args []string) (locator.Spec, error) {
	spec, err := locator.Parse(args[0], args[1], args[2])
	if err != nil {
		return locator.Spec{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return spec, nil
}

// find resolves the locator in args within d. A miss is recorded on Status
// and returns a nil element with no error.
func (e *Env) find(ctx context.Context, args []string, d time.Duration) (element.Element, error) {
	spec, err := parseLocator(args)
	if err != nil {
		return nil, err
	}
	el, err := e.Finder.Get(ctx, spec, e.Finder.Clamp(d))
	if err != nil {
		e.Status.Fail("%v", err)
		return nil, nil
	}
	return el, nil
}

func (e *Env) input() (platform.Inputter, error) {
	if e.Provider.Inputter == nil {
		return nil, fmt.Errorf("input not available: %w", platform.ErrUnsupported)
	}
	return e.Provider.Inputter, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func parseSeconds(s string) (time.Duration, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid duration in seconds %q", ErrConfiguration, s)
	}
	return time.Duration(n * float64(time.Second)), nil
}

func parsePositive(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", ErrConfiguration, name, s)
	}
	return n, nil
}
