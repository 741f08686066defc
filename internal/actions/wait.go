package actions

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mj1618/desktop-runner/internal/finder"
	"github.com/mj1618/desktop-runner/internal/locator"
)

// predicate is one of the finder's bounded waits.
type predicate func(f *finder.Finder, ctx context.Context, spec locator.Spec, d time.Duration) bool

func (e *Env) registerWaitSteps(r *Registry) {
	r.Register("waitTime", []string{"milliseconds"}, e.waitTime)

	waits := []struct {
		name string
		verb string
		pred predicate
	}{
		{"waitToDisplay", "display", (*finder.Finder).WaitToDisplay},
		{"waitToVanish", "vanish", (*finder.Finder).WaitToVanish},
		{"waitToEnable", "enable", (*finder.Finder).WaitToEnable},
	}
	for _, w := range waits {
		r.Register(w.name, withLocator(), e.waitStep(w.verb, w.pred, false))
		r.Register(w.name, withLocator("seconds"), e.waitStep(w.verb, w.pred, true))
	}
}

func (e *Env) waitTime(ctx context.Context, args []string) error {
	ms, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || ms < 0 {
		e.Status.Fail("invalid wait time %q", args[0])
		return nil
	}
	return sleep(ctx, time.Duration(ms)*time.Millisecond)
}

// waitStep fails the run when the condition is not met in time. Without an
// explicit duration the finder's max wait applies.
func (e *Env) waitStep(verb string, pred predicate, explicit bool) Handler {
	return func(ctx context.Context, args []string) error {
		spec, err := parseLocator(args)
		if err != nil {
			return err
		}
		d := e.Finder.MaxWait()
		if explicit {
			if d, err = parseSeconds(args[3]); err != nil {
				return err
			}
		}
		d = e.Finder.Clamp(d)
		if pred(e.Finder, ctx, spec, d) {
			return nil
		}
		e.Status.Fail("%s failed to %s within %s", spec.Param2, verb, d)
		return fmt.Errorf("%w: %s failed to %s within %s", finder.ErrTimeout, spec, verb, d)
	}
}
