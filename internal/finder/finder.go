// Package finder runs bounded polling searches over the backends and keeps
// per-title window and pane caches.
package finder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mj1618/desktop-runner/internal/backend"
	"github.com/mj1618/desktop-runner/internal/element"
	"github.com/mj1618/desktop-runner/internal/locator"
	"github.com/mj1618/desktop-runner/internal/platform"
	"github.com/mj1618/desktop-runner/internal/search"
)

var (
	// ErrTimeout means a polling search ran out of time.
	ErrTimeout = errors.New("timed out")
	// ErrWindowNotFound means no window or pane title matched within the attempt budget.
	ErrWindowNotFound = errors.New("window not found")
	// ErrNoBackend means no backend is configured for a locator kind.
	ErrNoBackend = errors.New("no backend for locator kind")
)

// Options tune polling.
type Options struct {
	// FindWait is the nominal timeout used by steps without an explicit duration.
	FindWait time.Duration
	// MaxWait caps every explicit duration.
	MaxWait time.Duration
	// PollInterval paces the polling loop.
	PollInterval time.Duration
	// WindowAttempts bounds window and pane lookups.
	WindowAttempts int
	// Scale is the display scaling percentage for tree bounds.
	Scale int
}

// Finder selects a backend per locator kind and polls it.
type Finder struct {
	router  *backend.Router
	reader  platform.Reader
	env     *element.Env
	sc      *search.Context
	opts    Options
	timeout time.Duration
	windows *Cache
	panes   *Cache
	logger  *zap.Logger
}

// New returns a Finder searching through router under sc.
func New(router *backend.Router, reader platform.Reader, env *element.Env, sc *search.Context, opts Options, logger *zap.Logger) *Finder {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 50 * time.Millisecond
	}
	if opts.WindowAttempts <= 0 {
		opts.WindowAttempts = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finder{
		router:  router,
		reader:  reader,
		env:     env,
		sc:      sc,
		opts:    opts,
		timeout: opts.FindWait,
		windows: NewCache(),
		panes:   NewCache(),
		logger:  logger,
	}
}

// Context returns the search context every query reads.
func (f *Finder) Context() *search.Context { return f.sc }

// Env returns the environment elements act through.
func (f *Finder) Env() *element.Env { return f.env }

// Timeout returns the current nominal timeout.
func (f *Finder) Timeout() time.Duration { return f.timeout }

// SetTimeout replaces the nominal timeout and returns the previous value.
func (f *Finder) SetTimeout(d time.Duration) time.Duration {
	prev := f.timeout
	f.timeout = d
	return prev
}

// MaxWait returns the wait used by steps that give no explicit duration.
func (f *Finder) MaxWait() time.Duration { return f.opts.MaxWait }

// Clamp bounds an explicit duration by MaxWait and the current timeout when
// that is lower, so a shortened retry also shortens explicit waits.
func (f *Finder) Clamp(d time.Duration) time.Duration {
	if f.opts.MaxWait > 0 && d > f.opts.MaxWait {
		d = f.opts.MaxWait
	}
	if f.timeout < f.opts.FindWait && d > f.timeout {
		d = f.timeout
	}
	return max(d, 0)
}

func (f *Finder) backendFor(kind locator.Kind) (backend.Backend, error) {
	if f.router != nil {
		if b := f.router.For(kind); b != nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoBackend, kind)
}

// poll calls check until it reports done or more than d has elapsed. The
// limiter paces checks; when the next slot would land past the deadline the
// loop sleeps to the deadline and checks once more. check gets a context that
// ends at the deadline so backend attempts stop there too.
func (f *Finder) poll(ctx context.Context, d time.Duration, check func(context.Context) bool) bool {
	end := time.Now().Add(d)
	deadline, cancel := context.WithDeadline(ctx, end)
	defer cancel()
	limiter := rate.NewLimiter(rate.Every(f.opts.PollInterval), 1)
	limiter.Allow()
	for {
		if check(deadline) {
			return true
		}
		if ctx.Err() != nil || !time.Now().Before(end) {
			return false
		}
		if err := limiter.Wait(deadline); err != nil {
			if ctx.Err() != nil {
				return false
			}
			timer := time.NewTimer(time.Until(end))
			select {
			case <-ctx.Done():
				timer.Stop()
				return false
			case <-timer.C:
			}
			return check(deadline)
		}
	}
}

// Get polls until spec is found or d elapses. Backend errors count as not
// found yet.
func (f *Finder) Get(ctx context.Context, spec locator.Spec, d time.Duration) (element.Element, error) {
	b, err := f.backendFor(spec.Kind)
	if err != nil {
		return nil, err
	}
	var (
		found element.Element
		last  backend.Result
	)
	start := time.Now()
	ok := f.poll(ctx, d, func(dctx context.Context) bool {
		last = b.FindFirst(dctx, f.sc, spec)
		if last.IsFound() {
			found = last.Element()
			return true
		}
		if last.Kind() == backend.ResultError {
			f.logger.Debug("backend error while polling", zap.Stringer("locator", spec), zap.Error(last.Err()))
		}
		return false
	})
	if !ok {
		f.logger.Info("element not found", zap.Stringer("locator", spec), zap.Duration("waited", time.Since(start)))
		return nil, fmt.Errorf("%w: %s not found within %s: %w", ErrTimeout, spec, d, last.Err())
	}
	f.logger.Debug("element found", zap.Stringer("locator", spec), zap.Stringer("element", found))
	return found, nil
}

// WaitToDisplay reports whether spec is found and displayed within d.
func (f *Finder) WaitToDisplay(ctx context.Context, spec locator.Spec, d time.Duration) bool {
	b, err := f.backendFor(spec.Kind)
	if err != nil {
		f.logger.Warn("wait to display", zap.Error(err))
		return false
	}
	ok := f.poll(ctx, d, func(dctx context.Context) bool {
		res := b.FindFirst(dctx, f.sc, spec)
		return res.IsFound() && res.Element().Displayed()
	})
	if !ok {
		f.logger.Info("not displayed", zap.Stringer("locator", spec), zap.Duration("within", d))
	}
	return ok
}

// WaitToVanish reports whether spec disappears within d. A miss or a
// backend error counts as vanished at once; a found element counts once it
// reports Vanished.
func (f *Finder) WaitToVanish(ctx context.Context, spec locator.Spec, d time.Duration) bool {
	b, err := f.backendFor(spec.Kind)
	if err != nil {
		f.logger.Warn("wait to vanish", zap.Error(err))
		return true
	}
	ok := f.poll(ctx, d, func(dctx context.Context) bool {
		res := b.FindFirst(dctx, f.sc, spec)
		return !res.IsFound() || res.Element().Vanished()
	})
	if !ok {
		f.logger.Info("not vanished", zap.Stringer("locator", spec), zap.Duration("within", d))
	}
	return ok
}

// WaitToEnable reports whether spec is found as a tree node reporting
// enabled within d.
func (f *Finder) WaitToEnable(ctx context.Context, spec locator.Spec, d time.Duration) bool {
	if !spec.Kind.IsTree() {
		f.logger.Warn("wait to enable needs a tree locator", zap.Stringer("locator", spec))
		return false
	}
	b, err := f.backendFor(spec.Kind)
	if err != nil {
		f.logger.Warn("wait to enable", zap.Error(err))
		return false
	}
	ok := f.poll(ctx, d, func(dctx context.Context) bool {
		res := b.FindFirst(dctx, f.sc, spec)
		if !res.IsFound() {
			return false
		}
		n, isNode := res.Element().(*element.Node)
		return isNode && n.Enabled()
	})
	if !ok {
		f.logger.Info("not enabled", zap.Stringer("locator", spec), zap.Duration("within", d))
	}
	return ok
}

// FindAll runs one multi-match search.
func (f *Finder) FindAll(ctx context.Context, spec locator.Spec) ([]element.Element, error) {
	b, err := f.backendFor(spec.Kind)
	if err != nil {
		return nil, err
	}
	return b.FindAll(ctx, f.sc, spec)
}
