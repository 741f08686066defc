// Package backend answers locator queries against the accessibility tree,
// screen pixels and recognized text.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mj1618/desktop-runner/internal/element"
	"github.com/mj1618/desktop-runner/internal/locator"
	"github.com/mj1618/desktop-runner/internal/search"
)

var (
	// ErrNotFound is the reason of a NotFound result with no more specific cause.
	ErrNotFound = errors.New("element not found")
	// ErrBackend wraps failures of the underlying platform.
	ErrBackend = errors.New("backend failure")
	// ErrSearchRegionNotFound means the image bounding a nested search was not on screen.
	ErrSearchRegionNotFound = errors.New("search region not found")
	// ErrTargetNotFound means the target image was not inside the search region.
	ErrTargetNotFound = errors.New("target image not found")
	// ErrTextNotFound means the text was not recognized inside the search region.
	ErrTextNotFound = errors.New("text not found")
	// ErrInvalidLocation means a LOCATION point is malformed or off screen.
	ErrInvalidLocation = errors.New("invalid location")
	// ErrWrongBackend means a locator kind was routed to a backend that cannot answer it.
	ErrWrongBackend = errors.New("locator kind not handled by backend")
)

// ResultKind tags a Result.
type ResultKind int

const (
	ResultFound ResultKind = iota
	ResultNotFound
	ResultError
)

func (k ResultKind) String() string {
	switch k {
	case ResultFound:
		return "found"
	case ResultNotFound:
		return "not found"
	default:
		return "error"
	}
}

// Result is the outcome of a single backend query.
type Result struct {
	kind    ResultKind
	element element.Element
	err     error
}

// Found wraps a located element.
func Found(e element.Element) Result {
	return Result{kind: ResultFound, element: e}
}

// NotFound reports a clean miss. reason may be nil.
func NotFound(reason error) Result {
	if reason == nil {
		reason = ErrNotFound
	}
	return Result{kind: ResultNotFound, err: reason}
}

// Failed reports a backend error.
func Failed(err error) Result {
	if !errors.Is(err, ErrBackend) {
		err = fmt.Errorf("%w: %w", ErrBackend, err)
	}
	return Result{kind: ResultError, err: err}
}

func (r Result) Kind() ResultKind { return r.kind }

func (r Result) IsFound() bool { return r.kind == ResultFound }

// Element is non-nil only for ResultFound.
func (r Result) Element() element.Element { return r.element }

// Err is the miss reason or the failure; nil for ResultFound.
func (r Result) Err() error { return r.err }

func (r Result) String() string {
	if r.kind == ResultFound {
		return "found " + r.element.String()
	}
	return fmt.Sprintf("%s: %v", r.kind, r.err)
}

// Backend answers locator queries.
type Backend interface {
	FindFirst(ctx context.Context, sc *search.Context, spec locator.Spec) Result
	FindAll(ctx context.Context, sc *search.Context, spec locator.Spec) ([]element.Element, error)
}

// AttemptPause is the pause between attempts of a backend query.
const AttemptPause = 100 * time.Millisecond

// Attempt runs query up to attempts times, pausing between tries, until it
// returns ResultFound. The last result is returned, also when ctx ends
// before the attempts are used up.
func Attempt(ctx context.Context, attempts int, pause time.Duration, query func() Result) Result {
	if attempts < 1 {
		attempts = 1
	}
	var res Result
	for i := 0; i < attempts; i++ {
		res = query()
		if res.IsFound() || i == attempts-1 {
			return res
		}
		select {
		case <-ctx.Done():
			return res
		case <-time.After(pause):
		}
	}
	return res
}

// Router picks the backend for a locator kind.
type Router struct {
	Tree     Backend
	Visual   Backend
	Text     Backend
	Location Backend
}

// For returns the backend answering kind, or nil when none is configured.
func (r *Router) For(kind locator.Kind) Backend {
	switch {
	case kind.IsTree():
		return r.Tree
	case kind == locator.ByImage:
		return r.Visual
	case kind == locator.ByOCR:
		return r.Text
	case kind == locator.ByLocation:
		return r.Location
	default:
		return nil
	}
}
