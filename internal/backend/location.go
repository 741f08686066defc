package backend

import (
	"context"
	"fmt"

	"github.com/mj1618/desktop-runner/internal/element"
	"github.com/mj1618/desktop-runner/internal/locator"
	"github.com/mj1618/desktop-runner/internal/platform"
	"github.com/mj1618/desktop-runner/internal/search"
)

// Location answers LOCATION locators with a one-pixel region.
type Location struct {
	screen platform.Screenshotter
	env    *element.Env
}

// NewLocation returns a location backend. The point is checked against the
// screen size when screen is set.
func NewLocation(screen platform.Screenshotter, env *element.Env) *Location {
	return &Location{screen: screen, env: env}
}

func (l *Location) FindFirst(ctx context.Context, sc *search.Context, spec locator.Spec) Result {
	if spec.Kind != locator.ByLocation {
		return Failed(fmt.Errorf("%w: %s", ErrWrongBackend, spec.Kind))
	}
	x, y, err := spec.Point()
	if err != nil {
		return Failed(fmt.Errorf("%w: %w", ErrInvalidLocation, err))
	}
	if l.screen != nil {
		w, h, err := l.screen.ScreenSize()
		if err == nil && !(element.Rect{Width: w, Height: h}).Contains(x, y) {
			return Failed(fmt.Errorf("%w: %d,%d outside %dx%d screen", ErrInvalidLocation, x, y, w, h))
		}
	}
	return Found(element.NewRegion(element.Rect{X: x, Y: y, Width: 1, Height: 1}, l.env))
}

func (l *Location) FindAll(ctx context.Context, sc *search.Context, spec locator.Spec) ([]element.Element, error) {
	res := l.FindFirst(ctx, sc, spec)
	if !res.IsFound() {
		return nil, res.Err()
	}
	return []element.Element{res.Element()}, nil
}
