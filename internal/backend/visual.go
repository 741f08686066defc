package backend

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/mj1618/desktop-runner/internal/element"
	"github.com/mj1618/desktop-runner/internal/locator"
	"github.com/mj1618/desktop-runner/internal/platform"
	"github.com/mj1618/desktop-runner/internal/search"
)

// Visual answers IMAGE locators by template matching on a screen capture.
type Visual struct {
	screen  platform.Screenshotter
	images  *ImageStore
	matcher *Matcher
	env     *element.Env
	pause   time.Duration
}

// NewVisual returns an image backend.
func NewVisual(screen platform.Screenshotter, images *ImageStore, matcher *Matcher, env *element.Env) *Visual {
	return &Visual{screen: screen, images: images, matcher: matcher, env: env, pause: AttemptPause}
}

// FindFirst locates Param2 on the whole screen when Param1 is SCREEN,
// otherwise locates Param1 first and Param2 strictly inside it.
func (v *Visual) FindFirst(ctx context.Context, sc *search.Context, spec locator.Spec) Result {
	if spec.Kind != locator.ByImage {
		return Failed(fmt.Errorf("%w: %s", ErrWrongBackend, spec.Kind))
	}
	return Attempt(ctx, sc.Attempts, v.pause, func() Result {
		matches, res := v.query(spec, false)
		if res.Kind() != ResultFound {
			return res
		}
		return Found(element.NewRegion(rectToBounds(matches[0].Rect), v.env))
	})
}

// FindAll returns every non-overlapping hit of the target, best first.
func (v *Visual) FindAll(ctx context.Context, sc *search.Context, spec locator.Spec) ([]element.Element, error) {
	if spec.Kind != locator.ByImage {
		return nil, fmt.Errorf("%w: %s", ErrWrongBackend, spec.Kind)
	}
	matches, res := v.query(spec, true)
	if res.Kind() == ResultError {
		return nil, res.Err()
	}
	out := make([]element.Element, 0, len(matches))
	for _, m := range matches {
		out = append(out, element.NewRegion(rectToBounds(m.Rect), v.env))
	}
	return out, nil
}

func (v *Visual) query(spec locator.Spec, all bool) ([]Match, Result) {
	if v.screen == nil {
		return nil, Failed(fmt.Errorf("screen capture not available: %w", platform.ErrUnsupported))
	}
	target, err := v.images.Load(spec.Param2)
	if err != nil {
		return nil, Failed(err)
	}
	frame, err := v.screen.CaptureScreen()
	if err != nil {
		return nil, Failed(err)
	}

	within, res := v.searchArea(frame, spec)
	if res.Kind() != ResultFound {
		return nil, res
	}

	var matches []Match
	if all {
		matches = v.matcher.FindAll(frame, target, within)
	} else if m, ok := v.matcher.Find(frame, target, within); ok {
		matches = []Match{m}
	}
	if len(matches) == 0 {
		return nil, NotFound(fmt.Errorf("%w: %s", ErrTargetNotFound, spec.Param2))
	}
	return matches, Found(nil)
}

// searchArea resolves Param1 to the rectangle the target must lie in.
func (v *Visual) searchArea(frame image.Image, spec locator.Spec) (image.Rectangle, Result) {
	return resolveSearchArea(frame, spec, v.images, v.matcher)
}

func resolveSearchArea(frame image.Image, spec locator.Spec, images *ImageStore, matcher *Matcher) (image.Rectangle, Result) {
	if spec.WholeScreen() {
		return frame.Bounds(), Found(nil)
	}
	regionImg, err := images.Load(spec.Param1)
	if err != nil {
		return image.Rectangle{}, Failed(err)
	}
	m, ok := matcher.Find(frame, regionImg, frame.Bounds())
	if !ok {
		return image.Rectangle{}, NotFound(fmt.Errorf("%w: %s", ErrSearchRegionNotFound, spec.Param1))
	}
	return m.Rect, Found(nil)
}

func rectToBounds(r image.Rectangle) element.Rect {
	return element.Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}
