package backend

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/mj1618/desktop-runner/internal/element"
	"github.com/mj1618/desktop-runner/internal/locator"
	"github.com/mj1618/desktop-runner/internal/platform"
	"github.com/mj1618/desktop-runner/internal/search"
)

// Text answers OCR locators by recognizing words on a screen capture.
type Text struct {
	screen     platform.Screenshotter
	recognizer platform.Recognizer
	images     *ImageStore
	matcher    *Matcher
	env        *element.Env
	pause      time.Duration
}

// NewText returns an OCR backend. images and matcher resolve image search
// regions.
func NewText(screen platform.Screenshotter, recognizer platform.Recognizer, images *ImageStore, matcher *Matcher, env *element.Env) *Text {
	return &Text{screen: screen, recognizer: recognizer, images: images, matcher: matcher, env: env, pause: AttemptPause}
}

// FindFirst returns the first occurrence of the phrase in reading order.
func (t *Text) FindFirst(ctx context.Context, sc *search.Context, spec locator.Spec) Result {
	if spec.Kind != locator.ByOCR {
		return Failed(fmt.Errorf("%w: %s", ErrWrongBackend, spec.Kind))
	}
	return Attempt(ctx, sc.Attempts, t.pause, func() Result {
		hits, res := t.query(spec)
		if res.Kind() != ResultFound {
			return res
		}
		return Found(element.NewRegion(hits[0], t.env))
	})
}

// FindAll returns every occurrence of the phrase.
func (t *Text) FindAll(ctx context.Context, sc *search.Context, spec locator.Spec) ([]element.Element, error) {
	if spec.Kind != locator.ByOCR {
		return nil, fmt.Errorf("%w: %s", ErrWrongBackend, spec.Kind)
	}
	hits, res := t.query(spec)
	if res.Kind() == ResultError {
		return nil, res.Err()
	}
	out := make([]element.Element, 0, len(hits))
	for _, h := range hits {
		out = append(out, element.NewRegion(h, t.env))
	}
	return out, nil
}

func (t *Text) query(spec locator.Spec) ([]element.Rect, Result) {
	if t.screen == nil || t.recognizer == nil {
		return nil, Failed(fmt.Errorf("text recognition not available: %w", platform.ErrUnsupported))
	}
	frame, err := t.screen.CaptureScreen()
	if err != nil {
		return nil, Failed(err)
	}
	area, res := resolveSearchArea(frame, spec, t.images, t.matcher)
	if res.Kind() != ResultFound {
		return nil, res
	}

	crop := frame
	if sub, ok := frame.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok && area != frame.Bounds() {
		crop = sub.SubImage(area)
	}
	words, err := t.recognizer.Recognize(crop)
	if err != nil {
		return nil, Failed(err)
	}

	hits := FindPhrase(inside(words, area), spec.Param2)
	if len(hits) == 0 {
		return nil, NotFound(fmt.Errorf("%w: %q", ErrTextNotFound, spec.Param2))
	}
	return hits, Found(nil)
}

func inside(words []platform.Word, area image.Rectangle) []platform.Word {
	var out []platform.Word
	for _, w := range words {
		r := image.Rect(w.Bounds.X, w.Bounds.Y, w.Bounds.X+w.Bounds.Width, w.Bounds.Y+w.Bounds.Height)
		if r.In(area) {
			out = append(out, w)
		}
	}
	return out
}

// FindPhrase returns the union box of every run of consecutive words that
// spells phrase. Words compare case-insensitively after trimming
// surrounding punctuation.
func FindPhrase(words []platform.Word, phrase string) []element.Rect {
	want := strings.Fields(phrase)
	if len(want) == 0 {
		return nil
	}
	var hits []element.Rect
	for i := 0; i+len(want) <= len(words); i++ {
		box := element.Rect{}
		ok := true
		for j, w := range want {
			got := words[i+j]
			if !strings.EqualFold(trimPunct(got.Text), trimPunct(w)) {
				ok = false
				break
			}
			box = box.Union(got.Bounds)
		}
		if ok {
			hits = append(hits, box)
		}
	}
	return hits
}

func trimPunct(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".,;:!?\"'()[]")
}
