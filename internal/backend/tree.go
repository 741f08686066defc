package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/desktop-runner/internal/element"
	"github.com/mj1618/desktop-runner/internal/locator"
	"github.com/mj1618/desktop-runner/internal/model"
	"github.com/mj1618/desktop-runner/internal/platform"
	"github.com/mj1618/desktop-runner/internal/search"
)

// Tree answers NAME, ID, TEXT, VALUE and their PARTIAL forms from the
// accessibility tree.
type Tree struct {
	reader platform.Reader
	env    *element.Env
	scale  int
	pause  time.Duration
}

// NewTree returns a tree backend. scale is the display scaling percentage.
func NewTree(reader platform.Reader, env *element.Env, scale int) *Tree {
	return &Tree{reader: reader, env: env, scale: scale, pause: AttemptPause}
}

// FindFirst returns the first match in document order.
func (t *Tree) FindFirst(ctx context.Context, sc *search.Context, spec locator.Spec) Result {
	if !spec.Kind.IsTree() {
		return Failed(fmt.Errorf("%w: %s", ErrWrongBackend, spec.Kind))
	}
	return Attempt(ctx, sc.Attempts, t.pause, func() Result {
		matches, err := t.query(sc, spec)
		if err != nil {
			return Failed(err)
		}
		if len(matches) == 0 {
			return NotFound(nil)
		}
		return Found(element.NewNode(matches[0], t.scale, t.env))
	})
}

// FindAll returns every match in document order.
func (t *Tree) FindAll(ctx context.Context, sc *search.Context, spec locator.Spec) ([]element.Element, error) {
	if !spec.Kind.IsTree() {
		return nil, fmt.Errorf("%w: %s", ErrWrongBackend, spec.Kind)
	}
	var matches []model.Element
	res := Attempt(ctx, sc.Attempts, t.pause, func() Result {
		var err error
		matches, err = t.query(sc, spec)
		if err != nil {
			return Failed(err)
		}
		if len(matches) == 0 {
			return NotFound(nil)
		}
		return Found(nil)
	})
	if res.Kind() == ResultError {
		return nil, res.Err()
	}
	out := make([]element.Element, 0, len(matches))
	for _, m := range matches {
		out = append(out, element.NewNode(m, t.scale, t.env))
	}
	return out, nil
}

// query evaluates spec once against a fresh read of the tree. Exact kinds
// compare the property for equality; partial kinds gather every node of the
// control type and keep those whose property contains the value.
func (t *Tree) query(sc *search.Context, spec locator.Spec) ([]model.Element, error) {
	if t.reader == nil {
		return nil, fmt.Errorf("no accessibility tree reader in this build, replay a snapshot for tree locators: %w", platform.ErrUnsupported)
	}
	windows, err := t.reader.ReadElements(platform.ReadOptions{})
	if err != nil {
		return nil, err
	}

	root := model.Desktop(windows)
	if anchor := sc.AnchorNode(); anchor != nil {
		root = resolveAnchor(windows, anchor.Source())
	}

	prop := spec.Kind.Property()
	want := spec.Param2
	var valueMatch model.Match
	if spec.Kind.IsPartial() {
		valueMatch = func(el model.Element) bool { return strings.Contains(prop.Get(el), want) }
	} else {
		valueMatch = func(el model.Element) bool { return prop.Get(el) == want }
	}
	match := model.And(model.MatchRole(spec.Role()), valueMatch)

	if sc.Scope == search.Children {
		return model.FilterChildren(root, match), nil
	}
	return model.FilterDescendants(root, match), nil
}

// resolveAnchor finds the anchor in a fresh read. The ID is tried first and
// confirmed by role and title; otherwise the first element with the same role
// and title wins. When the anchor is gone its captured subtree is used.
func resolveAnchor(windows []model.Element, anchor model.Element) model.Element {
	same := func(el model.Element) bool { return el.Role == anchor.Role && el.Title == anchor.Title }
	if el, ok := model.FindByID(windows, anchor.ID); ok && same(el) {
		return el
	}
	desktop := model.Desktop(windows)
	if matches := model.FilterDescendants(desktop, same); len(matches) > 0 {
		return matches[0]
	}
	return anchor
}
