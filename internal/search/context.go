// Package search holds the mutable scope shared by every lookup in a run.
package search

import (
	"fmt"
	"strings"

	"github.com/mj1618/desktop-runner/internal/element"
)

// Scope is how far below the anchor a tree query looks.
type Scope int

const (
	// Subtree searches all descendants of the anchor.
	Subtree Scope = iota
	// Children searches only the anchor's direct children.
	Children
)

func (s Scope) String() string {
	if s == Children {
		return "children"
	}
	return "subtree"
}

// ParseScope accepts "children" or "subtree"/"descendants".
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "children":
		return Children, nil
	case "subtree", "descendants":
		return Subtree, nil
	default:
		return Subtree, fmt.Errorf("unknown scope %q (expected children or subtree)", s)
	}
}

// Context is the session search state. It is owned by one run and passed
// explicitly to every backend call; it is not safe for concurrent use.
type Context struct {
	Scope Scope
	// Anchor is the element tree searches start from. Nil means the desktop.
	Anchor element.Element
	// RootSearch forces searches from the desktop root, ignoring Anchor.
	RootSearch bool
	// Attempts is how many times a backend query is tried before it
	// reports not found.
	Attempts int
}

// New returns a Context searching the whole desktop subtree.
func New(attempts int) *Context {
	if attempts < 1 {
		attempts = 1
	}
	return &Context{Scope: Subtree, RootSearch: true, Attempts: attempts}
}

// AnchorTo narrows future searches to el's subtree.
func (c *Context) AnchorTo(el element.Element) {
	c.Anchor = el
	c.RootSearch = false
}

// Reset returns the context to a desktop-wide subtree search.
func (c *Context) Reset() {
	c.Anchor = nil
	c.RootSearch = true
	c.Scope = Subtree
}

// AnchorNode returns the tree node searches start from, or nil for the
// desktop root.
func (c *Context) AnchorNode() *element.Node {
	if c.RootSearch || c.Anchor == nil {
		return nil
	}
	n, _ := c.Anchor.(*element.Node)
	return n
}

func (c *Context) String() string {
	anchor := "desktop"
	if n := c.AnchorNode(); n != nil {
		anchor = n.String()
	}
	return fmt.Sprintf("scope=%s anchor=%s attempts=%d", c.Scope, anchor, c.Attempts)
}
