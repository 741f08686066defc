package platform

import (
	"fmt"
	"strconv"
	"strings"
)

// MouseButton represents a mouse button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// String returns the lower-case button name.
func (b MouseButton) String() string {
	switch b {
	case MouseRight:
		return "right"
	case MouseMiddle:
		return "middle"
	default:
		return "left"
	}
}

// ParseMouseButton converts a string flag value to MouseButton.
func ParseMouseButton(s string) (MouseButton, error) {
	switch strings.ToLower(s) {
	case "left":
		return MouseLeft, nil
	case "right":
		return MouseRight, nil
	case "middle":
		return MouseMiddle, nil
	default:
		return MouseLeft, fmt.Errorf("unknown mouse button: %q (expected left, right, or middle)", s)
	}
}

// Bounds represents a screen rectangle.
type Bounds struct {
	X, Y, Width, Height int
}

// Center returns the midpoint of b.
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Empty reports whether b has no area.
func (b Bounds) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Contains reports whether the point lies inside b.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Union returns the smallest rectangle covering both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	x1, y1 := min(b.X, o.X), min(b.Y, o.Y)
	x2, y2 := max(b.X+b.Width, o.X+o.Width), max(b.Y+b.Height, o.Y+o.Height)
	return Bounds{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Array converts b to the [x, y, w, h] form used by model.Element.
func (b Bounds) Array() [4]int {
	return [4]int{b.X, b.Y, b.Width, b.Height}
}

// BoundsFromArray converts an [x, y, w, h] array into Bounds.
func BoundsFromArray(a [4]int) Bounds {
	return Bounds{X: a[0], Y: a[1], Width: a[2], Height: a[3]}
}

// ParseBBox parses a "x,y,w,h" string into a Bounds.
func ParseBBox(s string) (*Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid bbox %q: expected x,y,w,h", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid bbox %q: %w", s, err)
		}
		vals[i] = v
	}
	return &Bounds{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// ReadOptions controls what elements to read.
type ReadOptions struct {
	App    string  // Filter by application name
	Window string  // Filter by window title prefix
	PID    int     // Filter by process ID (0 = unset)
	Depth  int     // Max traversal depth (0 = unlimited)
	BBox   *Bounds // Only include windows within this bounding box (nil = no filter)
}

// ListOptions controls window listing.
type ListOptions struct {
	PID int    // Filter by PID
	App string // Filter by app name
}

// FocusOptions specifies what to focus.
type FocusOptions struct {
	App      string
	Window   string
	WindowID int
	PID      int
}

// Accessibility actions understood by ActionPerformer.
const (
	ActionFocus    = "focus"
	ActionToggle   = "toggle"
	ActionMaximize = "maximize"
	ActionClose    = "close"
	ActionPress    = "press"
)

// ActionOptions configures which element to act on and what action to perform.
type ActionOptions struct {
	ID     int    // Element ID (from the most recent read)
	Action string // One of the Action* constants
}

// Word is one recognized token with its screen box.
type Word struct {
	Text       string  `yaml:"text"       json:"text"`
	Bounds     Bounds  `yaml:"bounds"     json:"bounds"`
	Confidence float64 `yaml:"confidence" json:"confidence"`
}
