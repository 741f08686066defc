// Package element is the uniform handle over located screen elements. A
// Region is a bare screen rectangle (visual, text and location results); a
// Node is a Region backed by an accessibility tree element.
package element

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mj1618/desktop-runner/internal/platform"
)

// Rect is a region in screen coordinates.
type Rect = platform.Bounds

// Capability is one operation an element may support.
type Capability uint16

const (
	CapDisplayed Capability = 1 << iota
	CapVanished
	CapClick
	CapClickCenter
	CapRightClick
	CapDoubleClick
	CapHover
	CapDrag
	CapText
	CapToggle
	CapIntrospect
	CapFocus
	CapWindow
)

var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{CapDisplayed, "displayed"},
	{CapVanished, "vanished"},
	{CapClick, "click"},
	{CapClickCenter, "clickCenter"},
	{CapRightClick, "rightClick"},
	{CapDoubleClick, "doubleClick"},
	{CapHover, "hover"},
	{CapDrag, "drag"},
	{CapText, "text"},
	{CapToggle, "toggle"},
	{CapIntrospect, "introspect"},
	{CapFocus, "focus"},
	{CapWindow, "window"},
}

func (c Capability) String() string {
	var names []string
	for _, cn := range capabilityNames {
		if c&cn.cap != 0 {
			names = append(names, cn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// CapabilitySet is a bit set of capabilities.
type CapabilitySet = Capability

// Has reports whether every capability in want is present.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

const (
	regionCaps = CapDisplayed | CapVanished | CapClick | CapClickCenter | CapRightClick |
		CapDoubleClick | CapHover | CapDrag | CapText
	nodeCaps = regionCaps | CapToggle | CapIntrospect | CapFocus | CapWindow
)

// ErrCapabilityUnsupported is wrapped by every CapabilityError.
var ErrCapabilityUnsupported = errors.New("capability not supported")

// CapabilityError reports an operation requested on a variant that lacks it.
type CapabilityError struct {
	Capability Capability
	Element    string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Element, e.Capability)
}

func (e *CapabilityError) Unwrap() error {
	return ErrCapabilityUnsupported
}

// Env carries the platform ports element operations act through.
type Env struct {
	Input   platform.Inputter
	Screen  platform.Screenshotter
	Actions platform.ActionPerformer
}

// Element is the closed set of located elements: *Region and *Node.
type Element interface {
	// Bounds returns the region as captured at find time. It is not
	// re-validated until Displayed or Vanished is called.
	Bounds() Rect
	Capabilities() CapabilitySet
	Displayed() bool
	Vanished() bool
	Click() error
	ClickCenter() error
	RightClick() error
	DoubleClick() error
	Hover() error
	Drag() error
	DropAt() error
	Clear() error
	Write(text string) error
	SwipeUp(steps int) error
	SwipeDown(steps int) error
	String() string

	sealed()
}

// Require returns e as a *Node when it supports want, or a *CapabilityError.
func Require(e Element, want Capability) (*Node, error) {
	if !e.Capabilities().Has(want) {
		return nil, &CapabilityError{Capability: want &^ e.Capabilities(), Element: e.String()}
	}
	n, ok := e.(*Node)
	if !ok {
		return nil, &CapabilityError{Capability: want, Element: e.String()}
	}
	return n, nil
}
