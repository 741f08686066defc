package element

import (
	"fmt"

	"github.com/mj1618/desktop-runner/internal/model"
	"github.com/mj1618/desktop-runner/internal/platform"
)

// Node is a Region backed by an accessibility tree element.
type Node struct {
	*Region
	source model.Element
}

// NewNode wraps a tree element. Bounds are reported in device pixels and
// are divided by the display scale percentage to get screen coordinates.
func NewNode(el model.Element, scale int, env *Env) *Node {
	return &Node{
		Region: NewRegion(ScaleBounds(el.Bounds, scale), env),
		source: el,
	}
}

// ScaleBounds converts device-pixel bounds to screen coordinates.
func ScaleBounds(b [4]int, scale int) Rect {
	if scale <= 0 {
		scale = 100
	}
	return Rect{
		X:      b[0] * 100 / scale,
		Y:      b[1] * 100 / scale,
		Width:  b[2] * 100 / scale,
		Height: b[3] * 100 / scale,
	}
}

func (n *Node) sealed() {}

func (n *Node) Capabilities() CapabilitySet { return nodeCaps }

func (n *Node) String() string {
	return fmt.Sprintf("%s %q (id %d)", model.ControlTypeName(n.source.Role), n.source.Title, n.source.ID)
}

// Source returns the tree element as read at find time.
func (n *Node) Source() model.Element { return n.source }

func (n *Node) Enabled() bool { return n.source.IsEnabled() }

func (n *Node) Name() string { return n.source.Title }

func (n *Node) AutomationID() string { return n.source.Identifier }

func (n *Node) Value() string { return n.source.Value }

// Checked returns the toggle state captured at find time.
func (n *Node) Checked() bool { return n.source.Selected }

// Check turns the toggle on if it is off.
func (n *Node) Check() error {
	return n.Toggle(true)
}

// Uncheck turns the toggle off if it is on.
func (n *Node) Uncheck() error {
	return n.Toggle(false)
}

// Toggle flips the control when its state differs from on. The toggle
// accessibility action is used when available, otherwise the control is
// clicked.
func (n *Node) Toggle(on bool) error {
	if n.source.Selected == on {
		return nil
	}
	if n.env.Actions != nil {
		if err := n.perform(platform.ActionToggle); err != nil {
			return err
		}
	} else if err := n.Click(); err != nil {
		return err
	}
	n.source.Selected = on
	return nil
}

// Focus gives the element keyboard focus.
func (n *Node) Focus() error {
	if n.env.Actions == nil {
		return n.ClickCenter()
	}
	return n.perform(platform.ActionFocus)
}

// Maximize maximizes a window or pane.
func (n *Node) Maximize() error {
	return n.requireActions(platform.ActionMaximize)
}

// Close closes a window or pane.
func (n *Node) Close() error {
	return n.requireActions(platform.ActionClose)
}

func (n *Node) requireActions(action string) error {
	if n.env.Actions == nil {
		return &CapabilityError{Capability: CapWindow, Element: n.String() + " without accessibility actions"}
	}
	return n.perform(action)
}

func (n *Node) perform(action string) error {
	if err := n.env.Actions.PerformAction(platform.ActionOptions{ID: n.source.ID, Action: action}); err != nil {
		return fmt.Errorf("%s %s: %w", action, n, err)
	}
	return nil
}
