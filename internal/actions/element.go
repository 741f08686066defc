package actions

import (
	"context"
	"strconv"
	"strings"

	"github.com/mj1618/desktop-runner/internal/element"
	"github.com/mj1618/desktop-runner/internal/model"
)

func (e *Env) registerElementSteps(r *Registry) {
	simple := map[string]func(element.Element) error{
		"click":       element.Element.Click,
		"clickCenter": element.Element.ClickCenter,
		"rightClick":  element.Element.RightClick,
		"doubleClick": element.Element.DoubleClick,
		"hover":       element.Element.Hover,
	}
	for name, op := range simple {
		r.Register(name, withLocator(), e.elementStep(op))
	}

	r.Register("write", withLocator("text"), e.write)
	r.Register("check", withLocator(), e.checkbox(true))
	r.Register("unCheck", withLocator(), e.checkbox(false))
	r.Register("toggle", withLocator("state"), e.toggle)
	r.Register("drag", withLocator(), e.dragStep(element.Element.Drag))
	r.Register("drop", withLocator(), e.dragStep(element.Element.DropAt))
}

func (e *Env) elementStep(op func(element.Element) error) Handler {
	return func(ctx context.Context, args []string) error {
		el, err := e.find(ctx, args, e.Finder.Timeout())
		if err != nil || el == nil {
			return err
		}
		return op(el)
	}
}

func (e *Env) dragStep(op func(element.Element) error) Handler {
	return func(ctx context.Context, args []string) error {
		el, err := e.find(ctx, args, dragWait)
		if err != nil || el == nil {
			return err
		}
		return op(el)
	}
}

// write clicks the element, waits for it to take focus, then replaces its
// text.
func (e *Env) write(ctx context.Context, args []string) error {
	el, err := e.find(ctx, args[:3], e.Finder.Timeout())
	if err != nil || el == nil {
		return err
	}
	if err := el.Click(); err != nil {
		return err
	}
	if err := sleep(ctx, writePause); err != nil {
		return err
	}
	return el.Write(args[3])
}

// checkbox always searches for a CHECKBOX, whatever control type the step
// names.
func (e *Env) checkbox(on bool) Handler {
	return func(ctx context.Context, args []string) error {
		fixed := []string{args[0], checkBoxType(), args[2]}
		return e.setToggle(ctx, fixed, on)
	}
}

func (e *Env) toggle(ctx context.Context, args []string) error {
	on, err := strconv.ParseBool(strings.TrimSpace(args[3]))
	if err != nil {
		return parseBoolError("state", args[3])
	}
	return e.setToggle(ctx, args[:3], on)
}

func (e *Env) setToggle(ctx context.Context, args []string, on bool) error {
	el, err := e.find(ctx, args, e.Finder.Timeout())
	if err != nil || el == nil {
		return err
	}
	n, err := element.Require(el, element.CapToggle)
	if err != nil {
		return err
	}
	return n.Toggle(on)
}

func checkBoxType() string {
	return model.ControlTypeName(model.RoleCheckBox)
}
