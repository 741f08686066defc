package actions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/desktop-runner/internal/platform"
)

func parseBoolError(name, value string) error {
	return fmt.Errorf("%w: %s must be true or false, got %q", ErrConfiguration, name, value)
}

func (e *Env) registerInputSteps(r *Registry) {
	r.Register("clear", nil, e.clear)
	r.Register("keyboardType", []string{"text"}, e.keyboardType)
	r.Register("paste", []string{"text"}, e.paste)
	r.Register("shortcut", []string{"key"}, e.shortcut)
	r.Register("shortcut", []string{"key1", "key2"}, e.shortcut)
	r.Register("shortcut", []string{"key1", "key2", "key3"}, e.shortcut)
	r.Register("scrollDown", []string{"steps"}, e.scroll(-1))
	r.Register("scrollUp", []string{"steps"}, e.scroll(1))
}

// clear selects everything in the focused control and deletes it.
func (e *Env) clear(ctx context.Context, args []string) error {
	in, err := e.input()
	if err != nil {
		e.Status.Fail("clear: %v", err)
		return nil
	}
	if err := clearFocused(in); err != nil {
		e.Status.Fail("clear: %v", err)
	}
	return nil
}

func clearFocused(in platform.Inputter) error {
	if err := in.KeyCombo([]string{"ctrl", "a"}); err != nil {
		return err
	}
	return in.KeyCombo([]string{"delete"})
}

func (e *Env) keyboardType(ctx context.Context, args []string) error {
	in, err := e.input()
	if err == nil {
		err = in.TypeText(args[0], 0)
	}
	if err != nil {
		e.Status.Fail("keyboardType %q: %v", args[0], err)
	}
	return nil
}

// paste clears the focused control and pastes text through the clipboard.
func (e *Env) paste(ctx context.Context, args []string) error {
	if err := e.pasteText(ctx, args[0], true); err != nil {
		e.Status.Fail("paste %q: %v", args[0], err)
	}
	return nil
}

func (e *Env) pasteText(ctx context.Context, text string, clearFirst bool) error {
	in, err := e.input()
	if err != nil {
		return err
	}
	if e.Provider.ClipboardManager == nil {
		return fmt.Errorf("clipboard not available: %w", platform.ErrUnsupported)
	}
	if clearFirst {
		if err := clearFocused(in); err != nil {
			return err
		}
	}
	if err := sleep(ctx, keySettle); err != nil {
		return err
	}
	if err := e.Provider.ClipboardManager.SetText(text); err != nil {
		return err
	}
	return in.KeyCombo([]string{"ctrl", "v"})
}

// shortcut presses the keys together. Unknown key names are a
// configuration error.
func (e *Env) shortcut(ctx context.Context, args []string) error {
	keys, err := platform.NormalizeKeys(args)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	in, err := e.input()
	if err == nil {
		err = in.KeyCombo(keys)
	}
	if err != nil {
		e.Status.Fail("shortcut %s: %v", strings.Join(args, "+"), err)
	}
	return nil
}

// scroll wheels at the pointer; direction 1 is up.
func (e *Env) scroll(direction int) Handler {
	return func(ctx context.Context, args []string) error {
		steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || steps < 0 {
			e.Status.Fail("invalid number of scroll steps %q", args[0])
			return nil
		}
		in, err := e.input()
		if err == nil {
			err = in.Scroll(-1, -1, 0, direction*steps)
		}
		if err != nil {
			e.Status.Fail("scroll: %v", err)
		}
		return nil
	}
}
