package actions

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mj1618/desktop-runner/internal/locator"
	"github.com/mj1618/desktop-runner/internal/model"
	"github.com/mj1618/desktop-runner/internal/platform"
)

func (e *Env) registerWindowSteps(r *Registry) {
	r.Register("launchApplication", []string{"path"}, e.launchApplication)
	r.Register("closeApplication", []string{"path"}, e.closeApplication)
	r.Register("maximizeWindow", []string{"title"}, e.titleStep("maximize window", e.Finder.MaximizeWindow))
	r.Register("maximizePane", []string{"title"}, e.titleStep("maximize pane", e.Finder.MaximizePane))
	r.Register("closeWindow", []string{"title"}, e.titleStep("close window", e.Finder.CloseWindow))
	r.Register("closePane", []string{"title"}, e.titleStep("close pane", e.Finder.ClosePane))
	r.Register("focusWindow", []string{"title"}, e.focusWindow)
	r.Register("focusPane", []string{"title"}, e.focusPane)
	r.Register("openURL", []string{"url"}, e.openURL)
	r.Register("launchURL", []string{"url"}, e.launchURL)
}

func (e *Env) launchApplication(ctx context.Context, args []string) error {
	if e.Provider.Launcher == nil {
		e.Status.Fail("launch %s: %v", args[0], platform.ErrUnsupported)
		return nil
	}
	pid, err := e.Provider.Launcher.Launch(args[0])
	if err != nil {
		e.Status.Fail("launch %s: %v", args[0], err)
		return nil
	}
	e.Logger.Info("launched", zap.String("target", args[0]), zap.Int("pid", pid))
	return nil
}

func (e *Env) closeApplication(ctx context.Context, args []string) error {
	if e.Provider.Launcher == nil {
		e.Status.Fail("close %s: %v", args[0], platform.ErrUnsupported)
		return nil
	}
	if err := e.Provider.Launcher.Close(args[0]); err != nil {
		e.Status.Fail("close %s: %v", args[0], err)
	}
	return nil
}

// titleStep reports any error from op as a step failure.
func (e *Env) titleStep(what string, op func(context.Context, string) error) Handler {
	return func(ctx context.Context, args []string) error {
		if err := op(ctx, args[0]); err != nil {
			e.Status.Fail("%s %q: %v", what, args[0], err)
		}
		return nil
	}
}

// focusWindow anchors later searches to the window. When the window is not
// found at once it waits for it to display and looks again; failing that
// the run stops.
func (e *Env) focusWindow(ctx context.Context, args []string) error {
	title := args[0]
	n, err := e.Finder.GetWindow(ctx, title)
	if err != nil {
		spec := locator.New(locator.ByName, model.ControlTypeName(model.RoleWindow), title)
		e.Finder.WaitToDisplay(ctx, spec, e.Finder.Clamp(focusWait))
		n, err = e.Finder.GetWindow(ctx, title)
	}
	if err != nil {
		e.Status.Fail("focus window %q: %v", title, err)
		return fmt.Errorf("focus window %q: %w", title, err)
	}
	if wm := e.Provider.WindowManager; wm != nil {
		if err := wm.FocusWindow(platform.FocusOptions{Window: title}); err != nil {
			e.Logger.Debug("window manager focus", zap.String("title", title), zap.Error(err))
		}
	}
	if err := n.Focus(); err != nil {
		return err
	}
	e.Finder.Context().AnchorTo(n)
	return nil
}

func (e *Env) focusPane(ctx context.Context, args []string) error {
	title := args[0]
	n, err := e.Finder.GetPane(ctx, title)
	if err != nil {
		e.Status.Fail("focus pane %q: %v", title, err)
		return fmt.Errorf("focus pane %q: %w", title, err)
	}
	if err := n.Focus(); err != nil {
		return err
	}
	e.Finder.Context().AnchorTo(n)
	return nil
}

// openURL opens a new browser tab in the focused browser and navigates to
// url.
func (e *Env) openURL(ctx context.Context, args []string) error {
	in, err := e.input()
	if err == nil {
		err = in.KeyCombo([]string{"ctrl", "t"})
	}
	if err == nil {
		err = e.pasteText(ctx, args[0], false)
	}
	if err == nil {
		err = in.KeyCombo([]string{"enter"})
	}
	if err != nil {
		e.Status.Fail("open url %s: %v", args[0], err)
	}
	return nil
}

// launchURL opens url with the system's default handler.
func (e *Env) launchURL(ctx context.Context, args []string) error {
	if e.Provider.Launcher == nil {
		e.Status.Fail("launch url %s: %v", args[0], platform.ErrUnsupported)
		return nil
	}
	if err := e.Provider.Launcher.OpenURL(args[0]); err != nil {
		e.Status.Fail("launch url %s: %v", args[0], err)
	}
	return nil
}
