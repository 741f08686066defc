package actions

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mj1618/desktop-runner/internal/element"
	"github.com/mj1618/desktop-runner/internal/locator"
)

func (e *Env) registerAssertSteps(r *Registry) {
	r.Register("assertExist", withLocator(), e.assertWait("exist", (*Env).displayed, true))
	r.Register("assertNotExist", withLocator(), e.assertWait("not exist", (*Env).vanished, true))
	r.Register("assertEnabled", withLocator(), e.assertWait("enabled", (*Env).enabled, true))
	r.Register("assertNotEnabled", withLocator(), e.assertWait("not enabled", (*Env).enabled, false))
	r.Register("assertName", []string{"controlType", "id", "expected"}, e.assertName)
	r.Register("assertFileExists", []string{"fileName", "filePath"}, e.assertFileExists)
	r.Register("deleteFile", []string{"fileName", "filePath"}, e.deleteFile)
}

func (e *Env) displayed(ctx context.Context, spec locator.Spec) bool {
	return e.Finder.WaitToDisplay(ctx, spec, e.Finder.Clamp(assertWait))
}

func (e *Env) vanished(ctx context.Context, spec locator.Spec) bool {
	return e.Finder.WaitToVanish(ctx, spec, e.Finder.Clamp(assertWait))
}

func (e *Env) enabled(ctx context.Context, spec locator.Spec) bool {
	return e.Finder.WaitToEnable(ctx, spec, e.Finder.Clamp(enableWait))
}

// assertWait passes when check returns want.
func (e *Env) assertWait(what string, check func(*Env, context.Context, locator.Spec) bool, want bool) Handler {
	return func(ctx context.Context, args []string) error {
		spec, err := parseLocator(args)
		if err != nil {
			return err
		}
		if check(e, ctx, spec) != want {
			e.Status.Fail("assert %s: %s", what, spec)
			return nil
		}
		e.Logger.Info("assertion passed", zap.String("assert", what), zap.Stringer("locator", spec))
		return nil
	}
}

// assertName finds a control by automation ID and compares its name.
func (e *Env) assertName(ctx context.Context, args []string) error {
	el, err := e.find(ctx, []string{locator.ByID.String(), args[0], args[1]}, enableWait)
	if err != nil || el == nil {
		return err
	}
	n, err := element.Require(el, element.CapIntrospect)
	if err != nil {
		return err
	}
	if got := n.Name(); got != args[2] {
		e.Status.Fail("assert name: %s %q has name %q, want %q", args[0], args[1], got, args[2])
	}
	return nil
}

func (e *Env) filePath(name, dir string) string {
	p := filepath.Join(strings.TrimSpace(dir), strings.TrimSpace(name))
	if filepath.IsAbs(p) || e.BaseDir == "" {
		return p
	}
	return filepath.Join(e.BaseDir, p)
}

func (e *Env) assertFileExists(ctx context.Context, args []string) error {
	p := e.filePath(args[0], args[1])
	if _, err := os.Stat(p); err != nil {
		e.Status.Fail("assert file exists: %v", err)
	}
	return nil
}

// deleteFile removes a file; a file that is already gone passes.
func (e *Env) deleteFile(ctx context.Context, args []string) error {
	p := e.filePath(args[0], args[1])
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		e.Status.Fail("delete %s: %v", p, err)
		return nil
	}
	e.Logger.Info("deleted", zap.String("path", p))
	return nil
}
