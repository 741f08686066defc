package actions

import (
	"context"
	"strconv"
	"strings"

	"github.com/mj1618/desktop-runner/internal/search"
)

func (e *Env) registerContextSteps(r *Registry) {
	r.Register("setRootSearch", []string{"enabled"}, e.setRootSearch)
	r.Register("setScope", []string{"scope"}, e.setScope)
	r.Register("setSearchAttempts", []string{"attempts"}, e.setSearchAttempts)
	r.Register("resetSearchContext", nil, e.resetSearchContext)
	r.Register("invalidateWindow", []string{"title"}, e.invalidateWindow)
}

func (e *Env) searchContext() *search.Context { return e.Finder.Context() }

func (e *Env) setRootSearch(ctx context.Context, args []string) error {
	on, err := strconv.ParseBool(strings.TrimSpace(args[0]))
	if err != nil {
		return parseBoolError("enabled", args[0])
	}
	e.searchContext().RootSearch = on
	return nil
}

func (e *Env) setScope(ctx context.Context, args []string) error {
	scope, err := search.ParseScope(args[0])
	if err != nil {
		return err
	}
	e.searchContext().Scope = scope
	return nil
}

func (e *Env) setSearchAttempts(ctx context.Context, args []string) error {
	n, err := parsePositive("attempts", args[0])
	if err != nil {
		return err
	}
	e.searchContext().Attempts = n
	return nil
}

func (e *Env) resetSearchContext(ctx context.Context, args []string) error {
	e.searchContext().Reset()
	return nil
}

// invalidateWindow drops a cached window or pane; "*" clears both caches.
func (e *Env) invalidateWindow(ctx context.Context, args []string) error {
	if args[0] == "*" {
		e.Finder.InvalidateAll()
		return nil
	}
	e.Finder.Invalidate(args[0])
	return nil
}
