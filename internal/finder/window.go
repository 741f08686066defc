package finder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/desktop-runner/internal/backend"
	"github.com/mj1618/desktop-runner/internal/element"
	"github.com/mj1618/desktop-runner/internal/model"
	"github.com/mj1618/desktop-runner/internal/platform"
)

// GetWindow returns the window whose title starts with title. A cached node
// is returned without searching. Otherwise the tree is read up to
// WindowAttempts times; a hit is focused and cached.
func (f *Finder) GetWindow(ctx context.Context, title string) (*element.Node, error) {
	return f.lookup(ctx, f.windows, title, model.RoleWindow)
}

// GetPane is GetWindow for panes.
func (f *Finder) GetPane(ctx context.Context, title string) (*element.Node, error) {
	return f.lookup(ctx, f.panes, title, model.RolePane)
}

func (f *Finder) lookup(ctx context.Context, cache *Cache, title, role string) (*element.Node, error) {
	if n, ok := cache.Get(title); ok {
		return n, nil
	}
	if f.reader == nil {
		return nil, fmt.Errorf("no accessibility tree reader in this build, replay a snapshot for window lookups: %w", platform.ErrUnsupported)
	}

	var lastErr error
	for attempt := 0; attempt < f.opts.WindowAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backend.AttemptPause):
			}
		}
		top, err := f.reader.ReadElements(platform.ReadOptions{})
		if err != nil {
			lastErr = err
			continue
		}
		el, ok := matchTitle(top, title, role)
		if !ok {
			continue
		}
		n := element.NewNode(el, f.opts.Scale, f.env)
		if err := n.Focus(); err != nil {
			f.logger.Warn("focus failed", zap.String("title", title), zap.Error(err))
		}
		cache.Put(title, n)
		f.logger.Debug("cached", zap.String("role", role), zap.String("title", title), zap.Int("attempt", attempt+1))
		return n, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %q after %d attempts: %w", ErrWindowNotFound, title, f.opts.WindowAttempts, lastErr)
	}
	return nil, fmt.Errorf("%w: %q after %d attempts", ErrWindowNotFound, title, f.opts.WindowAttempts)
}

// matchTitle checks the top-level elements, then their direct children,
// for the role whose title starts with prefix.
func matchTitle(top []model.Element, prefix, role string) (model.Element, bool) {
	hit := func(el model.Element) bool {
		return el.Role == role && strings.HasPrefix(el.Title, prefix)
	}
	for _, el := range top {
		if hit(el) {
			return el, true
		}
	}
	for _, el := range top {
		for _, child := range el.Children {
			if hit(child) {
				return child, true
			}
		}
	}
	return model.Element{}, false
}

// MaximizeWindow maximizes the window titled title.
func (f *Finder) MaximizeWindow(ctx context.Context, title string) error {
	n, err := f.GetWindow(ctx, title)
	if err != nil {
		return err
	}
	return n.Maximize()
}

// MaximizePane maximizes the pane titled title.
func (f *Finder) MaximizePane(ctx context.Context, title string) error {
	n, err := f.GetPane(ctx, title)
	if err != nil {
		return err
	}
	return n.Maximize()
}

// CloseWindow closes the window titled title and drops its cache entry.
func (f *Finder) CloseWindow(ctx context.Context, title string) error {
	n, err := f.GetWindow(ctx, title)
	if err != nil {
		return err
	}
	if err := n.Close(); err != nil {
		return err
	}
	f.windows.Invalidate(title)
	return nil
}

// ClosePane closes the pane titled title and drops its cache entry.
func (f *Finder) ClosePane(ctx context.Context, title string) error {
	n, err := f.GetPane(ctx, title)
	if err != nil {
		return err
	}
	if err := n.Close(); err != nil {
		return err
	}
	f.panes.Invalidate(title)
	return nil
}

// Invalidate drops title from both caches.
func (f *Finder) Invalidate(title string) {
	f.windows.Invalidate(title)
	f.panes.Invalidate(title)
}

// InvalidateAll clears both caches.
func (f *Finder) InvalidateAll() {
	f.windows.InvalidateAll()
	f.panes.InvalidateAll()
}

// Cached reports how many windows and panes are cached.
func (f *Finder) Cached() (windows, panes int) {
	return f.windows.Len(), f.panes.Len()
}
