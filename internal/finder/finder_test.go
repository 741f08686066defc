package finder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mj1618/desktop-runner/internal/backend"
	"github.com/mj1618/desktop-runner/internal/element"
	"github.com/mj1618/desktop-runner/internal/locator"
	"github.com/mj1618/desktop-runner/internal/model"
	"github.com/mj1618/desktop-runner/internal/platform"
	"github.com/mj1618/desktop-runner/internal/platform/platformtest"
	"github.com/mj1618/desktop-runner/internal/search"
)

const interval = 20 * time.Millisecond

func newFinder(t *testing.T, f *platformtest.Fakes) *Finder {
	t.Helper()
	env := &element.Env{Input: f.Inputter, Screen: f.Screen, Actions: f.ActionPerformer}
	router := &backend.Router{
		Tree:     backend.NewTree(f.Reader, env, 100),
		Location: backend.NewLocation(f.Screen, env),
	}
	return New(router, f.Reader, env, search.New(1), Options{
		FindWait:       time.Second,
		MaxWait:        2 * time.Second,
		PollInterval:   interval,
		WindowAttempts: 3,
		Scale:          100,
	}, zaptest.NewLogger(t))
}

func desktop() []model.Element {
	no := false
	return []model.Element{
		{ID: 1, Role: "window", Title: "Login - Acme", Bounds: [4]int{0, 0, 800, 600}, Children: []model.Element{
			{ID: 2, Role: "input", Title: "Username", Bounds: [4]int{10, 10, 200, 20}},
			{ID: 3, Role: "input", Title: "UserAge", Bounds: [4]int{10, 40, 200, 20}},
			{ID: 4, Role: "input", Title: "Email", Bounds: [4]int{10, 70, 200, 20}},
			{ID: 5, Role: "btn", Title: "OK", Bounds: [4]int{10, 100, 60, 20}},
			{ID: 6, Role: "btn", Title: "Submit", Enabled: &no, Bounds: [4]int{80, 100, 60, 20}},
			{ID: 7, Role: "pane", Title: "Settings pane", Bounds: [4]int{400, 0, 400, 600}},
			{ID: 9, Role: "btn", Title: "Offscreen", Bounds: [4]int{5000, 5000, 10, 10}},
		}},
	}
}

func TestWaitToDisplay_NeverFoundReturnsWithinOneInterval(t *testing.T) {
	f := platformtest.New()
	fd := newFinder(t, f)

	for _, d := range []time.Duration{0, 100 * time.Millisecond, 250 * time.Millisecond} {
		start := time.Now()
		ok := fd.WaitToDisplay(context.Background(), locator.New(locator.ByName, "BUTTON", "Missing"), d)
		elapsed := time.Since(start)

		assert.False(t, ok)
		assert.GreaterOrEqual(t, elapsed, d-interval, "d=%s", d)
		assert.Less(t, elapsed, d+interval+50*time.Millisecond, "d=%s", d)
	}
}

func TestWaitToDisplay_FoundBeforeDeadline(t *testing.T) {
	f := platformtest.New()
	f.Reader.ReadFunc = func(n int) ([]model.Element, error) {
		if n < 4 {
			return nil, nil
		}
		return desktop(), nil
	}
	fd := newFinder(t, f)

	d := 500 * time.Millisecond
	start := time.Now()
	ok := fd.WaitToDisplay(context.Background(), locator.New(locator.ByName, "BUTTON", "OK"), d)
	assert.True(t, ok)
	assert.LessOrEqual(t, time.Since(start), d)
	assert.Equal(t, 4, f.Reader.ReadCount())

	assert.False(t, fd.WaitToDisplay(context.Background(), locator.New(locator.ByName, "BUTTON", "Offscreen"), 50*time.Millisecond))
}

func TestWaitToDisplay_FoundInFinalInterval(t *testing.T) {
	f := platformtest.New()
	start := time.Now()
	f.Reader.ReadFunc = func(int) ([]model.Element, error) {
		if time.Since(start) < 70*time.Millisecond {
			return nil, nil
		}
		return desktop(), nil
	}
	env := &element.Env{Input: f.Inputter, Screen: f.Screen, Actions: f.ActionPerformer}
	fd := New(&backend.Router{Tree: backend.NewTree(f.Reader, env, 100)}, f.Reader, env, search.New(1), Options{
		FindWait:     time.Second,
		PollInterval: 50 * time.Millisecond,
	}, zaptest.NewLogger(t))

	d := 100 * time.Millisecond
	start = time.Now()
	ok := fd.WaitToDisplay(context.Background(), locator.New(locator.ByName, "BUTTON", "OK"), d)
	assert.True(t, ok, "element appeared at 70ms of a %s wait", d)
	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestWait_MissReturnsAtDeadline(t *testing.T) {
	f := platformtest.New()
	f.Reader.Windows = desktop()
	fd := newFinder(t, f)
	fd.Context().Attempts = 5
	missing := locator.New(locator.ByName, "BUTTON", "Missing")

	for _, d := range []time.Duration{0, 100 * time.Millisecond} {
		start := time.Now()
		_, err := fd.Get(context.Background(), missing, d)
		elapsed := time.Since(start)
		assert.ErrorIs(t, err, ErrTimeout)
		assert.GreaterOrEqual(t, elapsed, d, "d=%s", d)
		assert.Less(t, elapsed, d+interval+50*time.Millisecond, "d=%s with 5 attempts", d)

		start = time.Now()
		assert.False(t, fd.WaitToEnable(context.Background(), locator.New(locator.ByName, "BUTTON", "Submit"), d))
		assert.Less(t, time.Since(start), d+interval+50*time.Millisecond, "d=%s with 5 attempts", d)
	}
}

func TestGet_BackendErrorsCountAsNotFoundYet(t *testing.T) {
	f := platformtest.New()
	f.Reader.ReadFunc = func(n int) ([]model.Element, error) {
		if n < 3 {
			return nil, errors.New("tree busy")
		}
		return desktop(), nil
	}
	fd := newFinder(t, f)

	el, err := fd.Get(context.Background(), locator.New(locator.ByName, "BUTTON", "OK"), time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5, el.(*element.Node).Source().ID)
}

func TestGet_TimeoutWrapsLastReason(t *testing.T) {
	f := platformtest.New()
	f.Reader.Windows = desktop()
	fd := newFinder(t, f)

	_, err := fd.Get(context.Background(), locator.New(locator.ByName, "BUTTON", "Missing"), 60*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, backend.ErrNotFound)
	assert.Contains(t, err.Error(), "NAME - BUTTON - Missing")

	_, err = fd.Get(context.Background(), locator.New(locator.ByImage, "SCREEN", "x"), time.Second)
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestWaitToVanish(t *testing.T) {
	f := platformtest.New()
	f.Reader.Windows = desktop()
	fd := newFinder(t, f)
	ctx := context.Background()

	assert.True(t, fd.WaitToVanish(ctx, locator.New(locator.ByName, "BUTTON", "Missing"), time.Second))
	assert.False(t, fd.WaitToVanish(ctx, locator.New(locator.ByName, "BUTTON", "OK"), 60*time.Millisecond))

	f.Screen.Virtual = true
	assert.True(t, fd.WaitToVanish(ctx, locator.New(locator.ByName, "BUTTON", "OK"), time.Second))

	f.Screen.Virtual = false
	f.Reader.ReadFunc = func(int) ([]model.Element, error) { return nil, errors.New("gone") }
	assert.True(t, fd.WaitToVanish(ctx, locator.New(locator.ByName, "BUTTON", "OK"), time.Second))
}

func TestWaitToEnable(t *testing.T) {
	f := platformtest.New()
	f.Reader.Windows = desktop()
	fd := newFinder(t, f)
	ctx := context.Background()

	assert.True(t, fd.WaitToEnable(ctx, locator.New(locator.ByName, "BUTTON", "OK"), time.Second))
	assert.False(t, fd.WaitToEnable(ctx, locator.New(locator.ByName, "BUTTON", "Submit"), 60*time.Millisecond))
	assert.False(t, fd.WaitToEnable(ctx, locator.New(locator.ByLocation, "1", "1"), time.Second))
}

func TestFindAll_PartialNameOrder(t *testing.T) {
	f := platformtest.New()
	f.Reader.Windows = desktop()
	fd := newFinder(t, f)

	all, err := fd.FindAll(context.Background(), locator.New(locator.ByPartialName, "EDIT", "User"))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Username", all[0].(*element.Node).Name())
	assert.Equal(t, "UserAge", all[1].(*element.Node).Name())
}

func TestGetWindow_CachedWithoutSecondSearch(t *testing.T) {
	f := platformtest.New()
	f.Reader.Windows = desktop()
	fd := newFinder(t, f)
	ctx := context.Background()

	first, err := fd.GetWindow(ctx, "Login")
	require.NoError(t, err)
	reads := f.Reader.ReadCount()

	second, err := fd.GetWindow(ctx, "Login")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, reads, f.Reader.ReadCount())
	assert.Equal(t, []platform.ActionOptions{{ID: 1, Action: platform.ActionFocus}}, f.ActionPerformer.Performed())

	fd.Invalidate("Login")
	third, err := fd.GetWindow(ctx, "Login")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, reads+1, f.Reader.ReadCount())
}

func TestGetWindow_AttemptBounded(t *testing.T) {
	f := platformtest.New()
	f.Reader.Windows = desktop()
	fd := newFinder(t, f)

	_, err := fd.GetWindow(context.Background(), "Nope")
	assert.ErrorIs(t, err, ErrWindowNotFound)
	assert.Equal(t, 3, f.Reader.ReadCount())

	f.Reader.ReadFunc = func(int) ([]model.Element, error) { return nil, errors.New("denied") }
	_, err = fd.GetPane(context.Background(), "Settings")
	assert.ErrorIs(t, err, ErrWindowNotFound)
	assert.Contains(t, err.Error(), "denied")
}

func TestPaneOperations(t *testing.T) {
	f := platformtest.New()
	f.Reader.Windows = desktop()
	fd := newFinder(t, f)
	ctx := context.Background()

	pane, err := fd.GetPane(ctx, "Settings")
	require.NoError(t, err)
	assert.Equal(t, 7, pane.Source().ID)

	require.NoError(t, fd.MaximizePane(ctx, "Settings"))
	require.NoError(t, fd.ClosePane(ctx, "Settings"))
	_, panes := fd.Cached()
	assert.Zero(t, panes)

	require.NoError(t, fd.MaximizeWindow(ctx, "Login"))
	require.NoError(t, fd.CloseWindow(ctx, "Login"))

	var actions []string
	for _, a := range f.ActionPerformer.Performed() {
		actions = append(actions, a.Action)
	}
	assert.Equal(t, []string{
		platform.ActionFocus, platform.ActionMaximize, platform.ActionClose,
		platform.ActionFocus, platform.ActionMaximize, platform.ActionClose,
	}, actions)

	fd.InvalidateAll()
	windows, panes := fd.Cached()
	assert.Zero(t, windows+panes)
}

func TestTimeoutAndClamp(t *testing.T) {
	f := platformtest.New()
	fd := newFinder(t, f)

	assert.Equal(t, time.Second, fd.Timeout())
	assert.Equal(t, 2*time.Second, fd.Clamp(10*time.Second))

	prev := fd.SetTimeout(300 * time.Millisecond)
	assert.Equal(t, time.Second, prev)
	assert.Equal(t, 300*time.Millisecond, fd.Clamp(10*time.Second))

	fd.SetTimeout(prev)
	assert.Equal(t, 1500*time.Millisecond, fd.Clamp(1500*time.Millisecond))
}
