package actions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mj1618/desktop-runner/internal/backend"
	"github.com/mj1618/desktop-runner/internal/element"
	"github.com/mj1618/desktop-runner/internal/finder"
	"github.com/mj1618/desktop-runner/internal/model"
	"github.com/mj1618/desktop-runner/internal/platform"
	"github.com/mj1618/desktop-runner/internal/platform/platformtest"
	"github.com/mj1618/desktop-runner/internal/search"
)

type harness struct {
	fakes    *platformtest.Fakes
	env      *Env
	registry *Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	f := platformtest.New()
	f.Reader.Windows = desktop()
	elEnv := &element.Env{Input: f.Inputter, Screen: f.Screen, Actions: f.ActionPerformer}
	router := &backend.Router{
		Tree:     backend.NewTree(f.Reader, elEnv, 100),
		Location: backend.NewLocation(f.Screen, elEnv),
	}
	fd := finder.New(router, f.Reader, elEnv, search.New(1), finder.Options{
		FindWait:       100 * time.Millisecond,
		MaxWait:        150 * time.Millisecond,
		PollInterval:   10 * time.Millisecond,
		WindowAttempts: 2,
		Scale:          100,
	}, zaptest.NewLogger(t))
	env := &Env{Finder: fd, Provider: f.Provider, Logger: zaptest.NewLogger(t), BaseDir: t.TempDir()}
	return &harness{fakes: f, env: env, registry: NewBuiltins(env)}
}

func desktop() []model.Element {
	no := false
	return []model.Element{
		{ID: 1, Role: "window", Title: "Editor - notes.txt", Bounds: [4]int{0, 0, 800, 600}, Children: []model.Element{
			{ID: 2, Role: "input", Title: "Body", Identifier: "body", Bounds: [4]int{10, 10, 300, 200}},
			{ID: 3, Role: "btn", Title: "OK", Identifier: "okButton", Bounds: [4]int{10, 300, 60, 20}},
			{ID: 4, Role: "chk", Title: "Wrap", Bounds: [4]int{10, 330, 20, 20}},
			{ID: 5, Role: "btn", Title: "Save", Enabled: &no, Bounds: [4]int{80, 300, 60, 20}},
		}},
		{ID: 6, Role: "window", Title: "Other", Bounds: [4]int{900, 0, 300, 300}, Children: []model.Element{
			{ID: 7, Role: "btn", Title: "OK", Bounds: [4]int{910, 10, 60, 20}},
		}},
	}
}

// run invokes name with args after resetting status.
func (h *harness) run(t *testing.T, name string, args ...string) error {
	t.Helper()
	d, err := h.registry.Lookup(name, len(args))
	require.NoError(t, err)
	h.env.Status.Reset()
	return d.Handler(context.Background(), args)
}

func TestRegistry_LookupAndConfigurationError(t *testing.T) {
	r := NewRegistry()
	noop := func(context.Context, []string) error { return nil }
	r.Register("shortcut", []string{"key"}, noop)
	r.Register("shortcut", []string{"key1", "key2"}, noop)

	d, err := r.Lookup("shortcut", 2)
	require.NoError(t, err)
	assert.Equal(t, "shortcut <key1> <key2>", d.Usage())

	_, err = r.Lookup("shortcut", 4)
	var cfg *ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, []int{1, 2}, cfg.Known)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, `action "shortcut" takes 1 or 2 arguments, got 4`, err.Error())

	_, err = r.Lookup("fly", 0)
	assert.EqualError(t, err, `unknown action "fly"`)

	assert.Panics(t, func() { r.Register("shortcut", []string{"k"}, noop) })
}

func TestBuiltins_Signatures(t *testing.T) {
	h := newHarness(t)
	want := map[string][]int{
		"click": {3}, "clickCenter": {3}, "rightClick": {3}, "doubleClick": {3}, "hover": {3},
		"write": {4}, "check": {3}, "unCheck": {3}, "toggle": {4}, "drag": {3}, "drop": {3},
		"clear": {0}, "keyboardType": {1}, "paste": {1}, "shortcut": {1, 2, 3},
		"scrollDown": {1}, "scrollUp": {1},
		"launchApplication": {1}, "closeApplication": {1},
		"maximizeWindow": {1}, "maximizePane": {1}, "closeWindow": {1}, "closePane": {1},
		"focusWindow": {1}, "focusPane": {1}, "openURL": {1}, "launchURL": {1},
		"setRootSearch": {1}, "setScope": {1}, "setSearchAttempts": {1},
		"resetSearchContext": {0}, "invalidateWindow": {1},
		"waitTime": {1}, "waitToDisplay": {3, 4}, "waitToVanish": {3, 4}, "waitToEnable": {3, 4},
		"assertExist": {3}, "assertNotExist": {3}, "assertEnabled": {3}, "assertNotEnabled": {3},
		"assertName": {3}, "assertFileExists": {2}, "deleteFile": {2},
	}
	got := map[string][]int{}
	for _, d := range h.registry.Descriptors() {
		got[d.Name] = append(got[d.Name], d.Arity())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("registered signatures mismatch (-want +got):\n%s", diff)
	}

	d, err := h.registry.Lookup("waitToDisplay", 4)
	require.NoError(t, err)
	assert.True(t, d.HasLocator())
	d, err = h.registry.Lookup("assertName", 3)
	require.NoError(t, err)
	assert.False(t, d.HasLocator())
}

func TestClick_FoundAndMissing(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "click", "name", "BUTTON", "OK"))
	assert.True(t, h.env.Status.OK())
	assert.Equal(t, []string{"click 15,315 left x1"}, h.fakes.Inputter.Recorded())

	require.NoError(t, h.run(t, "click", "name", "BUTTON", "Missing"))
	assert.False(t, h.env.Status.OK())
	assert.Contains(t, h.env.Status.Reason(), "Missing")

	err := h.run(t, "click", "nonsense", "BUTTON", "OK")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestWrite_ClicksThenReplacesText(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "write", "id", "EDIT", "body", "hello"))
	assert.Equal(t, []string{
		"click 15,205 left x1",
		"click 160,110 left x1",
		"key ctrl+a",
		"key delete",
		"type hello",
	}, h.fakes.Inputter.Recorded())
}

func TestCheck_ForcesCheckBoxType(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "check", "name", "BUTTON", "Wrap"))
	assert.True(t, h.env.Status.OK())
	require.NoError(t, h.run(t, "unCheck", "name", "BUTTON", "Wrap"))
	assert.Equal(t, []platform.ActionOptions{{ID: 4, Action: platform.ActionToggle}}, h.fakes.ActionPerformer.Performed())

	err := h.run(t, "toggle", "name", "CHECKBOX", "Wrap", "maybe")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestToggle_RegionIsCapabilityError(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "toggle", "LOCATION", "10", "10", "true")
	assert.ErrorIs(t, err, element.ErrCapabilityUnsupported)
}

func TestKeyboardSteps(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "shortcut", "CONTROL", "shift", "s"))
	require.NoError(t, h.run(t, "keyboardType", "abc"))
	require.NoError(t, h.run(t, "scrollDown", "3"))
	require.NoError(t, h.run(t, "scrollUp", "2"))
	require.NoError(t, h.run(t, "clear"))
	assert.Equal(t, []string{
		"key ctrl+shift+s",
		"type abc",
		"scroll -1,-1 0,-3",
		"scroll -1,-1 0,2",
		"key ctrl+a",
		"key delete",
	}, h.fakes.Inputter.Recorded())

	assert.ErrorIs(t, h.run(t, "shortcut", "hyper"), ErrConfiguration)

	require.NoError(t, h.run(t, "scrollUp", "lots"))
	assert.False(t, h.env.Status.OK())
}

func TestPasteAndOpenURL(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "paste", "secret"))
	assert.Equal(t, "secret", h.fakes.Clipboard.Text)
	assert.Equal(t, []string{"key ctrl+a", "key delete", "key ctrl+v"}, h.fakes.Inputter.Recorded())

	h.fakes.Inputter.Calls = nil
	require.NoError(t, h.run(t, "openURL", "https://example.com"))
	assert.Equal(t, []string{"key ctrl+t", "key ctrl+v", "key enter"}, h.fakes.Inputter.Recorded())

	require.NoError(t, h.run(t, "launchURL", "https://example.com"))
	assert.Equal(t, []string{"https://example.com"}, h.fakes.Launcher.URLs)

	h.env.Provider.ClipboardManager = nil
	require.NoError(t, h.run(t, "paste", "x"))
	assert.False(t, h.env.Status.OK())
}

func TestApplications(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "launchApplication", "notepad.exe"))
	require.NoError(t, h.run(t, "closeApplication", "notepad.exe"))
	assert.Equal(t, []string{"notepad.exe"}, h.fakes.Launcher.Launched)
	assert.Equal(t, []string{"notepad.exe"}, h.fakes.Launcher.Closed)

	h.fakes.Launcher.Err = errors.New("not found")
	require.NoError(t, h.run(t, "launchApplication", "nope.exe"))
	assert.False(t, h.env.Status.OK())
}

func TestFocusWindow_AnchorsLaterSearches(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "focusWindow", "Other"))
	sc := h.env.Finder.Context()
	require.NotNil(t, sc.AnchorNode())
	assert.Equal(t, 6, sc.AnchorNode().Source().ID)
	assert.Equal(t, []platform.FocusOptions{{Window: "Other"}}, h.fakes.WindowManager.Focused)

	require.NoError(t, h.run(t, "clickCenter", "name", "BUTTON", "OK"))
	assert.Equal(t, []string{"click 940,20 left x1"}, h.fakes.Inputter.Recorded())

	require.NoError(t, h.run(t, "setRootSearch", "true"))
	assert.Nil(t, sc.AnchorNode())
	require.NoError(t, h.run(t, "setRootSearch", "false"))
	assert.NotNil(t, sc.AnchorNode())
	require.NoError(t, h.run(t, "resetSearchContext"))
	assert.Nil(t, sc.AnchorNode())

	err := h.run(t, "focusWindow", "Absent")
	require.Error(t, err)
	assert.ErrorIs(t, err, finder.ErrWindowNotFound)
	assert.False(t, h.env.Status.OK())
}

func TestSearchContextSteps(t *testing.T) {
	h := newHarness(t)
	sc := h.env.Finder.Context()

	require.NoError(t, h.run(t, "setScope", "children"))
	assert.Equal(t, search.Children, sc.Scope)
	assert.Error(t, h.run(t, "setScope", "everywhere"))

	require.NoError(t, h.run(t, "setSearchAttempts", "3"))
	assert.Equal(t, 3, sc.Attempts)
	assert.ErrorIs(t, h.run(t, "setSearchAttempts", "0"), ErrConfiguration)
	assert.ErrorIs(t, h.run(t, "setRootSearch", "yes please"), ErrConfiguration)
}

func TestWindowSteps(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "maximizeWindow", "Editor"))
	assert.True(t, h.env.Status.OK())
	require.NoError(t, h.run(t, "closeWindow", "Editor"))
	require.NoError(t, h.run(t, "invalidateWindow", "*"))

	require.NoError(t, h.run(t, "maximizePane", "Nothing"))
	assert.False(t, h.env.Status.OK())
	assert.Contains(t, h.env.Status.Reason(), "window not found")
}

func TestWaitSteps(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "waitToDisplay", "name", "BUTTON", "OK"))
	require.NoError(t, h.run(t, "waitToVanish", "name", "BUTTON", "Gone", "1"))
	require.NoError(t, h.run(t, "waitToEnable", "name", "BUTTON", "OK", "1"))

	err := h.run(t, "waitToDisplay", "name", "BUTTON", "Gone", "0.05")
	assert.ErrorIs(t, err, finder.ErrTimeout)
	assert.False(t, h.env.Status.OK())

	err = h.run(t, "waitToEnable", "name", "BUTTON", "Save")
	assert.ErrorIs(t, err, finder.ErrTimeout)

	assert.ErrorIs(t, h.run(t, "waitToDisplay", "name", "BUTTON", "OK", "soon"), ErrConfiguration)

	start := time.Now()
	require.NoError(t, h.run(t, "waitTime", "30"))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestAssertions(t *testing.T) {
	h := newHarness(t)
	cases := []struct {
		name string
		args []string
		ok   bool
	}{
		{"assertExist", []string{"name", "BUTTON", "OK"}, true},
		{"assertExist", []string{"name", "BUTTON", "Nope"}, false},
		{"assertNotExist", []string{"name", "BUTTON", "Nope"}, true},
		{"assertEnabled", []string{"name", "BUTTON", "OK"}, true},
		{"assertEnabled", []string{"name", "BUTTON", "Save"}, false},
		{"assertNotEnabled", []string{"name", "BUTTON", "Save"}, true},
		{"assertName", []string{"BUTTON", "okButton", "OK"}, true},
		{"assertName", []string{"BUTTON", "okButton", "Cancel"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, h.run(t, tc.name, tc.args...))
			assert.Equal(t, tc.ok, h.env.Status.OK(), h.env.Status.Reason())
		})
	}
}

func TestFileSteps(t *testing.T) {
	h := newHarness(t)
	dir := filepath.Join(h.env.BaseDir, "out")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.txt"), []byte("x"), 0o644))

	require.NoError(t, h.run(t, "assertFileExists", "report.txt", "out"))
	assert.True(t, h.env.Status.OK())

	require.NoError(t, h.run(t, "deleteFile", "report.txt", "out"))
	assert.True(t, h.env.Status.OK())
	assert.NoFileExists(t, filepath.Join(dir, "report.txt"))

	require.NoError(t, h.run(t, "deleteFile", "report.txt", "out"))
	assert.True(t, h.env.Status.OK())

	require.NoError(t, h.run(t, "assertFileExists", "report.txt", "out"))
	assert.False(t, h.env.Status.OK())
}
