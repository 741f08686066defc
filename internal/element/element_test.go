package element

import (
	"errors"
	"testing"

	"github.com/mj1618/desktop-runner/internal/model"
	"github.com/mj1618/desktop-runner/internal/platform"
	"github.com/mj1618/desktop-runner/internal/platform/platformtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv() (*Env, *platformtest.Fakes) {
	f := platformtest.New()
	return &Env{Input: f.Inputter, Screen: f.Screen, Actions: f.ActionPerformer}, f
}

func TestRegion_ClickOperations(t *testing.T) {
	env, f := newEnv()
	r := NewRegion(Rect{X: 100, Y: 200, Width: 40, Height: 20}, env)

	require.NoError(t, r.Click())
	require.NoError(t, r.ClickCenter())
	require.NoError(t, r.RightClick())
	require.NoError(t, r.DoubleClick())
	require.NoError(t, r.Hover())

	assert.Equal(t, []string{
		"click 105,215 left x1",
		"click 120,210 left x1",
		"click 120,210 right x1",
		"click 120,210 left x2",
		"move 120,210",
	}, f.Inputter.Recorded())
}

func TestRegion_DragAndDrop(t *testing.T) {
	env, f := newEnv()
	src := NewRegion(Rect{X: 0, Y: 0, Width: 10, Height: 10}, env)
	dst := NewRegion(Rect{X: 100, Y: 100, Width: 10, Height: 10}, env)

	require.NoError(t, src.Drag())
	require.NoError(t, dst.DropAt())
	assert.Equal(t, []string{"down 5,5 left", "move 105,105", "up 105,105 left"}, f.Inputter.Recorded())
}

func TestRegion_WriteClearsFirst(t *testing.T) {
	env, f := newEnv()
	r := NewRegion(Rect{X: 0, Y: 0, Width: 100, Height: 20}, env)

	require.NoError(t, r.Write("hello"))
	assert.Equal(t, []string{"click 50,10 left x1", "key ctrl+a", "key delete", "type hello"}, f.Inputter.Recorded())
}

func TestRegion_Swipe(t *testing.T) {
	env, f := newEnv()
	r := NewRegion(Rect{X: 0, Y: 0, Width: 100, Height: 100}, env)

	require.NoError(t, r.SwipeUp(3))
	require.NoError(t, r.SwipeDown(2))
	calls := f.Inputter.Recorded()
	assert.Equal(t, "scroll 5,95 0,3", calls[1])
	assert.Equal(t, "scroll 5,95 0,-2", calls[3])
}

func TestRegion_DisplayedAndVanished(t *testing.T) {
	env, f := newEnv()
	on := NewRegion(Rect{X: 10, Y: 10, Width: 50, Height: 50}, env)
	off := NewRegion(Rect{X: 1900, Y: 10, Width: 50, Height: 50}, env)

	assert.True(t, on.Displayed())
	assert.False(t, off.Displayed())
	assert.False(t, on.Vanished())

	f.Screen.Virtual = true
	assert.False(t, on.Displayed())
	assert.True(t, on.Vanished())
}

func TestRegion_NoInput(t *testing.T) {
	r := NewRegion(Rect{Width: 10, Height: 10}, nil)
	assert.ErrorIs(t, r.Click(), platform.ErrUnsupported)
	assert.True(t, r.Vanished())
}

func TestCapabilityLaw(t *testing.T) {
	env, _ := newEnv()
	region := NewRegion(Rect{Width: 10, Height: 10}, env)
	node := NewNode(model.Element{ID: 1, Role: "chk"}, 100, env)

	_, err := Require(region, CapToggle)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapabilityUnsupported))
	var capErr *CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, CapToggle, capErr.Capability)

	n, err := Require(node, CapToggle|CapIntrospect)
	require.NoError(t, err)
	assert.Same(t, node, n)

	assert.True(t, region.Capabilities().Has(CapClick|CapDrag|CapText))
	assert.False(t, region.Capabilities().Has(CapFocus))
	assert.True(t, node.Capabilities().Has(regionCaps))
}

func TestCapability_String(t *testing.T) {
	assert.Equal(t, "toggle", CapToggle.String())
	assert.Equal(t, "click|hover", (CapClick | CapHover).String())
	assert.Equal(t, "none", Capability(0).String())
}

func TestNode_ScaleNormalization(t *testing.T) {
	n := NewNode(model.Element{Bounds: [4]int{300, 150, 90, 60}}, 150, nil)
	assert.Equal(t, Rect{X: 200, Y: 100, Width: 60, Height: 40}, n.Bounds())

	assert.Equal(t, Rect{X: 3, Y: 4, Width: 5, Height: 6}, ScaleBounds([4]int{3, 4, 5, 6}, 0))
}

func TestNode_ToggleUsesAccessibilityAction(t *testing.T) {
	env, f := newEnv()
	n := NewNode(model.Element{ID: 7, Role: "chk", Selected: false}, 100, env)

	require.NoError(t, n.Check())
	require.NoError(t, n.Check())
	assert.True(t, n.Checked())
	require.NoError(t, n.Uncheck())

	assert.Equal(t, []platform.ActionOptions{
		{ID: 7, Action: platform.ActionToggle},
		{ID: 7, Action: platform.ActionToggle},
	}, f.ActionPerformer.Performed())
}

func TestNode_ToggleFallsBackToClick(t *testing.T) {
	env, f := newEnv()
	env.Actions = nil
	n := NewNode(model.Element{ID: 7, Role: "chk", Selected: true, Bounds: [4]int{0, 0, 20, 20}}, 100, env)

	require.NoError(t, n.Toggle(true))
	assert.Empty(t, f.Inputter.Recorded())
	require.NoError(t, n.Toggle(false))
	assert.Equal(t, []string{"click 5,15 left x1"}, f.Inputter.Recorded())
}

func TestNode_Introspection(t *testing.T) {
	f := false
	n := NewNode(model.Element{ID: 3, Role: "btn", Title: "OK", Identifier: "ok", Value: "v", Enabled: &f}, 100, nil)
	assert.Equal(t, "OK", n.Name())
	assert.Equal(t, "ok", n.AutomationID())
	assert.Equal(t, "v", n.Value())
	assert.False(t, n.Enabled())
	assert.Equal(t, `BUTTON "OK" (id 3)`, n.String())
}

func TestNode_WindowControlRequiresActions(t *testing.T) {
	env, f := newEnv()
	n := NewNode(model.Element{ID: 1, Role: "window"}, 100, env)
	require.NoError(t, n.Maximize())
	require.NoError(t, n.Close())
	require.NoError(t, n.Focus())
	assert.Len(t, f.ActionPerformer.Performed(), 3)

	bare := NewNode(model.Element{ID: 1, Role: "window"}, 100, &Env{})
	assert.ErrorIs(t, bare.Maximize(), ErrCapabilityUnsupported)
}
