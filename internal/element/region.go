package element

import (
	"fmt"

	"github.com/mj1618/desktop-runner/internal/platform"
)

// clickInset is how far Click lands inside the bottom-left corner.
const clickInset = 5

// Region is a located rectangle with no tree node behind it.
type Region struct {
	rect Rect
	env  *Env
}

// NewRegion returns a Region acting through env.
func NewRegion(rect Rect, env *Env) *Region {
	if env == nil {
		env = &Env{}
	}
	return &Region{rect: rect, env: env}
}

func (r *Region) sealed() {}

func (r *Region) Bounds() Rect { return r.rect }

func (r *Region) Capabilities() CapabilitySet { return regionCaps }

func (r *Region) String() string {
	return fmt.Sprintf("region(%d,%d %dx%d)", r.rect.X, r.rect.Y, r.rect.Width, r.rect.Height)
}

// Displayed reports whether the region still lies on the live screen.
func (r *Region) Displayed() bool {
	if r.rect.Empty() || r.env.Screen == nil {
		return false
	}
	w, h, err := r.env.Screen.ScreenSize()
	if err != nil {
		return false
	}
	screen := Rect{Width: w, Height: h}
	return screen.Contains(r.rect.X, r.rect.Y) &&
		screen.Contains(r.rect.X+r.rect.Width-1, r.rect.Y+r.rect.Height-1)
}

// Vanished reports whether the display itself is gone. This is a coarse
// screen-level check, not a per-region one.
func (r *Region) Vanished() bool {
	if r.env.Screen == nil {
		return true
	}
	_, _, err := r.env.Screen.ScreenSize()
	return err != nil
}

func (r *Region) input() (platform.Inputter, error) {
	if r.env.Input == nil {
		return nil, fmt.Errorf("input not available: %w", platform.ErrUnsupported)
	}
	return r.env.Input, nil
}

// clickPoint is 5px right of and 5px above the bottom-left corner.
func (r *Region) clickPoint() (int, int) {
	return r.rect.X + clickInset, r.rect.Y + r.rect.Height - clickInset
}

func (r *Region) Click() error {
	in, err := r.input()
	if err != nil {
		return err
	}
	x, y := r.clickPoint()
	return in.Click(x, y, platform.MouseLeft, 1)
}

func (r *Region) ClickCenter() error {
	in, err := r.input()
	if err != nil {
		return err
	}
	x, y := r.rect.Center()
	return in.Click(x, y, platform.MouseLeft, 1)
}

func (r *Region) RightClick() error {
	in, err := r.input()
	if err != nil {
		return err
	}
	x, y := r.rect.Center()
	return in.Click(x, y, platform.MouseRight, 1)
}

func (r *Region) DoubleClick() error {
	in, err := r.input()
	if err != nil {
		return err
	}
	x, y := r.rect.Center()
	return in.Click(x, y, platform.MouseLeft, 2)
}

func (r *Region) Hover() error {
	in, err := r.input()
	if err != nil {
		return err
	}
	return in.MoveMouse(r.rect.Center())
}

// Drag presses the left button at the center. Pair with DropAt.
func (r *Region) Drag() error {
	in, err := r.input()
	if err != nil {
		return err
	}
	x, y := r.rect.Center()
	return in.MouseDown(x, y, platform.MouseLeft)
}

// DropAt moves to the center and releases the left button.
func (r *Region) DropAt() error {
	in, err := r.input()
	if err != nil {
		return err
	}
	x, y := r.rect.Center()
	if err := in.MoveMouse(x, y); err != nil {
		return err
	}
	return in.MouseUp(x, y, platform.MouseLeft)
}

// Clear clicks the center, selects all and deletes.
func (r *Region) Clear() error {
	if err := r.ClickCenter(); err != nil {
		return err
	}
	if err := r.env.Input.KeyCombo([]string{"ctrl", "a"}); err != nil {
		return err
	}
	return r.env.Input.KeyCombo([]string{"delete"})
}

// Write clears the region and types text.
func (r *Region) Write(text string) error {
	if err := r.Clear(); err != nil {
		return err
	}
	return r.env.Input.TypeText(text, 0)
}

func (r *Region) SwipeUp(steps int) error {
	return r.swipe(steps)
}

func (r *Region) SwipeDown(steps int) error {
	return r.swipe(-steps)
}

func (r *Region) swipe(dy int) error {
	if err := r.Click(); err != nil {
		return err
	}
	x, y := r.clickPoint()
	return r.env.Input.Scroll(x, y, 0, dy)
}
