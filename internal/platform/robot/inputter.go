//go:build robotgo

package robot

import (
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/mj1618/desktop-runner/internal/platform"
)

// Inputter injects mouse and keyboard events with robotgo.
type Inputter struct{}

// NewInputter returns a robotgo Inputter.
func NewInputter() *Inputter {
	return &Inputter{}
}

func (i *Inputter) Click(x, y int, button platform.MouseButton, count int) error {
	robotgo.Move(x, y)
	if count == 2 {
		robotgo.Click(button.String(), true)
		return nil
	}
	for n := 0; n < count; n++ {
		robotgo.Click(button.String(), false)
	}
	return nil
}

func (i *Inputter) MoveMouse(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (i *Inputter) MouseDown(x, y int, button platform.MouseButton) error {
	robotgo.Move(x, y)
	return robotgo.Toggle(button.String())
}

func (i *Inputter) MouseUp(x, y int, button platform.MouseButton) error {
	robotgo.Move(x, y)
	return robotgo.Toggle(button.String(), "up")
}

func (i *Inputter) Scroll(x, y int, dx, dy int) error {
	if x >= 0 && y >= 0 {
		robotgo.Move(x, y)
	}
	robotgo.Scroll(dx, dy)
	return nil
}

func (i *Inputter) Drag(fromX, fromY, toX, toY int) error {
	robotgo.Move(fromX, fromY)
	if err := robotgo.Toggle("left"); err != nil {
		return err
	}
	robotgo.MoveSmooth(toX, toY)
	return robotgo.Toggle("left", "up")
}

func (i *Inputter) TypeText(text string, delayMs int) error {
	if delayMs <= 0 {
		robotgo.TypeStr(text)
		return nil
	}
	for _, r := range text {
		robotgo.TypeStr(string(r))
		time.Sleep(time.Duration(delayMs) * time.Millisecond)
	}
	return nil
}

// KeyCombo taps the last key while holding the others.
func (i *Inputter) KeyCombo(keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	key := robotgoKey(keys[len(keys)-1])
	mods := make([]interface{}, 0, len(keys)-1)
	for _, m := range keys[:len(keys)-1] {
		mods = append(mods, robotgoKey(m))
	}
	return robotgo.KeyTap(key, mods...)
}

func (i *Inputter) ReleaseKeys() error {
	for _, m := range platform.Modifiers {
		if err := robotgo.KeyToggle(robotgoKey(m), "up"); err != nil {
			return err
		}
	}
	return nil
}

// SetText writes text to the clipboard.
func (i *Inputter) SetText(text string) error {
	return robotgo.WriteAll(text)
}

func robotgoKey(key string) string {
	switch key {
	case "ctrl":
		return "control"
	case "cmd":
		return "command"
	case "esc":
		return "escape"
	default:
		return key
	}
}
