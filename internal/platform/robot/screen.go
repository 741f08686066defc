//go:build robotgo

package robot

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/mj1618/desktop-runner/internal/platform"
)

// Screenshotter captures the primary display.
type Screenshotter struct{}

// NewScreenshotter returns a robotgo Screenshotter.
func NewScreenshotter() *Screenshotter {
	return &Screenshotter{}
}

func (s *Screenshotter) CaptureScreen() (image.Image, error) {
	img, err := robotgo.CaptureImg()
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	return img, nil
}

func (s *Screenshotter) ScreenSize() (int, int, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("no display attached")
	}
	return w, h, nil
}

// WindowManager focuses windows by process.
type WindowManager struct{}

// NewWindowManager returns a robotgo WindowManager.
func NewWindowManager() *WindowManager {
	return &WindowManager{}
}

func (w *WindowManager) FocusWindow(opts platform.FocusOptions) error {
	if opts.PID != 0 {
		return robotgo.ActivePid(opts.PID)
	}
	name := opts.App
	if name == "" {
		name = opts.Window
	}
	if name == "" {
		return fmt.Errorf("specify app, window or pid")
	}
	pids, err := robotgo.FindIds(name)
	if err != nil {
		return fmt.Errorf("find %s: %w", name, err)
	}
	if len(pids) == 0 {
		return fmt.Errorf("no process matches %q", name)
	}
	return robotgo.ActivePid(pids[0])
}

func (w *WindowManager) GetFrontmostApp() (string, int, error) {
	return robotgo.GetTitle(), robotgo.GetPid(), nil
}
