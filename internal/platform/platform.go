package platform

import (
	"image"

	"github.com/mj1618/desktop-runner/internal/model"
)

// Reader reads the UI element tree from the OS accessibility layer.
type Reader interface {
	// ReadElements returns the top-level windows, each with its subtree.
	ReadElements(opts ReadOptions) ([]model.Element, error)

	// ListWindows returns all windows, optionally filtered.
	ListWindows(opts ListOptions) ([]model.Window, error)
}

// Inputter simulates mouse and keyboard input.
type Inputter interface {
	Click(x, y int, button MouseButton, count int) error
	MoveMouse(x, y int) error
	MouseDown(x, y int, button MouseButton) error
	MouseUp(x, y int, button MouseButton) error
	// Scroll wheels by dx, dy at (x, y), or at the pointer when x or y is
	// negative. Positive dy scrolls up.
	Scroll(x, y int, dx, dy int) error
	Drag(fromX, fromY, toX, toY int) error
	TypeText(text string, delayMs int) error
	KeyCombo(keys []string) error
	// ReleaseKeys lifts every modifier key that may have been left held.
	ReleaseKeys() error
}

// WindowManager manages window focus.
type WindowManager interface {
	FocusWindow(opts FocusOptions) error
	GetFrontmostApp() (string, int, error)
}

// Screenshotter captures the screen.
type Screenshotter interface {
	CaptureScreen() (image.Image, error)
	// ScreenSize returns the primary display size in pixels. An error means
	// no physical display is attached.
	ScreenSize() (width, height int, err error)
}

// ActionPerformer performs accessibility actions directly on UI elements.
type ActionPerformer interface {
	// PerformAction executes an accessibility action on an element identified
	// by its ID within the most recent tree read.
	PerformAction(opts ActionOptions) error
}

// ClipboardManager writes to the system clipboard.
type ClipboardManager interface {
	SetText(text string) error
}

// Launcher starts and stops applications on behalf of a run.
type Launcher interface {
	// Launch starts an application and returns its process ID.
	Launch(target string) (int, error)
	// Close stops every process started from target.
	Close(target string) error
	// CloseAll stops every process started by this Launcher.
	CloseAll() error
	// OpenURL opens a URL with the default handler.
	OpenURL(url string) error
}

// Recognizer runs optical character recognition over an image.
type Recognizer interface {
	Recognize(img image.Image) ([]Word, error)
}
