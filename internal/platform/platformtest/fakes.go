// Package platformtest provides in-memory fakes of every platform port.
package platformtest

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/mj1618/desktop-runner/internal/model"
	"github.com/mj1618/desktop-runner/internal/platform"
)

// Inputter records every call as a short string, e.g. "click 10,20 left x2".
type Inputter struct {
	mu    sync.Mutex
	Calls []string
	Err   error
}

func (f *Inputter) record(format string, args ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
	return f.Err
}

// Recorded returns a copy of the recorded calls.
func (f *Inputter) Recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

func (f *Inputter) Click(x, y int, button platform.MouseButton, count int) error {
	return f.record("click %d,%d %s x%d", x, y, button, count)
}
func (f *Inputter) MoveMouse(x, y int) error { return f.record("move %d,%d", x, y) }
func (f *Inputter) MouseDown(x, y int, button platform.MouseButton) error {
	return f.record("down %d,%d %s", x, y, button)
}
func (f *Inputter) MouseUp(x, y int, button platform.MouseButton) error {
	return f.record("up %d,%d %s", x, y, button)
}
func (f *Inputter) Scroll(x, y int, dx, dy int) error {
	return f.record("scroll %d,%d %d,%d", x, y, dx, dy)
}
func (f *Inputter) Drag(fromX, fromY, toX, toY int) error {
	return f.record("drag %d,%d %d,%d", fromX, fromY, toX, toY)
}
func (f *Inputter) TypeText(text string, delayMs int) error { return f.record("type %s", text) }
func (f *Inputter) KeyCombo(keys []string) error {
	return f.record("key %s", strings.Join(keys, "+"))
}
func (f *Inputter) ReleaseKeys() error { return f.record("release") }

// Screen is a fixed-size screen backed by an in-memory image.
type Screen struct {
	Image   *image.RGBA
	Err     error
	Virtual bool
}

// NewScreen returns a white w x h screen.
func NewScreen(w, h int) *Screen {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return &Screen{Image: img}
}

// Paint copies src onto the screen with its top-left corner at (x, y).
func (s *Screen) Paint(src image.Image, x, y int) {
	b := src.Bounds()
	draw.Draw(s.Image, image.Rect(x, y, x+b.Dx(), y+b.Dy()), src, b.Min, draw.Src)
}

func (s *Screen) CaptureScreen() (image.Image, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Image, nil
}

func (s *Screen) ScreenSize() (int, int, error) {
	if s.Virtual {
		return 0, 0, fmt.Errorf("no display attached")
	}
	b := s.Image.Bounds()
	return b.Dx(), b.Dy(), nil
}

// Reader serves a fixed set of windows. ReadFunc, when set, overrides them
// and receives the 1-based read count.
type Reader struct {
	mu       sync.Mutex
	Windows  []model.Element
	ReadFunc func(n int) ([]model.Element, error)
	Reads    int
}

func (r *Reader) ReadElements(opts platform.ReadOptions) ([]model.Element, error) {
	r.mu.Lock()
	r.Reads++
	n := r.Reads
	fn := r.ReadFunc
	windows := r.Windows
	r.mu.Unlock()
	if fn != nil {
		return fn(n)
	}
	return windows, nil
}

func (r *Reader) ListWindows(opts platform.ListOptions) ([]model.Window, error) {
	elements, err := r.ReadElements(platform.ReadOptions{})
	if err != nil {
		return nil, err
	}
	var out []model.Window
	for _, el := range elements {
		out = append(out, model.Window{Title: el.Title, ID: el.ID, Bounds: el.Bounds})
	}
	return out, nil
}

// ReadCount returns the number of ReadElements calls so far.
func (r *Reader) ReadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Reads
}

// ActionPerformer records performed actions.
type ActionPerformer struct {
	mu      sync.Mutex
	Actions []platform.ActionOptions
	Err     error
}

func (a *ActionPerformer) PerformAction(opts platform.ActionOptions) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Actions = append(a.Actions, opts)
	return a.Err
}

// Performed returns the recorded actions.
func (a *ActionPerformer) Performed() []platform.ActionOptions {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]platform.ActionOptions(nil), a.Actions...)
}

// WindowManager records focus requests.
type WindowManager struct {
	Focused []platform.FocusOptions
}

func (w *WindowManager) FocusWindow(opts platform.FocusOptions) error {
	w.Focused = append(w.Focused, opts)
	return nil
}

func (w *WindowManager) GetFrontmostApp() (string, int, error) { return "fake", 1, nil }

// Clipboard holds the last text written.
type Clipboard struct{ Text string }

func (c *Clipboard) SetText(text string) error { c.Text = text; return nil }

// Launcher records launches and closes without starting processes.
type Launcher struct {
	mu            sync.Mutex
	Launched      []string
	Closed        []string
	URLs          []string
	CloseAllCalls int
	Err           error
}

func (l *Launcher) Launch(target string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return 0, l.Err
	}
	l.Launched = append(l.Launched, target)
	return 1000 + len(l.Launched), nil
}

func (l *Launcher) Close(target string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Closed = append(l.Closed, target)
	return nil
}

func (l *Launcher) CloseAll() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.CloseAllCalls++
	return nil
}

func (l *Launcher) OpenURL(url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.URLs = append(l.URLs, url)
	return nil
}

// CloseAllCount returns how often CloseAll ran.
func (l *Launcher) CloseAllCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.CloseAllCalls
}

// Recognizer returns fixed words.
type Recognizer struct {
	Words []platform.Word
	Err   error
}

func (r *Recognizer) Recognize(img image.Image) ([]platform.Word, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Words, nil
}

// Fakes bundles one of every fake together with the Provider wired to them.
type Fakes struct {
	Provider        *platform.Provider
	Inputter        *Inputter
	Screen          *Screen
	Reader          *Reader
	ActionPerformer *ActionPerformer
	WindowManager   *WindowManager
	Clipboard       *Clipboard
	Launcher        *Launcher
	Recognizer      *Recognizer
}

// New returns fakes over a 1920x1080 white screen and an empty desktop.
func New() *Fakes {
	f := &Fakes{
		Inputter:        &Inputter{},
		Screen:          NewScreen(1920, 1080),
		Reader:          &Reader{},
		ActionPerformer: &ActionPerformer{},
		WindowManager:   &WindowManager{},
		Clipboard:       &Clipboard{},
		Launcher:        &Launcher{},
		Recognizer:      &Recognizer{},
	}
	f.Provider = &platform.Provider{
		Reader:           f.Reader,
		Inputter:         f.Inputter,
		WindowManager:    f.WindowManager,
		Screenshotter:    f.Screen,
		ActionPerformer:  f.ActionPerformer,
		ClipboardManager: f.Clipboard,
		Launcher:         f.Launcher,
		Recognizer:       f.Recognizer,
	}
	return f
}
