// Package snapshot replays a captured desktop tree file. It backs dry runs
// and authoring: tree queries, focus and toggle actions work against the
// in-memory tree while input is only logged.
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/mj1618/desktop-runner/internal/model"
	"github.com/mj1618/desktop-runner/internal/platform"
	"go.uber.org/zap"
)

// Desktop is the in-memory replay of a snapshot file.
type Desktop struct {
	mu     sync.Mutex
	snap   *model.Snapshot
	logger *zap.Logger
}

// Load reads path into a Desktop.
func Load(path string, logger *zap.Logger) (*Desktop, error) {
	snap, err := model.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	return New(snap, logger), nil
}

// New wraps an already decoded snapshot.
func New(snap *model.Snapshot, logger *zap.Logger) *Desktop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if snap.Screen == [2]int{} {
		snap.Screen = [2]int{1920, 1080}
	}
	return &Desktop{snap: snap, logger: logger.Named("snapshot")}
}

// Provider exposes the desktop through every platform port.
func (d *Desktop) Provider() *platform.Provider {
	return &platform.Provider{
		Reader:           d,
		Inputter:         &inputLog{logger: d.logger},
		WindowManager:    d,
		Screenshotter:    d,
		ActionPerformer:  d,
		ClipboardManager: &inputLog{logger: d.logger},
		Launcher:         &launchLog{logger: d.logger},
	}
}

// Snapshot returns a deep copy of the current state.
func (d *Desktop) Snapshot() *model.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := &model.Snapshot{Screen: d.snap.Screen}
	for _, w := range d.snap.Windows {
		w.Element = cloneElement(w.Element)
		cp.Windows = append(cp.Windows, w)
	}
	return cp
}

func (d *Desktop) ReadElements(opts platform.ReadOptions) ([]model.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []model.Element
	for _, w := range d.snap.Windows {
		if !windowMatches(w, opts.App, opts.Window, opts.PID) {
			continue
		}
		if opts.BBox != nil && !model.BoundsIntersect(w.Bounds, opts.BBox.Array()) {
			continue
		}
		out = append(out, truncate(cloneElement(w.Element), opts.Depth))
	}
	return out, nil
}

func (d *Desktop) ListWindows(opts platform.ListOptions) ([]model.Window, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []model.Window
	for _, w := range d.snap.Windows {
		if !windowMatches(w, opts.App, "", opts.PID) {
			continue
		}
		out = append(out, model.Window{
			App:     w.App,
			PID:     w.PID,
			Title:   w.Title,
			ID:      w.ID,
			Bounds:  w.Bounds,
			Focused: w.Focused,
		})
	}
	return out, nil
}

func (d *Desktop) FocusWindow(opts platform.FocusOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := -1
	for i, w := range d.snap.Windows {
		if opts.WindowID != 0 && w.ID == opts.WindowID ||
			opts.WindowID == 0 && windowMatches(w, opts.App, opts.Window, opts.PID) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("no window matches %+v", opts)
	}
	for i := range d.snap.Windows {
		d.snap.Windows[i].Focused = i == idx
	}
	return nil
}

func (d *Desktop) GetFrontmostApp() (string, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, w := range d.snap.Windows {
		if w.Focused {
			return w.App, w.PID, nil
		}
	}
	return "", 0, fmt.Errorf("no focused window")
}

// CaptureScreen renders every element as a gray box on a white canvas.
func (d *Desktop) CaptureScreen() (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	img := image.NewRGBA(image.Rect(0, 0, d.snap.Screen[0], d.snap.Screen[1]))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for _, flat := range model.FlattenElements(d.snap.Elements()) {
		b := flat.Bounds
		r := image.Rect(b[0], b[1], b[0]+b[2], b[1]+b[3]).Inset(1)
		draw.Draw(img, r, image.NewUniform(color.Gray{Y: 230}), image.Point{}, draw.Src)
	}
	return img, nil
}

func (d *Desktop) ScreenSize() (int, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snap.Screen[0], d.snap.Screen[1], nil
}

// PerformAction mutates the replayed tree the way the live desktop would.
func (d *Desktop) PerformAction(opts platform.ActionOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger.Debug("action", zap.Int("id", opts.ID), zap.String("action", opts.Action))

	for wi := range d.snap.Windows {
		w := &d.snap.Windows[wi]
		if w.ID == opts.ID {
			switch opts.Action {
			case platform.ActionClose:
				d.snap.Windows = append(d.snap.Windows[:wi], d.snap.Windows[wi+1:]...)
				return nil
			case platform.ActionMaximize:
				w.Bounds = [4]int{0, 0, d.snap.Screen[0], d.snap.Screen[1]}
				return nil
			}
		}
		if el := findMutable(&w.Element, opts.ID); el != nil {
			return applyAction(el, opts.Action)
		}
	}
	return fmt.Errorf("element %d not found", opts.ID)
}

func applyAction(el *model.Element, action string) error {
	switch action {
	case platform.ActionToggle:
		el.Selected = !el.Selected
	case platform.ActionFocus:
		el.Focused = true
	case platform.ActionPress, platform.ActionMaximize:
	case platform.ActionClose:
		el.Children = nil
		el.Bounds = [4]int{}
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
	return nil
}

func findMutable(el *model.Element, id int) *model.Element {
	if el.ID == id {
		return el
	}
	for i := range el.Children {
		if found := findMutable(&el.Children[i], id); found != nil {
			return found
		}
	}
	return nil
}

func windowMatches(w model.SnapshotWindow, app, title string, pid int) bool {
	if app != "" && !strings.EqualFold(w.App, app) {
		return false
	}
	if title != "" && !strings.HasPrefix(w.Title, title) {
		return false
	}
	return pid == 0 || w.PID == pid
}

func cloneElement(el model.Element) model.Element {
	if len(el.Children) > 0 {
		children := make([]model.Element, len(el.Children))
		for i, c := range el.Children {
			children[i] = cloneElement(c)
		}
		el.Children = children
	}
	return el
}

func truncate(el model.Element, depth int) model.Element {
	if depth <= 0 {
		return el
	}
	if depth == 1 {
		el.Children = nil
		return el
	}
	for i := range el.Children {
		el.Children[i] = truncate(el.Children[i], depth-1)
	}
	return el
}

// inputLog logs input instead of injecting it.
type inputLog struct {
	logger *zap.Logger
}

func (l *inputLog) log(op string, fields ...zap.Field) error {
	l.logger.Info(op, fields...)
	return nil
}

func (l *inputLog) Click(x, y int, button platform.MouseButton, count int) error {
	return l.log("click", zap.Int("x", x), zap.Int("y", y), zap.Stringer("button", button), zap.Int("count", count))
}
func (l *inputLog) MoveMouse(x, y int) error {
	return l.log("move", zap.Int("x", x), zap.Int("y", y))
}
func (l *inputLog) MouseDown(x, y int, button platform.MouseButton) error {
	return l.log("mouse down", zap.Int("x", x), zap.Int("y", y))
}
func (l *inputLog) MouseUp(x, y int, button platform.MouseButton) error {
	return l.log("mouse up", zap.Int("x", x), zap.Int("y", y))
}
func (l *inputLog) Scroll(x, y int, dx, dy int) error {
	return l.log("scroll", zap.Int("dx", dx), zap.Int("dy", dy))
}
func (l *inputLog) Drag(fromX, fromY, toX, toY int) error {
	return l.log("drag", zap.Int("from_x", fromX), zap.Int("from_y", fromY), zap.Int("to_x", toX), zap.Int("to_y", toY))
}
func (l *inputLog) TypeText(text string, delayMs int) error {
	return l.log("type", zap.String("text", text))
}
func (l *inputLog) KeyCombo(keys []string) error {
	return l.log("key", zap.Strings("keys", keys))
}
func (l *inputLog) ReleaseKeys() error { return nil }
func (l *inputLog) SetText(text string) error {
	return l.log("clipboard", zap.String("text", text))
}

// launchLog logs launches instead of starting processes.
type launchLog struct {
	logger *zap.Logger
}

func (l *launchLog) Launch(target string) (int, error) {
	l.logger.Info("launch", zap.String("target", target))
	return 0, nil
}
func (l *launchLog) Close(target string) error {
	l.logger.Info("close", zap.String("target", target))
	return nil
}
func (l *launchLog) CloseAll() error { return nil }
func (l *launchLog) OpenURL(url string) error {
	l.logger.Info("open url", zap.String("url", url))
	return nil
}
