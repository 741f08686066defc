// Package annotate draws located or searched regions onto screenshots for
// failure artifacts.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mj1618/desktop-runner/internal/platform"
)

// basicfont.Face7x13 glyph size.
const (
	glyphWidth  = 7
	glyphHeight = 13
)

var (
	boxColor     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
	bannerColor  = color.RGBA{R: 0, G: 0, B: 0, A: 180}
)

// Mark is a screen rectangle with an optional label.
type Mark struct {
	Bounds platform.Bounds
	Label  string
}

// Annotate copies img and draws each mark plus a caption banner across the
// top.
func Annotate(img image.Image, marks []Mark, caption string) *image.RGBA {
	rgba := ToRGBA(img)
	for _, m := range marks {
		b := m.Bounds
		drawRectangle(rgba, b.X, b.Y, b.X+b.Width, b.Y+b.Height, boxColor)
		drawRectangle(rgba, b.X+1, b.Y+1, b.X+b.Width-1, b.Y+b.Height-1, boxColor)
		if m.Label != "" {
			cx, _ := b.Center()
			drawTextWithOutline(rgba, m.Label, cx, b.Y-glyphHeight/2-2, textColor, outlineColor)
		}
	}
	if caption != "" {
		bounds := rgba.Bounds()
		banner := image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+glyphHeight+8)
		draw.Draw(rgba, banner, image.NewUniform(bannerColor), image.Point{}, draw.Over)
		drawText(rgba, caption, bounds.Min.X+4, bounds.Min.Y+glyphHeight+2, textColor)
	}
	return rgba
}

// ToRGBA converts any image to RGBA.
func ToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

// Capture grabs the screen, annotates it and writes a PNG to path.
func Capture(screen platform.Screenshotter, marks []Mark, caption, path string) error {
	if screen == nil {
		return fmt.Errorf("screen capture not available: %w", platform.ErrUnsupported)
	}
	img, err := screen.CaptureScreen()
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	return SavePNG(path, Annotate(img, marks, caption))
}

// SavePNG writes img to path, creating parent directories.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func isWithinBounds(bounds image.Rectangle, x, y int) bool {
	return x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y
}

// drawRectangle draws a rectangle outline clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	bounds := img.Bounds()
	x1, y1 = max(x1, bounds.Min.X), max(y1, bounds.Min.Y)
	x2, y2 = min(x2, bounds.Max.X), min(y2, bounds.Max.Y)
	if x2 <= x1 || y2 <= y1 {
		return
	}
	for x := x1; x < x2; x++ {
		img.Set(x, y1, c)
		img.Set(x, y2-1, c)
	}
	for y := y1; y < y2; y++ {
		img.Set(x1, y, c)
		img.Set(x2-1, y, c)
	}
}

func drawText(img *image.RGBA, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// drawTextWithOutline centers text on (x, y) with a one-pixel outline.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, textColor, outlineColor color.Color) {
	offsetX := x - len(text)*glyphWidth/2
	offsetY := y + glyphHeight/2
	if !isWithinBounds(img.Bounds(), offsetX, offsetY) {
		offsetX = max(offsetX, img.Bounds().Min.X)
		offsetY = max(offsetY, img.Bounds().Min.Y+glyphHeight)
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawText(img, text, offsetX+dx, offsetY+dy, outlineColor)
		}
	}
	drawText(img, text, offsetX, offsetY, textColor)
}
