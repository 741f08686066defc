//go:build robotgo && tesseract

package robot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/mj1618/desktop-runner/internal/platform"
	"github.com/otiai10/gosseract/v2"
)

// Recognizer runs Tesseract over captured frames.
type Recognizer struct {
	Language string
}

func newRecognizer() platform.Recognizer {
	return &Recognizer{Language: "eng"}
}

func (r *Recognizer) Recognize(img image.Image) ([]platform.Word, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(r.Language); err != nil {
		return nil, err
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, err
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	offset := img.Bounds().Min
	words := make([]platform.Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, platform.Word{
			Text: b.Word,
			Bounds: platform.Bounds{
				X:      b.Box.Min.X + offset.X,
				Y:      b.Box.Min.Y + offset.Y,
				Width:  b.Box.Dx(),
				Height: b.Box.Dy(),
			},
			Confidence: b.Confidence,
		})
	}
	return words, nil
}

// SetLanguage selects the Tesseract language pack, e.g. "eng" or "deu".
func (r *Recognizer) SetLanguage(lang string) {
	if lang != "" {
		r.Language = lang
	}
}
