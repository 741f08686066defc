//go:build robotgo && !tesseract

package robot

import "github.com/mj1618/desktop-runner/internal/platform"

func newRecognizer() platform.Recognizer {
	return nil
}
