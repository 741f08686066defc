//go:build robotgo

package robot

import (
	"github.com/mj1618/desktop-runner/internal/observability"
	"github.com/mj1618/desktop-runner/internal/platform"
	"github.com/mj1618/desktop-runner/internal/platform/process"
)

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		return &platform.Provider{
			Inputter:         NewInputter(),
			WindowManager:    NewWindowManager(),
			Screenshotter:    NewScreenshotter(),
			ClipboardManager: NewInputter(),
			Launcher:         process.NewLauncher(observability.GetLogger()),
			Recognizer:       newRecognizer(),
		}, nil
	}
}
