package platform

import (
	"fmt"
	"runtime"
)

// Provider bundles all platform backends. Any field may be nil when the
// capability is not available on the current build.
type Provider struct {
	Reader           Reader
	Inputter         Inputter
	WindowManager    WindowManager
	Screenshotter    Screenshotter
	ActionPerformer  ActionPerformer
	ClipboardManager ClipboardManager
	Launcher         Launcher
	Recognizer       Recognizer
}

// ErrUnsupported is returned when no provider has been registered for this build.
var ErrUnsupported = fmt.Errorf("desktop-runner has no input backend on %s/%s; rebuild with -tags robotgo or use --snapshot", runtime.GOOS, runtime.GOARCH)

// NewProviderFunc is set by backend packages via init().
// See internal/platform/robot/init.go for the robotgo registration.
var NewProviderFunc func() (*Provider, error)

// NewProvider returns the registered Provider.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}

// Merge returns a copy of p where every nil capability is taken from other.
func (p *Provider) Merge(other *Provider) *Provider {
	merged := *p
	if other == nil {
		return &merged
	}
	if merged.Reader == nil {
		merged.Reader = other.Reader
	}
	if merged.Inputter == nil {
		merged.Inputter = other.Inputter
	}
	if merged.WindowManager == nil {
		merged.WindowManager = other.WindowManager
	}
	if merged.Screenshotter == nil {
		merged.Screenshotter = other.Screenshotter
	}
	if merged.ActionPerformer == nil {
		merged.ActionPerformer = other.ActionPerformer
	}
	if merged.ClipboardManager == nil {
		merged.ClipboardManager = other.ClipboardManager
	}
	if merged.Launcher == nil {
		merged.Launcher = other.Launcher
	}
	if merged.Recognizer == nil {
		merged.Recognizer = other.Recognizer
	}
	return &merged
}
