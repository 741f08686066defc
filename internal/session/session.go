// Package session assembles the platform provider, search backends, finder,
// step registry and dispatcher for one automation session.
package session

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mj1618/desktop-runner/internal/actions"
	"github.com/mj1618/desktop-runner/internal/backend"
	"github.com/mj1618/desktop-runner/internal/config"
	"github.com/mj1618/desktop-runner/internal/element"
	"github.com/mj1618/desktop-runner/internal/finder"
	"github.com/mj1618/desktop-runner/internal/locator"
	"github.com/mj1618/desktop-runner/internal/platform"
	"github.com/mj1618/desktop-runner/internal/platform/snapshot"
	"github.com/mj1618/desktop-runner/internal/runner"
	"github.com/mj1618/desktop-runner/internal/search"
)

// Session owns the mutable search state shared by consecutive runs. It is
// not safe for concurrent use.
type Session struct {
	Config   *config.Config
	Provider *platform.Provider
	Images   *backend.ImageStore
	Finder   *finder.Finder
	Env      *actions.Env
	Registry *actions.Registry
	logger   *zap.Logger
}

// NewProvider returns the snapshot replay provider when snapshotFile is set,
// otherwise the provider registered for this build.
func NewProvider(snapshotFile string, logger *zap.Logger) (*platform.Provider, error) {
	if snapshotFile != "" {
		desktop, err := snapshot.Load(snapshotFile, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		return desktop.Provider(), nil
	}
	return platform.NewProvider()
}

// New wires every backend over provider using cfg.
func New(cfg *config.Config, provider *platform.Provider, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if r, ok := provider.Recognizer.(interface{ SetLanguage(string) }); ok && cfg.OCR.Language != "" {
		r.SetLanguage(cfg.OCR.Language)
	}

	elEnv := &element.Env{
		Input:   provider.Inputter,
		Screen:  provider.Screenshotter,
		Actions: provider.ActionPerformer,
	}
	images := backend.NewImageStore(cfg.Images.Dir)
	matcher := backend.NewMatcher(cfg.Visual.Threshold)
	router := &backend.Router{
		Tree:     backend.NewTree(provider.Reader, elEnv, cfg.Screen.Scale),
		Visual:   backend.NewVisual(provider.Screenshotter, images, matcher, elEnv),
		Text:     backend.NewText(provider.Screenshotter, provider.Recognizer, images, matcher, elEnv),
		Location: backend.NewLocation(provider.Screenshotter, elEnv),
	}
	fd := finder.New(router, provider.Reader, elEnv, search.New(cfg.Finder.SearchAttempts), finder.Options{
		FindWait:       cfg.Finder.FindWait,
		MaxWait:        cfg.Finder.MaxWait,
		PollInterval:   cfg.Finder.PollInterval,
		WindowAttempts: cfg.Finder.WindowAttempts,
		Scale:          cfg.Screen.Scale,
	}, logger.Named("finder"))

	env := &actions.Env{
		Finder:   fd,
		Provider: provider,
		Logger:   logger.Named("actions"),
	}
	return &Session{
		Config:   cfg,
		Provider: provider,
		Images:   images,
		Finder:   fd,
		Env:      env,
		Registry: actions.NewBuiltins(env),
		logger:   logger,
	}
}

// SetBaseDir resolves relative file step paths against dir.
func (s *Session) SetBaseDir(dir string) {
	s.Env.BaseDir = dir
}

// Dispatcher returns a dispatcher reporting to sink.
func (s *Session) Dispatcher(sink runner.Sink) (*runner.Dispatcher, error) {
	rc := s.Config.Runner
	return runner.New(s.Registry, s.Env, runner.Options{
		Retry:       rc.Retry,
		Reduced:     rc.ReducedTimeout,
		StepDelay:   rc.StepDelay,
		ArtifactDir: rc.ArtifactDir,
	}, sink, s.logger.Named("runner"))
}

// Run executes steps and returns the collected report. The report is
// populated even when err is non-nil.
func (s *Session) Run(ctx context.Context, steps []runner.Step, extra ...runner.Sink) (runner.Report, error) {
	collector := runner.NewCollector(len(steps))
	sinks := runner.MultiSink{collector, runner.LogSink{Logger: s.logger.Named("runner")}}
	sinks = append(sinks, extra...)
	d, err := s.Dispatcher(sinks)
	if err != nil {
		return runner.Report{}, err
	}
	_, err = d.Run(ctx, steps)
	report := collector.Report()
	if err != nil && report.Error == "" {
		report.Error = err.Error()
	}
	return report, err
}

// Validate checks every step against the registry and that every template
// image an IMAGE or OCR step names exists.
func (s *Session) Validate(steps []runner.Step) error {
	d, err := s.Dispatcher(nil)
	if err != nil {
		return err
	}
	if err := d.Validate(steps); err != nil {
		return err
	}
	return s.Preflight(steps)
}

// Preflight reports every missing template image in one error.
func (s *Session) Preflight(steps []runner.Step) error {
	var errs error
	for _, step := range steps {
		for _, name := range imageRefs(s.Registry, step) {
			if _, err := s.Images.Resolve(name); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("line %d: %s: %w", step.Line, step.Label(), err))
			}
		}
	}
	return errs
}

func imageRefs(r *actions.Registry, step runner.Step) []string {
	desc, err := r.Lookup(step.Action, len(step.Args))
	if err != nil || !desc.HasLocator() {
		return nil
	}
	spec, err := locator.Parse(step.Args[0], step.Args[1], step.Args[2])
	if err != nil {
		return nil
	}
	var refs []string
	switch spec.Kind {
	case locator.ByImage:
		if !spec.WholeScreen() {
			refs = append(refs, spec.Param1)
		}
		refs = append(refs, spec.Param2)
	case locator.ByOCR:
		if !spec.WholeScreen() {
			refs = append(refs, spec.Param1)
		}
	}
	return refs
}

// Find resolves spec once within the nominal timeout, or every match when
// all is set.
func (s *Session) Find(ctx context.Context, spec locator.Spec, all bool) ([]element.Element, error) {
	if all {
		return s.Finder.FindAll(ctx, spec)
	}
	el, err := s.Finder.Get(ctx, spec, s.Finder.Timeout())
	if err != nil {
		return nil, err
	}
	return []element.Element{el}, nil
}

// StepsDir returns the directory file steps resolve against for a step file.
func StepsDir(path string) string {
	if path == "" || path == "-" {
		return "."
	}
	return filepath.Dir(path)
}
