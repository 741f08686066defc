package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mj1618/desktop-runner/internal/actions"
	"github.com/mj1618/desktop-runner/internal/annotate"
	"github.com/mj1618/desktop-runner/internal/config"
)

// ErrStepFailed marks a step whose failure survived the retry.
var ErrStepFailed = errors.New("step failed")

// StepError reports the step that stopped a run.
type StepError struct {
	Index int
	Step  Step
	// Err is ErrStepFailed for an expected failure, otherwise the
	// unexpected error the handler returned.
	Err    error
	Reason string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %s", e.Index, e.Step.Label(), e.Reason)
}

func (e *StepError) Unwrap() error { return e.Err }

// Options controls a Dispatcher.
type Options struct {
	// Retry re-runs a failed step once under the reduced timeout.
	Retry bool
	// Reduced is the retry timeout, at most config.MaxReducedTimeout.
	// Zero uses the maximum.
	Reduced   time.Duration
	StepDelay time.Duration
	// ArtifactDir receives an annotated screenshot of a failed step. Empty
	// disables capture.
	ArtifactDir string
}

// Summary is the outcome of one Run.
type Summary struct {
	RunID     string
	Steps     int
	Completed int
	Retried   int
	OK        bool
}

// Dispatcher runs steps one at a time against a registry.
type Dispatcher struct {
	registry *actions.Registry
	env      *actions.Env
	budget   *RetryBudget
	sink     Sink
	logger   *zap.Logger
	opts     Options
}

// New returns a Dispatcher for registry, whose steps act through env.
func New(registry *actions.Registry, env *actions.Env, opts Options, sink Sink, logger *zap.Logger) (*Dispatcher, error) {
	if opts.Reduced == 0 {
		opts.Reduced = config.MaxReducedTimeout
	}
	budget, err := NewRetryBudget(env.Finder, opts.Reduced)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = MultiSink(nil)
	}
	if env.Status == nil {
		env.Status = &actions.Status{}
	}
	return &Dispatcher{
		registry: registry,
		env:      env,
		budget:   budget,
		sink:     sink,
		logger:   logger,
		opts:     opts,
	}, nil
}

// Validate checks every step resolves to a registered signature.
func (d *Dispatcher) Validate(steps []Step) error {
	for _, s := range steps {
		if _, err := d.lookup(s); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) lookup(s Step) (actions.Descriptor, error) {
	desc, err := d.registry.Lookup(s.Action, len(s.Args))
	if err != nil {
		var cfgErr *actions.ConfigurationError
		if errors.As(err, &cfgErr) {
			withLine := *cfgErr
			withLine.Line = s.Line
			return desc, &withLine
		}
		return desc, err
	}
	return desc, nil
}

// Run validates steps and executes them in order. It stops at the first
// step whose failure survives the retry or that returns an unexpected error.
// Every application launched during the run is closed before Run returns.
func (d *Dispatcher) Run(ctx context.Context, steps []Step) (sum Summary, err error) {
	runID := uuid.NewString()
	sum = Summary{RunID: runID, Steps: len(steps)}
	logger := d.logger.With(zap.String("run_id", runID))

	defer func() {
		d.cleanup(logger)
		sum.OK = err == nil
		d.sink.Handle(Event{Kind: RunFinished, RunID: runID, OK: sum.OK})
	}()

	if err := d.Validate(steps); err != nil {
		return sum, err
	}
	d.releaseKeys(logger)

	for i, step := range steps {
		if i > 0 && d.opts.StepDelay > 0 {
			if err := wait(ctx, d.opts.StepDelay); err != nil {
				return sum, err
			}
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		retried, err := d.runStep(ctx, runID, i+1, step)
		if retried {
			sum.Retried++
		}
		if err != nil {
			return sum, err
		}
		sum.Completed++
	}
	return sum, nil
}

func (d *Dispatcher) runStep(ctx context.Context, runID string, index int, step Step) (retried bool, err error) {
	desc, err := d.lookup(step)
	if err != nil {
		return false, err
	}
	label := step.Label()
	event := Event{RunID: runID, Index: index, Step: step, Label: label}
	emit := func(kind EventKind, mutate func(*Event)) {
		e := event
		e.Kind = kind
		if mutate != nil {
			mutate(&e)
		}
		d.sink.Handle(e)
	}

	emit(StepStarted, nil)
	start := time.Now()

	status := d.env.Status
	err = d.invoke(ctx, desc, step.Args)
	if err == nil && !status.OK() && d.opts.Retry {
		retried = true
		reason := status.Reason()
		emit(StepRetried, func(e *Event) { e.Reason = reason })
		err = d.retry(ctx, desc, step.Args)
	}
	elapsed := time.Since(start)

	var stepErr *StepError
	switch {
	case err != nil:
		stepErr = &StepError{Index: index, Step: step, Err: err, Reason: err.Error()}
	case !status.OK():
		stepErr = &StepError{Index: index, Step: step, Err: ErrStepFailed, Reason: status.Reason()}
	}
	if stepErr == nil {
		emit(StepPassed, func(e *Event) { e.Elapsed = elapsed })
		return retried, nil
	}

	artifact := d.capture(runID, index, label, stepErr.Reason)
	emit(StepFailed, func(e *Event) {
		e.Reason = stepErr.Reason
		e.Elapsed = elapsed
		e.Artifact = artifact
	})
	return retried, stepErr
}

// retry re-invokes the step once with the reduced find timeout in force.
func (d *Dispatcher) retry(ctx context.Context, desc actions.Descriptor, args []string) error {
	restore := d.budget.Reduce()
	defer restore()
	return d.invoke(ctx, desc, args)
}

func (d *Dispatcher) invoke(ctx context.Context, desc actions.Descriptor, args []string) (err error) {
	d.env.Status.Reset()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", desc.Name, r)
		}
	}()
	return desc.Handler(ctx, args)
}

// capture writes an annotated screenshot outlining the current search scope
// and returns its path, or "" when capture is disabled or fails.
func (d *Dispatcher) capture(runID string, index int, label, reason string) string {
	screen := d.env.Provider.Screenshotter
	if d.opts.ArtifactDir == "" || screen == nil {
		return ""
	}
	var marks []annotate.Mark
	if anchor := d.env.Finder.Context().AnchorNode(); anchor != nil {
		marks = append(marks, annotate.Mark{Bounds: anchor.Bounds(), Label: anchor.Name()})
	}
	path := filepath.Join(d.opts.ArtifactDir, fmt.Sprintf("%s-step%03d.png", runID[:8], index))
	caption := fmt.Sprintf("step %d: %s: %s", index, label, reason)
	if err := annotate.Capture(screen, marks, caption, path); err != nil {
		d.logger.Warn("failed to capture failure screenshot", zap.Error(err))
		return ""
	}
	return path
}

func (d *Dispatcher) releaseKeys(logger *zap.Logger) {
	if in := d.env.Provider.Inputter; in != nil {
		if err := in.ReleaseKeys(); err != nil {
			logger.Warn("failed to release keys", zap.Error(err))
		}
	}
}

func (d *Dispatcher) cleanup(logger *zap.Logger) {
	d.releaseKeys(logger)
	if l := d.env.Provider.Launcher; l != nil {
		if err := l.CloseAll(); err != nil {
			logger.Error("failed to close applications", zap.Error(err))
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
