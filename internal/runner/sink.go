package runner

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventKind is what happened to a step.
type EventKind int

const (
	StepStarted EventKind = iota
	StepPassed
	StepRetried
	StepFailed
	RunFinished
)

func (k EventKind) String() string {
	switch k {
	case StepStarted:
		return "started"
	case StepPassed:
		return "passed"
	case StepRetried:
		return "retried"
	case StepFailed:
		return "failed"
	case RunFinished:
		return "finished"
	}
	return "unknown"
}

// Event is one report entry.
type Event struct {
	Kind  EventKind
	RunID string
	// Index is the 1-based step number; 0 for RunFinished.
	Index int
	Step  Step
	Label string
	// Reason explains a retry or failure.
	Reason   string
	Elapsed  time.Duration
	Artifact string
	// OK is the run outcome on RunFinished.
	OK bool
}

// Sink receives events in order from the dispatcher goroutine.
type Sink interface {
	Handle(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Handle(e Event) { f(e) }

// MultiSink fans events out to every sink in order.
type MultiSink []Sink

func (m MultiSink) Handle(e Event) {
	for _, s := range m {
		if s != nil {
			s.Handle(e)
		}
	}
}

// LogSink writes events to a zap logger.
type LogSink struct {
	Logger *zap.Logger
}

func (l LogSink) Handle(e Event) {
	fields := []zap.Field{zap.String("run_id", e.RunID)}
	if e.Kind != RunFinished {
		fields = append(fields, zap.Int("step", e.Index), zap.String("label", e.Label))
	}
	if e.Elapsed > 0 {
		fields = append(fields, zap.Duration("elapsed", e.Elapsed))
	}
	if e.Reason != "" {
		fields = append(fields, zap.String("reason", e.Reason))
	}
	if e.Artifact != "" {
		fields = append(fields, zap.String("artifact", e.Artifact))
	}
	switch e.Kind {
	case StepStarted:
		l.Logger.Debug("step started", fields...)
	case StepPassed:
		l.Logger.Info("step passed", fields...)
	case StepRetried:
		l.Logger.Warn("step failed, retrying", fields...)
	case StepFailed:
		l.Logger.Error("step failed", fields...)
	case RunFinished:
		fields = append(fields, zap.Bool("ok", e.OK))
		l.Logger.Info("run finished", fields...)
	}
}

// Report is the structured result of a run.
type Report struct {
	RunID     string       `yaml:"run_id"          json:"run_id"`
	OK        bool         `yaml:"ok"              json:"ok"`
	Steps     int          `yaml:"steps"           json:"steps"`
	Completed int          `yaml:"completed"       json:"completed"`
	Error     string       `yaml:"error,omitempty" json:"error,omitempty"`
	Results   []StepResult `yaml:"results"         json:"results"`
}

// StepResult is the outcome of a single step.
type StepResult struct {
	Step     int    `yaml:"step"               json:"step"`
	OK       bool   `yaml:"ok"                 json:"ok"`
	Label    string `yaml:"label"              json:"label"`
	Retried  bool   `yaml:"retried,omitempty"  json:"retried,omitempty"`
	Error    string `yaml:"error,omitempty"    json:"error,omitempty"`
	Elapsed  string `yaml:"elapsed,omitempty"  json:"elapsed,omitempty"`
	Artifact string `yaml:"artifact,omitempty" json:"artifact,omitempty"`
}

// Collector builds a Report from events.
type Collector struct {
	mu     sync.Mutex
	report Report
}

// NewCollector returns a Collector expecting total steps.
func NewCollector(total int) *Collector {
	return &Collector{report: Report{Steps: total, Results: []StepResult{}}}
}

func (c *Collector) Handle(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report.RunID = e.RunID
	switch e.Kind {
	case StepRetried:
		r := c.result(e)
		r.Retried = true
	case StepPassed:
		r := c.result(e)
		r.OK = true
		r.Error = ""
		r.Elapsed = e.Elapsed.Round(time.Millisecond).String()
		c.report.Completed++
	case StepFailed:
		r := c.result(e)
		r.OK = false
		r.Error = e.Reason
		r.Elapsed = e.Elapsed.Round(time.Millisecond).String()
		r.Artifact = e.Artifact
		c.report.Error = fmt.Sprintf("step %d: %s", e.Index, e.Reason)
	case RunFinished:
		c.report.OK = e.OK
	}
}

// result returns the entry for e's step, appending one if needed.
func (c *Collector) result(e Event) *StepResult {
	if n := len(c.report.Results); n > 0 && c.report.Results[n-1].Step == e.Index {
		return &c.report.Results[n-1]
	}
	c.report.Results = append(c.report.Results, StepResult{Step: e.Index, Label: e.Label})
	return &c.report.Results[len(c.report.Results)-1]
}

// Report returns a copy of the collected report.
func (c *Collector) Report() Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.report
	r.Results = append([]StepResult(nil), c.report.Results...)
	return r
}
