// Package actions holds the step registry and the built-in steps.
package actions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrConfiguration marks a step list that cannot run as written.
var ErrConfiguration = errors.New("configuration error")

// Handler runs one step. Expected failures (element not found, assertion
// false) are reported through Status; a returned error is unexpected and
// stops the run.
type Handler func(ctx context.Context, args []string) error

// Descriptor is one registered step signature.
type Descriptor struct {
	Name string
	// Params names each positional argument; its length is the arity.
	Params  []string
	Handler Handler
}

// Arity returns the number of arguments the step takes.
func (d Descriptor) Arity() int { return len(d.Params) }

// HasLocator reports whether the first three arguments form a locator.
func (d Descriptor) HasLocator() bool {
	return len(d.Params) >= 3 && d.Params[0] == "locator"
}

// Usage renders the signature, e.g. "click <locator> <param1> <param2>".
func (d Descriptor) Usage() string {
	var b strings.Builder
	b.WriteString(d.Name)
	for _, p := range d.Params {
		b.WriteString(" <" + p + ">")
	}
	return b.String()
}

type key struct {
	name  string
	arity int
}

// Registry maps (name, arity) to a step handler.
type Registry struct {
	entries map[key]Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[key]Descriptor)}
}

// Register adds a step. Registering the same name and arity twice panics.
func (r *Registry) Register(name string, params []string, h Handler) {
	k := key{name, len(params)}
	if _, dup := r.entries[k]; dup {
		panic(fmt.Sprintf("actions: duplicate registration of %s/%d", name, len(params)))
	}
	r.entries[k] = Descriptor{Name: name, Params: params, Handler: h}
}

// Lookup returns the step registered for name and arity.
func (r *Registry) Lookup(name string, arity int) (Descriptor, error) {
	if d, ok := r.entries[key{name, arity}]; ok {
		return d, nil
	}
	return Descriptor{}, &ConfigurationError{Name: name, Arity: arity, Known: r.Arities(name)}
}

// Arities lists the arities registered for name in ascending order.
func (r *Registry) Arities(name string) []int {
	var out []int
	for k := range r.entries {
		if k.name == name {
			out = append(out, k.arity)
		}
	}
	sort.Ints(out)
	return out
}

// Descriptors returns every registered step sorted by name, then arity.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.entries))
	for _, d := range r.entries {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Arity() < out[j].Arity()
	})
	return out
}

// Len returns the number of registered signatures.
func (r *Registry) Len() int { return len(r.entries) }

// ConfigurationError reports a step with no matching registration.
type ConfigurationError struct {
	Name  string
	Arity int
	// Known lists the arities registered under Name, if any.
	Known []int
	Line  int
}

func (e *ConfigurationError) Error() string {
	var where string
	if e.Line > 0 {
		where = fmt.Sprintf("line %d: ", e.Line)
	}
	if len(e.Known) == 0 {
		return fmt.Sprintf("%sunknown action %q", where, e.Name)
	}
	return fmt.Sprintf("%saction %q takes %s arguments, got %d", where, e.Name, joinInts(e.Known), e.Arity)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, " or ")
}

// Status is the shared pass/fail flag a handler sets for the dispatcher.
type Status struct {
	failed bool
	reason string
}

// Reset marks the status passed.
func (s *Status) Reset() {
	s.failed = false
	s.reason = ""
}

// Fail marks the status failed with a reason.
func (s *Status) Fail(format string, args ...interface{}) {
	s.failed = true
	s.reason = fmt.Sprintf(format, args...)
}

// OK reports whether no failure has been recorded since the last Reset.
func (s *Status) OK() bool { return !s.failed }

// Reason returns the last failure reason.
func (s *Status) Reason() string { return s.reason }
