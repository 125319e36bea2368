package encode

import (
	"time"

	"github.com/jaa/music-convert/internal/plan"
)

// StepIO names the files one step works with. Source is the original
// track; adapters that can copy metadata read it alongside Input.
type StepIO struct {
	Input  string
	Output string
	Source string
}

// Adapter wraps one external conversion tool. Implementations live in
// internal/adapters, one package per tool.
type Adapter interface {
	Kind() string
	Binary() string
	BuildExecSpec(step plan.Step, files StepIO, timeout time.Duration) (ExecSpec, error)
}

// Analyzer wraps a tool that computes loudness data for a whole album
// before conversion, writing it into the files in place.
type Analyzer interface {
	Kind() string
	Binary() string
	BuildAnalyzeSpec(paths []string, timeout time.Duration) (ExecSpec, error)
}

// Registry resolves the adapter kinds named by conversion plan steps.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Kind()] = a
	}
	return r
}

func (r *Registry) Lookup(kind string) (Adapter, bool) {
	a, ok := r.adapters[kind]
	return a, ok
}
