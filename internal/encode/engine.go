package encode

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jaa/music-convert/internal/plan"
)

// Engine executes conversion plans step by step through staging files.
// Every intermediate and final output lives under the staging directory;
// the engine never writes next to a source file.
type Engine struct {
	Registry *Registry
	Runner   ExecRunner
	LookPath func(name string) (string, error)
}

func NewEngine(registry *Registry, runner ExecRunner) *Engine {
	return &Engine{
		Registry: registry,
		Runner:   runner,
		LookPath: exec.LookPath,
	}
}

// ExecutePlan runs every step of the plan, feeding each step's output into
// the next. On success the final output stays in staging for the mover to
// pick up. On failure all staging files created so far are removed.
func (e *Engine) ExecutePlan(ctx context.Context, p plan.ConversionPlan, sourcePath, stagingDir string, timeout time.Duration) (Outcome, error) {
	if p.Empty() {
		return Outcome{}, fmt.Errorf("empty plan for %s", sourcePath)
	}

	var total time.Duration
	current := sourcePath

	for _, step := range p.Steps {
		adapter, ok := e.Registry.Lookup(step.Adapter)
		if !ok {
			e.discard(current, sourcePath)
			return Outcome{}, fmt.Errorf("no adapter registered for kind %q", step.Adapter)
		}

		bin, err := e.LookPath(adapter.Binary())
		if err != nil {
			e.discard(current, sourcePath)
			return Outcome{}, &Error{Reason: ReasonToolNotFound, Tool: adapter.Binary()}
		}

		output := filepath.Join(stagingDir, uuid.NewString()+step.Output.Extension())
		spec, err := adapter.BuildExecSpec(step, StepIO{Input: current, Output: output, Source: sourcePath}, timeout)
		if err != nil {
			e.discard(current, sourcePath)
			return Outcome{}, fmt.Errorf("build %s command: %w", adapter.Kind(), err)
		}
		spec.Bin = bin

		result := e.Runner.Run(ctx, spec)
		total += result.Duration

		if stepErr := stepError(adapter, result); stepErr != nil {
			e.discard(output, sourcePath)
			e.discard(current, sourcePath)
			return Outcome{}, stepErr
		}

		if err := validateOutput(output); err != nil {
			e.discard(output, sourcePath)
			e.discard(current, sourcePath)
			return Outcome{}, &Error{
				Reason: ReasonOutputValidationFailed,
				Tool:   adapter.Binary(),
				Detail: err.Error(),
			}
		}

		e.discard(current, sourcePath)
		current = output
	}

	info, err := os.Stat(current)
	if err != nil {
		return Outcome{}, &Error{Reason: ReasonOutputValidationFailed, Detail: err.Error()}
	}

	return Outcome{OutputPath: current, Bytes: info.Size(), Duration: total}, nil
}

// Analyze runs an album-level loudness analyzer over a set of files.
func (e *Engine) Analyze(ctx context.Context, analyzer Analyzer, paths []string, timeout time.Duration) error {
	if len(paths) == 0 {
		return nil
	}

	bin, err := e.LookPath(analyzer.Binary())
	if err != nil {
		return &Error{Reason: ReasonToolNotFound, Tool: analyzer.Binary()}
	}

	spec, err := analyzer.BuildAnalyzeSpec(paths, timeout)
	if err != nil {
		return fmt.Errorf("build %s command: %w", analyzer.Kind(), err)
	}
	spec.Bin = bin

	result := e.Runner.Run(ctx, spec)
	if stepErr := stepError(analyzer, result); stepErr != nil {
		return stepErr
	}
	return nil
}

type tool interface {
	Binary() string
}

func stepError(t tool, result ExecResult) error {
	switch {
	case result.TimedOut:
		return &Error{Reason: ReasonEncodeTimedOut, Tool: t.Binary()}
	case result.Interrupted:
		return &Error{Reason: ReasonInterrupted, Tool: t.Binary()}
	case result.ExitCode != 0:
		return &Error{
			Reason:   ReasonEncodeFailed,
			Tool:     t.Binary(),
			ExitCode: result.ExitCode,
			Detail:   lastLine(result.StderrTail),
		}
	default:
		return nil
	}
}

func validateOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("output missing: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("output %s is empty", filepath.Base(path))
	}
	return nil
}

// discard removes an intermediate staging file. The source is never
// touched; inputs are read-only throughout the pipeline.
func (e *Engine) discard(path, sourcePath string) {
	if path == "" || path == sourcePath {
		return
	}
	_ = os.Remove(path)
}

func lastLine(tail string) string {
	trimmed := strings.TrimSpace(tail)
	if trimmed == "" {
		return ""
	}
	if idx := strings.LastIndexByte(trimmed, '\n'); idx >= 0 {
		return strings.TrimSpace(trimmed[idx+1:])
	}
	return trimmed
}
