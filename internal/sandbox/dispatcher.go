package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shanti-jangam/collaborative-code-env/internal/domain"
)

// supportedList is the display form used in unsupported-language errors.
const supportedList = "JavaScript, TypeScript, Python, Java, and C++"

// Dispatcher validates execution requests, selects the language runner, and
// normalizes every outcome — including infrastructure failure — into an
// ExecutionResult. It never returns a Go error to its caller.
type Dispatcher struct {
	runners        map[string]Runner
	exec           Executor
	workspaces     *WorkspaceManager
	runTimeout     time.Duration
	compileTimeout time.Duration
}

// NewDispatcher creates a dispatcher with the five built-in runners.
func NewDispatcher(exec Executor, workspaces *WorkspaceManager, runTimeout, compileTimeout time.Duration) *Dispatcher {
	d := &Dispatcher{
		runners:        make(map[string]Runner),
		exec:           exec,
		workspaces:     workspaces,
		runTimeout:     runTimeout,
		compileTimeout: compileTimeout,
	}
	for _, r := range []Runner{
		JavaScriptRunner{},
		TypeScriptRunner{},
		PythonRunner{},
		JavaRunner{},
		CppRunner{},
	} {
		d.register(r)
	}
	return d
}

func (d *Dispatcher) register(r Runner) {
	d.runners[r.Language()] = r
	for _, alias := range r.Aliases() {
		d.runners[alias] = r
	}
}

// Execute runs a snippet and returns its captured output. Validation
// failures are rejected before any workspace or subprocess is allocated.
func (d *Dispatcher) Execute(ctx context.Context, req domain.ExecutionRequest) domain.ExecutionResult {
	if strings.TrimSpace(req.Code) == "" {
		return domain.ExecutionResult{Error: "Code cannot be empty"}
	}

	runner, ok := d.runners[strings.ToLower(req.Language)]
	if !ok {
		return domain.ExecutionResult{
			Error: fmt.Sprintf("Unsupported language: %s. Supported languages are: %s", req.Language, supportedList),
		}
	}

	start := time.Now()
	result := d.run(ctx, runner, req.Code)
	slog.Info("Execution finished",
		"language", runner.Language(),
		"duration", time.Since(start),
		"failed", result.Failed(),
	)
	return result
}

// run drives the four-step pipeline: wrap, materialize, build+run, cleanup.
// The workspace is released on every exit path.
func (d *Dispatcher) run(ctx context.Context, runner Runner, code string) domain.ExecutionResult {
	filename, harnessed := runner.Wrap(code)

	workspace, err := d.workspaces.Create()
	if err != nil {
		slog.Error("Failed to create workspace", "error", err)
		return domain.ExecutionResult{Error: err.Error()}
	}
	defer d.workspaces.Release(workspace)

	if err := os.WriteFile(filepath.Join(workspace, filename), []byte(harnessed), 0644); err != nil {
		slog.Error("Failed to materialize source", "error", err)
		return domain.ExecutionResult{Error: fmt.Sprintf("write source: %v", err)}
	}

	if buildArgs := runner.BuildArgs(filename); buildArgs != nil {
		_, stderr, err := d.exec.Run(ctx, workspace, buildArgs, d.compileTimeout)
		if err != nil {
			// Compile failure short-circuits: surface the compiler's
			// diagnostic verbatim, run nothing.
			diag := stderr
			if strings.TrimSpace(diag) == "" {
				diag = err.Error()
			}
			return domain.ExecutionResult{Error: diag}
		}
	}

	stdout, stderr, err := d.exec.Run(ctx, workspace, runner.RunArgs(filename), d.runTimeout)
	if errors.Is(err, ErrTimeout) {
		return domain.ExecutionResult{
			Error: fmt.Sprintf("Execution timed out after %s", d.runTimeout),
		}
	}
	if err != nil && stdout == "" && stderr == "" {
		return domain.ExecutionResult{Error: err.Error()}
	}

	// The caller always sees something: fall back to diagnostic output
	// when stdout is empty rather than reporting a misleadingly blank
	// success.
	output := stdout
	if output == "" {
		output = stderr
	}
	return domain.ExecutionResult{Output: output}
}
