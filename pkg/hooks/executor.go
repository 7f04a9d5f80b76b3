package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/vanderheijden86/pitchwalk/pkg/debug"
)

// ExportContext describes the export a hook runs around. It reaches the hook
// as PW_* environment variables.
type ExportContext struct {
	Path          string
	Format        string
	ScenarioCount int
	RuleCount     int
	Timestamp     time.Time
}

// Env returns the context as environment assignments.
func (c ExportContext) Env() []string {
	return []string{
		"PW_EXPORT_PATH=" + c.Path,
		"PW_EXPORT_FORMAT=" + c.Format,
		fmt.Sprintf("PW_SCENARIO_COUNT=%d", c.ScenarioCount),
		fmt.Sprintf("PW_RULE_COUNT=%d", c.RuleCount),
		"PW_TIMESTAMP=" + c.Timestamp.UTC().Format(time.RFC3339),
	}
}

// Result records one hook run.
type Result struct {
	Hook     Hook
	Phase    Phase
	Success  bool
	Stdout   string
	Stderr   string
	Duration time.Duration
	Err      error
}

// Executor runs configured hooks and keeps their results.
type Executor struct {
	cfg     Config
	export  ExportContext
	results []Result
}

// NewExecutor creates an executor for one export.
func NewExecutor(cfg Config, export ExportContext) *Executor {
	return &Executor{cfg: cfg, export: export}
}

// Results returns every hook run so far, in order.
func (e *Executor) Results() []Result {
	return e.results
}

// Run executes the hooks of phase in order. A failing hook whose policy is
// "fail" stops the phase and its error is returned; "continue" hooks are
// recorded and skipped over.
func (e *Executor) Run(ctx context.Context, phase Phase) error {
	for _, h := range e.cfg.For(phase) {
		r := e.runHook(ctx, phase, h)
		e.results = append(e.results, r)
		if r.Success {
			continue
		}
		debug.Log("hooks: %s %q failed: %v", phase, h.Name, r.Err)
		if h.OnError == OnErrorFail {
			return fmt.Errorf("%s hook %q: %w", phase, h.Name, r.Err)
		}
	}
	return nil
}

func (e *Executor) runHook(ctx context.Context, phase Phase, h Hook) Result {
	ctx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", h.Command)
	cmd.Env = append(os.Environ(), e.export.Env()...)
	for k, v := range h.Env {
		cmd.Env = append(cmd.Env, k+"="+os.ExpandEnv(v))
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	r := Result{
		Hook:     h,
		Phase:    phase,
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		r.Err = fmt.Errorf("timed out after %s", h.Timeout)
	case err != nil:
		r.Err = err
	default:
		r.Success = true
	}
	return r
}

// Summary renders one line per hook run.
func (e *Executor) Summary() string {
	if len(e.results) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, r := range e.results {
		status := "ok"
		if !r.Success {
			status = "failed: " + r.Err.Error()
			if r.Stderr != "" {
				status += " (" + truncate(r.Stderr, 80) + ")"
			}
		}
		fmt.Fprintf(&sb, "hook %s %s [%s]: %s\n", r.Phase, r.Hook.Name, r.Duration.Round(time.Millisecond), status)
	}
	return sb.String()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
