package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vanderheijden86/pitchwalk/pkg/content"
	"github.com/vanderheijden86/pitchwalk/pkg/testutil"
	"github.com/vanderheijden86/pitchwalk/pkg/version"
)

// resetFlags puts every flag of cmd and its children back to its default so
// tests sharing the package-level command tree do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PW_DECK", "")
	t.Setenv("PW_REDUCED_MOTION", "")
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != version.String() {
		t.Errorf("got %q, want %q", out, version.String())
	}
}

func TestRulesCommandSingleRule(t *testing.T) {
	out, err := execute(t, "", "rules", "3")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	want := content.Default().Rules[2].Condition
	if !strings.HasPrefix(out, "[3/6] "+want) {
		t.Errorf("expected rule 3 heading, got:\n%s", out)
	}
}

func TestRulesCommandClampsAndListsAll(t *testing.T) {
	out, err := execute(t, "", "rules", "99")
	if err != nil {
		t.Fatalf("rules 99: %v", err)
	}
	if !strings.HasPrefix(out, "[6/6] ") {
		t.Errorf("expected clamp to last rule, got:\n%s", out)
	}

	out, err = execute(t, "", "rules")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if got := strings.Count(out, "Decision: "); got != 6 {
		t.Errorf("expected 6 rules, got %d", got)
	}

	if _, err := execute(t, "", "rules", "abc"); err == nil {
		t.Error("expected error for a non-numeric rule")
	}
}

func TestRulesCommandJSON(t *testing.T) {
	out, err := execute(t, "", "rules", "--json")
	if err != nil {
		t.Fatalf("rules --json: %v", err)
	}
	var rules []content.Rule
	if err := json.Unmarshal([]byte(out), &rules); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(rules) != 6 {
		t.Errorf("expected 6 rules, got %d", len(rules))
	}
}

func TestExportCommandJSON(t *testing.T) {
	out, err := execute(t, "", "export", "--format", "json")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var doc struct {
		Title     string `json:"title"`
		Scenarios []any  `json:"scenarios"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Title != content.Default().Title || len(doc.Scenarios) != 6 {
		t.Errorf("unexpected document: title=%q scenarios=%d", doc.Title, len(doc.Scenarios))
	}
}

func TestExportCommandToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.md")
	out, err := execute(t, "", "export", "-o", path)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out != "" {
		t.Errorf("expected nothing on stdout, got %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# "+content.Default().Title) {
		t.Errorf("unexpected markdown:\n%s", data)
	}
}

func TestExportCommandUnknownFormat(t *testing.T) {
	if _, err := execute(t, "", "export", "--format", "pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestPlayAutoReducedMotion(t *testing.T) {
	out, err := execute(t, "", "play", "--auto", "--dwell", "0", "--reduced-motion")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	for i := 1; i <= 6; i++ {
		if want := fmt.Sprintf("[%d/6] ", i); !strings.Contains(out, want) {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "System: "); got != 6 {
		t.Errorf("expected 6 system messages, got %d\n%s", got, out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "Complete.") {
		t.Errorf("expected output to end with Complete., got:\n%s", out)
	}
}

func TestPlayStdinCommands(t *testing.T) {
	out, err := execute(t, "n\n4\np\n1\n", "play", "--reduced-motion")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	last := -1
	for _, want := range []string{"[1/6] ", "[2/6] ", "[4/6] ", "[3/6] "} {
		i := strings.Index(out, want)
		if i < last {
			t.Errorf("expected %q after the previous heading:\n%s", want, out)
		}
		last = i
	}
	if !strings.Contains(out[last:], "[1/6] ") {
		t.Errorf("expected the final jump to step 1 to be printed:\n%s", out)
	}
}

func writeRevealConfig(t *testing.T, firstMs, secondMs int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pw.yaml")
	data := fmt.Sprintf("reveal:\n  first_ms: %d\n  second_ms: %d\n", firstMs, secondMs)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPlayRevealsLastCommandAfterEOF(t *testing.T) {
	cfg := writeRevealConfig(t, 10, 20)
	out, err := execute(t, "3\n", "--config", cfg, "play")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	i := strings.Index(out, "[3/6] ")
	if i < 0 {
		t.Fatalf("jump to step 3 was not printed:\n%s", out)
	}
	s := content.Default().Scenarios[2]
	for _, want := range []string{"Assistant: " + s.Assistant, "System: " + s.System} {
		if !strings.Contains(out[i:], want) {
			t.Errorf("expected %q after the step 3 heading:\n%s", want, out)
		}
	}
}

func TestPlayEmptyInputRevealsStartStep(t *testing.T) {
	cfg := writeRevealConfig(t, 10, 20)
	out, err := execute(t, "", "--config", cfg, "play", "--step", "2")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out, "[2/6] ") || !strings.Contains(out, "System: "+content.Default().Scenarios[1].System) {
		t.Errorf("expected step 2 to reveal fully:\n%s", out)
	}
}

func TestPlayQuitStopsImmediately(t *testing.T) {
	cfg := writeRevealConfig(t, 60000, 120000)
	out, err := execute(t, "q\n", "--config", cfg, "play")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if strings.Contains(out, "System: ") {
		t.Errorf("q should not wait for the reveal:\n%s", out)
	}
}

func TestPlayJSON(t *testing.T) {
	out, err := execute(t, "", "play", "--json", "--auto", "--dwell", "0", "--reduced-motion", "--step", "6")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	line := strings.SplitN(strings.TrimSpace(out), "\n", 2)[0]
	var ev playEvent
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	if ev.Index != 5 || ev.Len != 6 || !ev.Settled || ev.System == "" {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestConfigInitAndPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pw.yaml")
	out, err := execute(t, "", "--config", path, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("expected path in output, got %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if _, err := execute(t, "", "--config", path, "config", "init"); err == nil {
		t.Error("expected error when config exists without --force")
	}

	out, err = execute(t, "", "--config", path, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("got %q, want %q", out, path)
	}
}

func TestConfigShowReflectsFlags(t *testing.T) {
	out, err := execute(t, "", "config", "show", "--reduced-motion")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "reduced_motion: true") {
		t.Errorf("expected reduced_motion in output:\n%s", out)
	}
	if !strings.Contains(out, "# deck: built-in deck") {
		t.Errorf("expected built-in deck source:\n%s", out)
	}
}

func TestDeckFlagMissingFile(t *testing.T) {
	_, err := execute(t, "", "--deck", filepath.Join(t.TempDir(), "nope.yaml"), "rules")
	if err == nil {
		t.Fatal("expected error for a missing deck file")
	}
}

func TestDeckFlagLoadsFile(t *testing.T) {
	path, d := testutil.TempDeck(t, 3, 2)

	out, err := execute(t, "", "--deck", path, "rules")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if got := strings.Count(out, "Decision: "); got != len(d.Rules) {
		t.Errorf("expected %d rules, got %d", len(d.Rules), got)
	}

	out, err = execute(t, "", "--deck", path, "play", "--auto", "--dwell", "0", "--reduced-motion")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out, "[3/3] Step3") || !strings.Contains(out, "system note 3") {
		t.Errorf("expected generated scenarios in output:\n%s", out)
	}
}

func TestExportHooksRunAroundFileExport(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	marker := filepath.Join(dir, "post.txt")
	hooksYAML := "hooks:\n  post-export:\n    - command: echo \"$PW_EXPORT_FORMAT $PW_SCENARIO_COUNT\" > " + marker + "\n"
	if err := os.MkdirAll(filepath.Join(dir, ".pitchwalk"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".pitchwalk", "hooks.yaml"), []byte(hooksYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "", "export", "--format", "json", "-o", filepath.Join(dir, "out.json")); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("post-export hook did not run: %v", err)
	}
	if strings.TrimSpace(string(data)) != "json 6" {
		t.Errorf("hook saw %q", data)
	}

	_ = os.Remove(marker)
	if _, err := execute(t, "", "export", "--no-hooks", "-o", filepath.Join(dir, "out.md")); err != nil {
		t.Fatalf("export --no-hooks: %v", err)
	}
	if _, err := os.Stat(marker); err == nil {
		t.Error("hook ran despite --no-hooks")
	}
}

type fakeQuitter chan struct{}

func (q fakeQuitter) Quit() { close(q) }

func TestQuitOnDoneStopsProgramWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := make(fakeQuitter)
	go quitOnDone(ctx, make(chan struct{}), q)

	cancel()
	select {
	case <-q:
	case <-time.After(2 * time.Second):
		t.Fatal("program was not asked to quit after the context ended")
	}
}

func TestQuitOnDoneIgnoresFinishedProgram(t *testing.T) {
	runDone := make(chan struct{})
	close(runDone)
	q := make(fakeQuitter)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quitOnDone(ctx, runDone, q)
	select {
	case <-q:
		t.Error("Quit called for a program that already returned")
	default:
	}
}
