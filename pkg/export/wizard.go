package export

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when the wizard needs a terminal but stdin
// is not one.
var ErrNotInteractive = errors.New("an interactive terminal is required")

// WizardConfig is what the export wizard collects.
type WizardConfig struct {
	Format     string
	OutputPath string // empty means stdout
	SkipIntro  bool
}

// IsTerminal reports whether stdin is connected to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// NewForm creates a form themed like the rest of the CLI. Off a terminal
// huh's accessible mode is used so prompts still work over pipes.
func NewForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !IsTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// RunWizard asks for export settings, starting from defaults.
func RunWizard(defaults WizardConfig) (WizardConfig, error) {
	if !IsTerminal() {
		return defaults, ErrNotInteractive
	}

	cfg := defaults
	if cfg.Format == "" {
		cfg.Format = FormatMarkdown
	}
	includeIntro := !cfg.SkipIntro

	form := NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Export format").
				Options(
					huh.NewOption("Markdown transcript", FormatMarkdown),
					huh.NewOption("JSON document", FormatJSON),
				).
				Value(&cfg.Format),
			huh.NewInput().
				Title("Output file").
				Description("Leave empty to print to stdout").
				Value(&cfg.OutputPath),
			huh.NewConfirm().
				Title("Include the deck intro?").
				Value(&includeIntro),
		),
	)
	if err := form.Run(); err != nil {
		return defaults, fmt.Errorf("export wizard: %w", err)
	}

	cfg.OutputPath = strings.TrimSpace(cfg.OutputPath)
	cfg.SkipIntro = !includeIntro
	return cfg, nil
}
