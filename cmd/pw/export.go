package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/pitchwalk/pkg/export"
	"github.com/vanderheijden86/pitchwalk/pkg/hooks"
	"github.com/vanderheijden86/pitchwalk/pkg/ui"
)

var (
	exportFormat      string
	exportOutput      string
	exportInteractive bool
	exportPreview     bool
	exportStamp       bool
	exportSkipIntro   bool
	exportNoHooks     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the deck as a markdown transcript or JSON",
	Example: `  pw export                      # markdown to stdout
  pw export --format json -o deck.json
  pw export --preview            # render the markdown in the terminal
  pw export -i                   # choose settings interactively`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", export.FormatMarkdown, "Output format: markdown or json")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	exportCmd.Flags().BoolVarP(&exportInteractive, "interactive", "i", false, "Choose export settings with a form")
	exportCmd.Flags().BoolVar(&exportPreview, "preview", false, "Render markdown for the terminal instead of raw output")
	exportCmd.Flags().BoolVar(&exportStamp, "stamp", false, "Include a generation timestamp")
	exportCmd.Flags().BoolVar(&exportSkipIntro, "no-intro", false, "Leave out the deck intro")
	exportCmd.Flags().BoolVar(&exportNoHooks, "no-hooks", false, "Skip .pitchwalk/hooks.yaml")
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	wc := export.WizardConfig{
		Format:     exportFormat,
		OutputPath: exportOutput,
		SkipIntro:  exportSkipIntro,
	}
	if exportInteractive {
		wc, err = export.RunWizard(wc)
		if errors.Is(err, export.ErrNotInteractive) {
			return fmt.Errorf("--interactive: %w", err)
		}
		if err != nil {
			return err
		}
	}

	opts := export.Options{SkipIntro: wc.SkipIntro}
	if exportStamp {
		opts.GeneratedAt = time.Now()
	}

	if exportPreview {
		if wc.Format == export.FormatJSON {
			return fmt.Errorf("--preview only applies to markdown")
		}
		r := ui.NewMarkdownRenderer(terminalWidth())
		_, err := fmt.Fprint(cmd.OutOrStdout(), r.Render(export.GenerateMarkdown(s.deck, opts)))
		return err
	}

	if wc.OutputPath == "" {
		return export.Write(cmd.OutOrStdout(), s.deck, wc.Format, opts)
	}

	// Hooks only run around file exports.
	var exec *hooks.Executor
	if !exportNoHooks {
		cfg, warnings, err := hooks.Load(".")
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
		}
		if !cfg.Empty() {
			exec = hooks.NewExecutor(cfg, hooks.ExportContext{
				Path:          wc.OutputPath,
				Format:        wc.Format,
				ScenarioCount: len(s.deck.Scenarios),
				RuleCount:     len(s.deck.Rules),
				Timestamp:     time.Now(),
			})
			defer func() { fmt.Fprint(cmd.ErrOrStderr(), exec.Summary()) }()
			if err := exec.Run(cmd.Context(), hooks.PreExport); err != nil {
				return err
			}
		}
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, s.deck, wc.Format, opts); err != nil {
		return err
	}
	if err := os.WriteFile(wc.OutputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", wc.OutputPath, buf.Len())

	if exec != nil {
		return exec.Run(cmd.Context(), hooks.PostExport)
	}
	return nil
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}
