package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/pitchwalk/pkg/content"
	"github.com/vanderheijden86/pitchwalk/pkg/export"
	"github.com/vanderheijden86/pitchwalk/pkg/metrics"
	"github.com/vanderheijden86/pitchwalk/pkg/stage"
	"github.com/vanderheijden86/pitchwalk/pkg/ui"
)

var (
	rulesJSON bool
	rulesPick bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules [n]",
	Short: "Print the deck's decision rules",
	Long: `Prints every decision rule, or only rule n (1-based, clamped to the
list). --pick chooses a rule interactively.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().BoolVar(&rulesJSON, "json", false, "Print rules as JSON")
	rulesCmd.Flags().BoolVar(&rulesPick, "pick", false, "Choose a rule from a menu")
}

func runRules(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	sel, err := stage.NewSelector(s.deck.Rules)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case rulesPick:
		i, err := pickRule(s.deck.Rules)
		if err != nil {
			return err
		}
		sel.Select(i)
	case len(args) == 1:
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid rule number %q", args[0])
		}
		sel.Select(n - 1)
	default:
		return printAllRules(cmd, sel)
	}

	metrics.RuleSelections.Inc()
	cur := sel.CurrentView()
	if rulesJSON {
		data, err := json.MarshalIndent(cur.Record, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err
	}
	_, err = fmt.Fprintln(out, ui.PlainRule(cur))
	return err
}

func printAllRules(cmd *cobra.Command, sel stage.Selector[content.Rule]) error {
	out := cmd.OutOrStdout()
	if rulesJSON {
		data, err := json.MarshalIndent(sel.Records(), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err
	}
	for i := 0; i < sel.Len(); i++ {
		sel.Select(i)
		if i > 0 {
			fmt.Fprintln(out)
		}
		if _, err := fmt.Fprintln(out, ui.PlainRule(sel.CurrentView())); err != nil {
			return err
		}
	}
	return nil
}

func pickRule(rules []content.Rule) (int, error) {
	if !export.IsTerminal() {
		return 0, fmt.Errorf("--pick: %w", export.ErrNotInteractive)
	}
	opts := make([]huh.Option[int], len(rules))
	for i, r := range rules {
		opts[i] = huh.NewOption(fmt.Sprintf("%d. %s", i+1, r.Condition), i)
	}
	var choice int
	form := export.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Decision rule").
				Options(opts...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return 0, err
	}
	return choice, nil
}
