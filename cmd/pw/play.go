package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/vanderheijden86/pitchwalk/pkg/content"
	"github.com/vanderheijden86/pitchwalk/pkg/metrics"
	"github.com/vanderheijden86/pitchwalk/pkg/stage"
)

var (
	playJSON  bool
	playAuto  bool
	playDwell time.Duration
	playStats bool
	playStep  int
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the walkthrough without the TUI",
	Long: `Runs the walkthrough with real reveal timers and prints every change.

Without --auto, commands are read from stdin, one per line:
  n, next        next step
  p, prev        previous step
  <number>       jump to step
  r              replay the current step
  q              quit

Input ends at q or EOF; after EOF the last selected step is still revealed
in full before pw exits. With --auto every step is played in order, waiting
--dwell after each one has fully revealed.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playJSON, "json", false, "Print one JSON object per view change")
	playCmd.Flags().BoolVar(&playAuto, "auto", false, "Advance through every step automatically")
	playCmd.Flags().DurationVar(&playDwell, "dwell", 2*time.Second, "Pause after a step is fully revealed (--auto)")
	playCmd.Flags().BoolVar(&playStats, "stats", false, "Print selection and reveal metrics on exit")
	playCmd.Flags().IntVar(&playStep, "step", 1, "Step to start on (1-based)")
}

// playEvent is the --json record for one published view.
type playEvent struct {
	Gen       uint64 `json:"gen"`
	Index     int    `json:"index"`
	Len       int    `json:"len"`
	Phase     string `json:"phase"`
	Scenario  string `json:"scenario"`
	User      string `json:"user"`
	Assistant string `json:"assistant,omitempty"`
	System    string `json:"system,omitempty"`
	Settled   bool   `json:"settled"`
}

func newPlayEvent(v stage.View[content.Scenario]) playEvent {
	ev := playEvent{
		Gen:      v.Gen,
		Index:    v.Index,
		Len:      v.Len,
		Phase:    v.Phase.String(),
		Scenario: v.Record.Name,
		User:     v.Record.User,
		Settled:  v.Settled(),
	}
	if v.Visible(stage.PhaseReply) {
		ev.Assistant = v.Record.Assistant
	}
	if v.Visible(stage.PhaseSystem) {
		ev.System = v.Record.System
	}
	return ev
}

func runPlay(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	walk, err := stage.NewWalkthrough(s.deck.Scenarios, s.timeline)
	if err != nil {
		return err
	}
	walk.GoTo(playStep - 1)
	player := stage.NewPlayer(walk)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := player.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	out := cmd.OutOrStdout()
	pr := &viewPrinter{w: out, json: playJSON}
	// settle carries the generation of the last stdin command once input ends.
	settle := make(chan uint64, 1)
	g.Go(func() error {
		views, pending := player.Views(), settle
		var last stage.View[content.Scenario]
		var final uint64
		var atEOF, printed bool
		for {
			select {
			case v, ok := <-views:
				if !ok {
					return nil
				}
				if err := pr.print(v); err != nil {
					player.Close()
					return err
				}
				last, printed = v, true
				if playAuto && v.Settled() {
					if err := autoAdvance(ctx, player, v); err != nil {
						return err
					}
				}
			case final = <-pending:
				atEOF, pending = true, nil
			}
			if atEOF && printed && last.Gen == final && last.Settled() {
				player.Close()
			}
		}
	})

	if !playAuto {
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) && !playJSON {
			fmt.Fprintln(cmd.ErrOrStderr(), "n/p to move, a number to jump, r to replay, q to quit")
		}
		lines := scanLines(in)
		g.Go(func() error { return playCommands(ctx, player, lines, settle) })
	}

	err = g.Wait()
	if playStats {
		printStats(out, metrics.TakeSnapshot())
	}
	return err
}

// autoAdvance waits the dwell time on a settled view and then moves on,
// closing the player after the last step.
func autoAdvance(ctx context.Context, player *stage.Player[content.Scenario], v stage.View[content.Scenario]) error {
	select {
	case <-ctx.Done():
		return nil
	case <-time.After(playDwell):
	}
	if v.Last() {
		player.Close()
		return nil
	}
	return ignoreStopped(player.Next(ctx))
}

// scanLines feeds r's lines into a channel. The goroutine ends at EOF; a
// blocked terminal read is abandoned when the command exits.
func scanLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	return lines
}

// playCommands forwards stdin commands to the player. q closes the player
// at once; at EOF the generation of the last command is sent on settle so the
// printer can close the player after that selection has fully revealed.
func playCommands(ctx context.Context, player *stage.Player[content.Scenario], lines <-chan string, settle chan<- uint64) error {
	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			v, err := player.Current(ctx)
			if err != nil {
				return ignoreStopped(err)
			}
			settle <- v.Gen
			return nil
		}

		var err error
		switch cmd := strings.ToLower(strings.TrimSpace(line)); cmd {
		case "":
			continue
		case "q", "quit", "exit":
			player.Close()
			return nil
		case "n", "next":
			err = player.Next(ctx)
		case "p", "prev", "previous":
			err = player.Previous(ctx)
		case "r", "replay":
			err = player.Replay(ctx)
		default:
			n, convErr := strconv.Atoi(cmd)
			if convErr != nil {
				continue
			}
			err = player.GoTo(ctx, n-1)
		}
		if err != nil {
			player.Close()
			return ignoreStopped(err)
		}
	}
}

func ignoreStopped(err error) error {
	if errors.Is(err, stage.ErrPlayerClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// viewPrinter writes only what changed since the previous view: a new
// selection prints its heading, each newly visible phase prints its message.
type viewPrinter struct {
	w    io.Writer
	json bool

	gen   uint64
	phase stage.Phase
	seen  bool
}

func (p *viewPrinter) print(v stage.View[content.Scenario]) error {
	if p.json {
		data, err := json.Marshal(newPlayEvent(v))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(p.w, "%s\n", data)
		return err
	}

	from := p.phase + 1
	if !p.seen || v.Gen != p.gen {
		s := v.Record
		heading := fmt.Sprintf("── [%d/%d] %s", v.Index+1, v.Len, s.Name)
		if s.Stage != "" {
			heading += " · " + s.Stage
		}
		if _, err := fmt.Fprintf(p.w, "\n%s\n", heading); err != nil {
			return err
		}
		from = stage.PhasePrompt
	}
	p.gen, p.phase, p.seen = v.Gen, v.Phase, true

	s := v.Record
	for ph := from; ph <= v.Phase; ph++ {
		var err error
		switch ph {
		case stage.PhasePrompt:
			_, err = fmt.Fprintf(p.w, "User: %s\n", s.User)
		case stage.PhaseReply:
			_, err = fmt.Fprintf(p.w, "Assistant: %s\n", s.Assistant)
			if err == nil && s.Action != "" {
				_, err = fmt.Fprintf(p.w, "  > %s\n", s.Action)
			}
		case stage.PhaseSystem:
			_, err = fmt.Fprintf(p.w, "System: %s\n", s.System)
			if err == nil && s.Intervention != "" {
				_, err = fmt.Fprintf(p.w, "Intervention: %s\n", s.Intervention)
			}
			if err == nil && v.Last() {
				_, err = fmt.Fprintln(p.w, "Complete.")
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func printStats(w io.Writer, snap metrics.Snapshot) {
	fmt.Fprintln(w, "\nmetrics:")
	for _, c := range metrics.AllCounters() {
		fmt.Fprintf(w, "  %-18s %d\n", c.Name(), snap.Counters[c.Name()])
	}
	for _, t := range snap.Timings {
		if t.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-18s n=%d avg=%.2fms max=%.2fms\n", t.Name, t.Count, t.AvgMs, t.MaxMs)
	}
}
