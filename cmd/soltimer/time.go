package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/soltimer-dev/soltimer/record"
	"github.com/soltimer-dev/soltimer/session"
	"github.com/soltimer-dev/soltimer/timer"
)

var (
	configFlag string
)

var timeCmd = &cobra.Command{
	Use:   "time [PUZZLE]",
	Short: "Run an interactive solve attempt",
	Args:  cobra.MaximumNArgs(1),
	Run:   timeCommand,
}

func init() {
	timeCmd.Flags().StringVar(&configFlag, "config", "", "Puzzle configuration file (TOML)")
}

func timeCommand(cmd *cobra.Command, args []string) {
	cfg := session.DefaultConfig()
	if configFlag != "" {
		var err error
		cfg, err = session.LoadConfigFromFile(configFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Couldn't load puzzle config")
		}
	}
	puzzle := "333"
	if len(args) > 0 {
		puzzle = args[0]
	}
	spec, err := cfg.Lookup(puzzle)
	if err != nil {
		log.Fatal().Err(err).Msg("Unknown puzzle type")
	}

	store := record.NewLRUCache(record.NewMemoryStore(), 100)
	sess := session.New(puzzle, spec, store, nil)

	reader := bufio.NewReader(os.Stdin)
	waitEnter := func(prompt string) {
		fmt.Fprintln(os.Stderr, color.Cyan.Sprint(prompt))
		if _, err := reader.ReadString('\n'); err != nil {
			log.Fatal().Err(err).Msg("stdin closed")
		}
	}

	display := func(tm *timer.Timer) {
		switch tm.CurrentStage() {
		case timer.InspectionStarted:
			remaining := spec.InspectionMillis() - tm.ElapsedInspectionTime()
			if remaining < 0 {
				fmt.Fprintf(os.Stderr, "\r%s   ", color.Red.Sprintf("inspection +%s over", formatMillis(-remaining)))
			} else {
				fmt.Fprintf(os.Stderr, "\rinspection %s   ", formatMillis(remaining))
			}
		case timer.SolveStarted:
			fmt.Fprintf(os.Stderr, "\rsolve %s   ", formatMillis(tm.ElapsedSolveTime()))
		}
	}

	if spec.Inspection {
		waitEnter(fmt.Sprintf("Timing %s. Press Enter to start inspection...", puzzle))
		sess.StartInspection()
		sess.StartRefresh(display)
		waitEnter("")
	} else {
		waitEnter(fmt.Sprintf("Timing %s. Press Enter to start the solve...", puzzle))
	}

	sess.StartSolve()
	sess.StartRefresh(display)
	waitEnter("")

	result, _, err := sess.StopSolve()
	if err != nil {
		log.Fatal().Err(err).Msg("Couldn't record the attempt")
	}

	fmt.Fprintln(os.Stderr)
	if result.DNF {
		fmt.Fprintln(os.Stderr, color.Red.Sprint("Result: DNF"))
		return
	}
	fmt.Fprintln(os.Stderr, color.Green.Sprintf("Result: %s", formatMillis(result.ReportedMillis)))
	if result.ExactMillis != result.ReportedMillis {
		fmt.Fprintln(os.Stderr, color.Gray.Sprintf("  exact: %s", formatMillis(result.ExactMillis)))
	}
}

// formatMillis renders a non-negative duration as m:ss.cc or s.cc.
func formatMillis(ms int64) string {
	cs := ms / 10 % 100
	secs := ms / 1000 % 60
	mins := ms / 60_000
	if mins > 0 {
		return fmt.Sprintf("%d:%02d.%02d", mins, secs, cs)
	}
	return fmt.Sprintf("%d.%02d", secs, cs)
}
