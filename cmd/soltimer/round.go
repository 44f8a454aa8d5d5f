package main

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/soltimer-dev/soltimer/timemath"
)

var roundCmd = &cobra.Command{
	Use:   "round MILLIS",
	Short: "Apply official result rounding to an exact millisecond time",
	Args:  cobra.ExactArgs(1),
	Run:   roundCommand,
}

func roundCommand(cmd *cobra.Command, args []string) {
	exact, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		log.Fatal().Err(err).Msg("MILLIS must be an integer")
	}
	reported := timemath.RoundResult(exact)
	fmt.Printf("%d (%s)\n", reported, formatMillis(reported))
}
