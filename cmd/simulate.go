package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hed1ad/factoryguard/internal/simulator"
)

var (
	simTarget   string
	simInterval time.Duration
	simCount    int
	simSeed     int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Stream synthetic sensor readings at the scoring API",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		seed := simSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}

		return simulator.Run(cmd.Context(), simulator.Params{
			TargetURL: simTarget,
			Interval:  simInterval,
			Count:     simCount,
			Seed:      seed,
		}, log)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simTarget, "target", "http://localhost:8000", "base URL of the scoring API")
	simulateCmd.Flags().DurationVar(&simInterval, "interval", time.Second, "delay between readings")
	simulateCmd.Flags().IntVar(&simCount, "count", 0, "readings to send (0 = run until interrupted)")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "random seed (0 = time-based)")
	rootCmd.AddCommand(simulateCmd)
}
