package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hed1ad/factoryguard/internal/trainer"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the anomaly model on historical sensor data and persist it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		return trainer.Run(cmd.Context(), trainer.Params{
			DataPath:      cfg.DataPath,
			ModelPath:     cfg.ModelPath,
			TempColumn:    cfg.TempColumn,
			RPMColumn:     cfg.RPMColumn,
			Trees:         cfg.Trees,
			SampleSize:    cfg.SampleSize,
			Contamination: cfg.Contamination,
			Seed:          cfg.Seed,
			NoiseBound:    cfg.NoiseBound,
		}, log)
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)
}
