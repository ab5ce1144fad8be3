package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hed1ad/factoryguard/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "factoryguard",
	Short: "Machine anomaly detection from periodic sensor readings",
	Long: `factoryguard fits an isolation-forest anomaly model on historical
machine sensor data and serves per-reading anomaly verdicts over HTTP.`,
}

var cfgFile string

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults plus FACTORYGUARD_* env)")
}

func loadConfig() (config.Config, error) {
	return config.Load(cfgFile)
}

func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}
