package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hed1ad/factoryguard/internal/scoring"
	"github.com/hed1ad/factoryguard/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve anomaly predictions over HTTP",
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

		// A missing artifact leaves the service up but degraded: every
		// prediction is rejected until it is redeployed with a model.
		svc := scoring.New()
		if err := svc.LoadArtifact(cfg.ModelPath); err != nil {
			log.Warn("model artifact not loaded, predictions will be rejected",
				zap.String("path", cfg.ModelPath),
				zap.Error(err),
			)
		} else {
			log.Info("model loaded", zap.String("path", cfg.ModelPath))
		}

		srv := server.New(svc, log)
		log.Info("listening", zap.String("addr", cfg.ListenAddr))
		return srv.Run(cfg.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
