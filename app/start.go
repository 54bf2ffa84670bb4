package app

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ai-scholar/scholar-admin/internal/config"
	"github.com/ai-scholar/scholar-admin/internal/daemon"
	"github.com/ai-scholar/scholar-admin/internal/logger"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration directory (default ./etc/)")
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")

	rootCmd.AddCommand(startCmd)
}

var (
	configPath string // Path to the configuration directory

	cfg     config.Config
	err     error
	devMode bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scholar-admin web service",
		PreRun: func(_ *cobra.Command, _ []string) {
			// optional .env file with AI_SCHOLAR_CONFIG_JSON overrides
			_ = godotenv.Load()

			if cfg, err = config.ReadConfig(configPath); err != nil {
				panic(err)
			}

			if devMode {
				cfg.DevMode = true
			}

			if err = logger.Init(cfg.Log); err != nil {
				panic(err)
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			d := daemon.New(&cfg)

			go func() {
				if err := d.Start(); err != nil {
					log.Error().Err(err).Msg("web service stopped")
				}
			}()

			d.WaitShutdown()

			return nil
		},
	}
)
