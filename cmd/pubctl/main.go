package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pubhub/config"
	"pubhub/database"
	"pubhub/providers/fakenames"
	"pubhub/services"
)

var (
	jsonOutput bool

	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
)

var rootCmd = &cobra.Command{
	Use:           "pubctl",
	Short:         "Ingest and list publications directly against the store",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cfg.LogDevelopment {
			logger, err = zap.NewDevelopment()
		} else {
			logger = zap.NewNop()
		}
		if err != nil {
			return err
		}
		db, err = database.Open(cfg, logger)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of reference lines")
	rootCmd.AddCommand(newIngestCmd(), newListCmd())
}

func newIngestService() *services.IngestService {
	return services.NewIngestService(db, fakenames.NewGenerator(cfg.NameSeed), logger, nil)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}
