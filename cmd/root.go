package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/sitefix/internal/config"
)

var (
	cfgFile string
	rootDir string
	dryRun  bool
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sitefix",
	Short: "Maintenance edits for static website mirrors",
	Long:  `sitefix performs one-shot maintenance on a static website mirror:
reordering page sections delimited by comment markers, promoting one page
over another and rewriting the links to it, and reverting a dynamic-app
layout (templates/, static/) back to flat static files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
		logger, err = newLogger(cfg.Log, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFile, "config file path")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "mirror root directory (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "report changes without writing anything")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
