package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wooxyyy/Instant-Wellnes-Kits/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "taxkit",
	Short: "New York sales tax computation service",
	Long:  "Resolves order coordinates to NY tax jurisdictions, looks up published Pub 718 rates, and computes exact sales tax with fixed-point arithmetic.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
