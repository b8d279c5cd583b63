package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/config"
)

var (
	cfg         *config.Config
	sessionFlag string
)

var rootCmd = &cobra.Command{
	Use:   "outreach-cli",
	Short: "Lead generation pipeline from Apollo to Instantly",
	Long:  "Fetches contacts from Apollo, filters them to verified business emails, removes leads already in Instantly and sends the rest to a campaign.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		if sessionFlag != "" {
			cfg.Pipeline.Session = sessionFlag
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sessionFlag, "session", "", "pipeline session id (default pipeline.session)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
