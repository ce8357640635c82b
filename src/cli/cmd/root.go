package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sofmeright/lockdown/src/config"
	"github.com/sofmeright/lockdown/src/logging"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lockdown",
	Short: "Flag dependencies without a pinned version",
	Long: `lockdown inspects package.json manifests and warns about dependencies
whose version is a range, a wildcard or empty instead of an exact release.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is the normal case.
		_ = godotenv.Load()
		logging.Init(verbose)

		// Skip config loading for commands that don't need it.
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		warnings, _ := config.Validate(cfg)
		for _, w := range warnings {
			logging.L().Warn("config", zap.String("issue", w))
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .lockdown.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Execute runs the root command.
func Execute() error {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
