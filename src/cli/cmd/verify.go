package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sofmeright/lockdown/src/lockdown"
	"github.com/sofmeright/lockdown/src/logging"
	"github.com/sofmeright/lockdown/src/output"
)

var (
	verifyKeys   []string
	verifyStrict bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify [manifest...]",
	Short: "Warn about dependencies without a fixed version",
	Long: `Inspect each manifest (default: package.json) and print one warning per
dependency whose version is not pinned.

On GitHub Actions warnings are written as workflow annotations; elsewhere
as "file:line: warning: message" lines. Warnings do not fail the command
unless --strict is set. A manifest that cannot be read or parsed always does.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringSliceVar(&verifyKeys, "keys", nil, "dependency sections to check (default: from config, then all six npm sections)")
	verifyCmd.Flags().BoolVar(&verifyStrict, "strict", false, "exit non-zero when any warning is emitted")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	sink := output.NewAnnotationSink(cmd.OutOrStdout(), output.DetectAnnotationFormat())
	reporter := lockdown.NewReporter(newInspector(cmd, verifyKeys), sink)

	for _, path := range manifestArgs(args) {
		before := sink.Count()
		if err := reporter.Verify(path); err != nil {
			return err
		}
		logging.L().Debug("verified manifest", zap.String("path", path), zap.Int("warnings", sink.Count()-before))
	}

	if verifyStrict && sink.Count() > 0 {
		return fmt.Errorf("verify failed: %d dependencies without a fixed version", sink.Count())
	}
	return nil
}

// newInspector builds an inspector from the --keys flag when given,
// otherwise from the loaded config.
func newInspector(cmd *cobra.Command, keys []string) *lockdown.Inspector {
	inspector := lockdown.NewInspector()
	switch {
	case cmd.Flags().Changed("keys"):
		inspector.SetDependencyKeys(append([]string{}, keys...))
	case cfg != nil:
		inspector.SetDependencyKeys(cfg.Lockdown.DependencyKeys)
	}
	logging.L().Debug("dependency keys", zap.Strings("keys", inspector.DependencyKeys()))
	return inspector
}

func manifestArgs(args []string) []string {
	if len(args) == 0 {
		return []string{"package.json"}
	}
	return args
}
