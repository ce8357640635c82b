package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sofmeright/lockdown/src/output"
)

var (
	inspectKeys []string
	inspectJSON bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [manifest...]",
	Short: "List dependencies without a fixed version",
	Long: `Inspect each manifest (default: package.json) and print the offending
package, its version as written, and its line. Nothing is printed if any
manifest fails to parse.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringSliceVar(&inspectKeys, "keys", nil, "dependency sections to check (default: from config, then all six npm sections)")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print findings as JSON")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	inspector := newInspector(cmd, inspectKeys)

	var reports []output.ManifestReport
	for _, path := range manifestArgs(args) {
		findings, err := inspector.Inspect(path)
		if err != nil {
			return err
		}
		reports = append(reports, output.ManifestReport{File: path, Findings: findings})
	}

	w := cmd.OutOrStdout()
	if inspectJSON {
		return output.WriteFindingsJSON(w, reports)
	}
	output.FindingsTable(w, reports, output.UseColor())
	return nil
}
