package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bleviet/ipcraft/internal/export"
)

var (
	scanFormat string
	scanOut    string
	scanStrict bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [root...]",
	Short: "Analyze every HDL source under the given roots",
	Long: `Walk the given roots (default: the current directory), analyze every
VHDL and Verilog file matching the configured include globs and print
the per-file reports.

Files that fail to parse are reported with their error and do not stop
the scan. Use --strict to exit non-zero when any file failed.

Examples:
  ipcraft scan
  ipcraft scan rtl/ ip/common/
  ipcraft scan rtl/ --format json -o reports.json
  ipcraft scan rtl/ --strict`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "", "output format: yaml or json")
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "", "write to file instead of stdout")
	scanCmd.Flags().BoolVar(&scanStrict, "strict", false, "fail when any file fails analysis")
}

func runScan(cmd *cobra.Command, args []string) error {
	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}

	a, logger, err := newAnalyzer(roots[0])
	if err != nil {
		return err
	}

	reports, err := a.Scan(cmd.Context(), roots)
	if err != nil {
		return err
	}

	modules, failures := 0, 0
	for i := range reports {
		if reports[i].Error != "" {
			failures++
			continue
		}
		stampDefaultVLNV(reports[i].Module, reports[i].Diagnostics.Language)
		modules++
	}
	logger.Info().
		Int("modules", modules).
		Int("failures", failures).
		Msg("scan finished")

	format, err := export.ParseFormat(scanFormat)
	if err != nil {
		return err
	}

	if scanOut != "" {
		if scanFormat == "" {
			format = export.FormatForPath(scanOut)
		}
		err = export.WriteFile(scanOut, format, reports)
	} else {
		err = export.Write(os.Stdout, format, reports)
	}
	if err != nil {
		return err
	}

	if scanStrict && failures > 0 {
		return fmt.Errorf("%d of %d files failed analysis", failures, len(reports))
	}
	return nil
}
