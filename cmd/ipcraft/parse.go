package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bleviet/ipcraft/internal/export"
	"github.com/bleviet/ipcraft/internal/hdl"
	"github.com/bleviet/ipcraft/internal/model"
)

var (
	parseFormat string
	parseOut    string
	parseVLNV   string
	parseFull   bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Analyze one HDL source file and print its interface record",
	Long: `Parse a VHDL or Verilog source file, resolve port widths, classify
clocks and resets, detect bus interfaces and print the canonical
module record.

By default only the record is printed. Use --full for the complete
report including parse diagnostics and bus match candidates.

Examples:
  ipcraft parse core.vhd
  ipcraft parse core.v --format json
  ipcraft parse core.vhd --vlnv acme.com:ip:core:2.1
  ipcraft parse core.vhd -o core.yml`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "", "output format: yaml or json")
	parseCmd.Flags().StringVarP(&parseOut, "out", "o", "", "write to file instead of stdout")
	parseCmd.Flags().StringVar(&parseVLNV, "vlnv", "", "record identity as vendor:library:name:version")
	parseCmd.Flags().BoolVar(&parseFull, "full", false, "print the full report with diagnostics")
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]

	a, _, err := newAnalyzer(filepath.Dir(path))
	if err != nil {
		return err
	}

	rep, err := a.AnalyzeFile(path)
	if err != nil {
		return err
	}

	if parseVLNV != "" {
		v, err := model.ParseVLNV(parseVLNV)
		if err != nil {
			return err
		}
		rep.Module.VLNV = v
	} else {
		stampDefaultVLNV(rep.Module, rep.Diagnostics.Language)
	}

	var payload interface{} = rep.Module
	if parseFull {
		payload = rep
	}

	format, err := export.ParseFormat(parseFormat)
	if err != nil {
		return err
	}

	if parseOut != "" {
		if parseFormat == "" {
			format = export.FormatForPath(parseOut)
		}
		return export.WriteFile(parseOut, format, payload)
	}
	return export.Write(os.Stdout, format, payload)
}

// stampDefaultVLNV gives a record the identity the product assigns when
// none is supplied: the vendor marks the record as parsed-from-source
// and the library carries the source language.
func stampDefaultVLNV(mod *model.Module, lang hdl.Language) {
	if mod == nil || !mod.VLNV.IsZero() {
		return
	}
	mod.VLNV = model.VLNV{
		Vendor:  "parsed",
		Library: string(lang),
		Name:    mod.Name,
		Version: "1.0",
	}
}
