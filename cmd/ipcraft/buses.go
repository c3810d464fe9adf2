package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bleviet/ipcraft/internal/buslib"
)

var busesCmd = &cobra.Command{
	Use:   "buses",
	Short: "Inspect the bus definition library",
	Long: `Inspect the bus definitions the detector matches against, either the
built-in library or the file given with --buses.

Examples:
  ipcraft buses list
  ipcraft buses show axi4l
  ipcraft buses show AXI4-Lite --buses my_buses.yml`,
}

var busesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all bus definitions",
	RunE:  runBusesList,
}

var busesShowCmd = &cobra.Command{
	Use:   "show <type>",
	Short: "Show one bus definition in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runBusesShow,
}

func init() {
	rootCmd.AddCommand(busesCmd)

	busesCmd.AddCommand(busesListCmd)
	busesCmd.AddCommand(busesShowCmd)
}

func loadBusLibrary() (*buslib.Library, error) {
	a, _, err := newAnalyzer(".")
	if err != nil {
		return nil, err
	}
	return a.Library(), nil
}

func runBusesList(cmd *cobra.Command, args []string) error {
	lib, err := loadBusLibrary()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tKIND\tSIGNALS\tDESCRIPTION")
	fmt.Fprintln(w, "---\t----\t-------\t-----------")

	for _, key := range lib.Keys() {
		def, _ := lib.Get(key)
		fmt.Fprintf(w, "%s\t%s\t%d required, %d optional\t%s\n",
			def.Key, def.Kind, def.RequiredCount(), len(def.Ports)-def.RequiredCount(), def.Description)
	}

	return w.Flush()
}

func runBusesShow(cmd *cobra.Command, args []string) error {
	lib, err := loadBusLibrary()
	if err != nil {
		return err
	}

	def, ok := lib.Get(args[0])
	if !ok {
		return fmt.Errorf("unknown bus type %q (known: %s)", args[0], strings.Join(lib.Keys(), ", "))
	}

	fmt.Printf("Key:          %s\n", def.Key)
	if def.Description != "" {
		fmt.Printf("Description:  %s\n", def.Description)
	}
	if !def.BusType.IsZero() {
		fmt.Printf("Bus type:     %s\n", def.BusType)
	}
	fmt.Printf("Kind:         %s\n", def.Kind)

	if len(def.SuggestedPrefixes) > 0 {
		modes := make([]string, 0, len(def.SuggestedPrefixes))
		for mode := range def.SuggestedPrefixes {
			modes = append(modes, mode)
		}
		sort.Strings(modes)
		parts := make([]string, 0, len(modes))
		for _, mode := range modes {
			parts = append(parts, fmt.Sprintf("%s: %s", mode, def.SuggestedPrefixes[mode]))
		}
		fmt.Printf("Prefixes:     %s\n", strings.Join(parts, ", "))
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIGNAL\tDIRECTION\tWIDTH\tPRESENCE")
	fmt.Fprintln(w, "------\t---------\t-----\t--------")
	for _, p := range def.Ports {
		width := fmt.Sprintf("%d", p.Width)
		if p.Width == 0 {
			width = "per instance"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Direction, width, p.Presence)
	}
	return w.Flush()
}
