package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bleviet/ipcraft/internal/analyzer"
	"github.com/bleviet/ipcraft/internal/config"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string
	busesFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ipcraft",
	Short: "Extract canonical interface records from VHDL and Verilog sources",
	Long: `ipcraft parses HDL module declarations and emits a canonical record
of the interface: ports with resolved widths, generics, clocks, resets
and detected bus interfaces (AXI4, AXI4-Lite, AXI-Stream, Avalon).

Quick start:
  ipcraft parse core.vhd     # Analyze one file
  ipcraft scan rtl/          # Analyze a whole source tree
  ipcraft watch rtl/         # Re-analyze on change, report deltas

Reference:
  ipcraft buses list         # Known bus definitions
  ipcraft buses show axi4l   # One definition in detail`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: ipcraft.yml when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")
	rootCmd.PersistentFlags().StringVar(&busesFile, "buses", "", "bus definition library file (default: built-in)")
}

// loadConfig resolves the effective configuration for a command rooted
// at root. Flags override file values.
func loadConfig(root string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load(root)
	}
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if busesFile != "" {
		cfg.Buses.Library = busesFile
	}
	return cfg, nil
}

// newLogger builds the process logger. Logs go to stderr so records
// written to stdout stay pipeable.
func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// newAnalyzer wires config, logger and bus library for a command rooted
// at root.
func newAnalyzer(root string) (*analyzer.Analyzer, zerolog.Logger, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := newLogger(cfg)

	a, err := analyzer.New(cfg, logger)
	if err != nil {
		return nil, logger, err
	}
	return a, logger, nil
}
