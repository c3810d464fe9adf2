package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bleviet/ipcraft/internal/analyzer"
	"github.com/bleviet/ipcraft/internal/export"
	"github.com/bleviet/ipcraft/internal/model"
)

var (
	watchFormat string
	watchEmit   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Re-analyze HDL sources on change and report interface deltas",
	Long: `Watch a file or directory and re-analyze HDL sources as they change.

Each successful re-analysis is compared against the previous record and
the interface delta (ports, generics, clocks, resets and bus interfaces
added or removed) is logged. A change that fails to parse keeps the
last good record. Stop with Ctrl-C.

Examples:
  ipcraft watch rtl/
  ipcraft watch core.vhd --emit --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "", "output format for --emit: yaml or json")
	watchCmd.Flags().BoolVar(&watchEmit, "emit", false, "print the updated record after each change")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := args[0]

	a, logger, err := newAnalyzer(root)
	if err != nil {
		return err
	}

	format, err := export.ParseFormat(watchFormat)
	if err != nil {
		return err
	}

	w := analyzer.NewWatcher(a)
	if watchEmit {
		w.OnChange(func(path string, rep *analyzer.Report, delta model.Delta) {
			stampDefaultVLNV(rep.Module, rep.Diagnostics.Language)
			if err := export.Write(os.Stdout, format, rep.Module); err != nil {
				logger.Error().Err(err).Str("file", path).Msg("cannot emit record")
			}
		})
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := w.Watch(ctx, root); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
