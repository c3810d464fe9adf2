package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bleviet/ipcraft/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write an ipcraft.yml with the default configuration, making the knobs
visible and editable: include globs, ignore patterns, detection
thresholds, parser limits and logging.

Examples:
  ipcraft init
  ipcraft init -c ip/core/ipcraft.yml
  ipcraft init --force`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = "ipcraft.yml"
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
