// Init command for the retrace CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the retrace archive",
	Long:  "Create configuration and data directories, then initialize the archive backend.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return sysError(fmt.Errorf("init: %w", err))
		}
		if err := ensureConfigDir(configDir); err != nil {
			return sysError(fmt.Errorf("init: %w", err))
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			return sysError(fmt.Errorf("init: %w", err))
		}

		// Attaching creates the data directory and the archive schema.
		store, err := attachStore()
		if err != nil {
			return sysError(fmt.Errorf("init: %w", err))
		}
		defer store.Detach()

		dataDir, err := resolveDataDir()
		if err != nil {
			return sysError(fmt.Errorf("init: %w", err))
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Retrace archive initialized")
		fmt.Fprintln(cmd.OutOrStdout(), "  config:", configDir)
		fmt.Fprintln(cmd.OutOrStdout(), "  data:  ", dataDir)
		return nil
	},
}
