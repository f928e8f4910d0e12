// Version command for the retrace CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/retrace/pkg/retrace"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the retrace version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("retrace", retrace.Version)
	},
}
