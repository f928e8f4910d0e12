// Frames command: list archived frames.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/retrace/internal/engine"
)

var framesCmd = &cobra.Command{
	Use:   "frames",
	Short: "List archived frames",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := attachStore()
		if err != nil {
			return sysError(err)
		}
		defer store.Detach()

		infos, err := store.ListFrames()
		if err != nil {
			return sysError(err)
		}

		if flagJSON {
			return printJSON(infos)
		}
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No frames archived")
			return nil
		}
		for _, info := range infos {
			parent := "-"
			if info.ParentID != engine.NoFrame {
				parent = fmt.Sprintf("%d", info.ParentID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\tparent=%s\t%s\t%d events\n",
				info.FrameID, parent, info.File, info.Events)
		}
		return nil
	},
}
