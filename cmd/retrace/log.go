// Log command: per-identifier timeline with accumulated values.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/retrace/pkg/types"
)

var logFrameID int

func init() {
	logCmd.Flags().IntVar(&logFrameID, "frame", 0, "frame id to inspect")
}

var logCmd = &cobra.Command{
	Use:   "log <name>",
	Short: "Show an identifier's full timeline",
	Long: `Log prints every event recorded for an identifier in order. Mutation
entries show the value after the change, reconstructed from the stored
deltas.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		store, frame, err := loadFrame(logFrameID)
		if err != nil {
			return err
		}
		defer store.Detach()

		view, err := frame.AccumulatedEvents()
		if err != nil {
			return fmt.Errorf("log: %w", err)
		}
		timeline, ok := view[name]
		if !ok {
			return fmt.Errorf("log: %w: %s", types.ErrUnknownIdentifier, name)
		}

		if flagJSON {
			return printJSON(timeline)
		}
		for i, e := range timeline {
			switch e.Kind {
			case types.KindDeletion:
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s:%d\n",
					i, e.Kind, e.Location.File, e.Location.Line)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s:%d\t%v\n",
					i, e.Kind, e.Location.File, e.Location.Line, e.Value)
			}
		}
		return nil
	},
}
