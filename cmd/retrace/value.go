// Value command: point-in-time value lookup.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	valueFrameID int
	valueStep    int
)

func init() {
	valueCmd.Flags().IntVar(&valueFrameID, "frame", 0, "frame id to inspect")
	valueCmd.Flags().IntVar(&valueStep, "step", -1, "event step to query at (default: latest)")
}

var valueCmd = &cobra.Command{
	Use:   "value <name>",
	Short: "Show an identifier's value at a point in time",
	Long: `Value reconstructs the value an identifier held after the given
event step (--step N means "after the first N events"; omit for the latest
state). Identifiers that did not exist at that point report as absent.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		store, frame, err := loadFrame(valueFrameID)
		if err != nil {
			return err
		}
		defer store.Detach()

		snap := frame.LatestSnapshot()
		if valueStep >= 0 {
			snap, err = frame.SnapshotAt(valueStep)
			if err != nil {
				return fmt.Errorf("value: %w", err)
			}
		}

		value, ok, err := frame.ValueAt(snap, name)
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}

		if flagJSON {
			return printJSON(map[string]any{
				"name":   name,
				"exists": ok,
				"value":  value,
			})
		}
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s does not exist at this point\n", name)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", name, value)
		return nil
	},
}
