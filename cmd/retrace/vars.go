// Vars command: list identifiers in an archived frame.
package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var varsFrameID int

func init() {
	varsCmd.Flags().IntVar(&varsFrameID, "frame", 0, "frame id to inspect")
}

// varEntry is one identifier's current state in a frame.
type varEntry struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
	Value  any    `json:"value,omitempty"`
	Events int    `json:"events"`
}

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "List identifiers and their latest values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, frame, err := loadFrame(varsFrameID)
		if err != nil {
			return err
		}
		defer store.Detach()

		targets := frame.Targets()
		sort.Strings(targets)

		entries := make([]varEntry, 0, len(targets))
		for _, name := range targets {
			entry := varEntry{Name: name, Events: len(frame.Events(name))}
			if frame.Contains(name) {
				value, err := frame.LatestValue(name)
				if err != nil {
					return err
				}
				entry.Exists = true
				entry.Value = value
			}
			entries = append(entries, entry)
		}

		if flagJSON {
			return printJSON(entries)
		}
		for _, entry := range entries {
			if entry.Exists {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\t(%d events)\n", entry.Name, entry.Value, entry.Events)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (deleted)\t(%d events)\n", entry.Name, entry.Events)
			}
		}
		return nil
	},
}
