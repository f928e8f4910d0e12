// Trace command: causal trace from an event id.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/retrace/pkg/types"
)

var traceFrameID int

func init() {
	traceCmd.Flags().IntVar(&traceFrameID, "frame", 0, "frame id to inspect")
}

// traceEdge describes one resolved causal dependency.
type traceEdge struct {
	EventID  string         `json:"event_id"`
	Kind     string         `json:"kind"`
	Target   string         `json:"target"`
	Location types.Location `json:"location"`
}

var traceCmd = &cobra.Command{
	Use:   "trace <event-id>",
	Short: "Show which prior events a change depended on",
	Long: `Trace resolves the exact historical versions an event read from.
Each source reference was bound to a timeline index when the instrumentation
observed the read, so interleaved mutations (such as a swap) trace to the
pre-step versions, never to a later change.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, frame, err := loadFrame(traceFrameID)
		if err != nil {
			return err
		}
		defer store.Detach()

		ids, err := frame.TraceBack(args[0])
		if err != nil {
			return fmt.Errorf("trace: %w", err)
		}

		edges := make([]traceEdge, 0, len(ids))
		for _, id := range ids {
			e, err := frame.Event(id)
			if err != nil {
				return fmt.Errorf("trace: %w", err)
			}
			edges = append(edges, traceEdge{
				EventID:  e.EventID,
				Kind:     e.Kind,
				Target:   e.Target,
				Location: e.Location,
			})
		}

		if flagJSON {
			return printJSON(edges)
		}
		if len(edges) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No causal dependencies recorded")
			return nil
		}
		for _, edge := range edges {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s(%s)\t%s:%d\n",
				edge.EventID, edge.Kind, edge.Target, edge.Location.File, edge.Location.Line)
		}
		return nil
	},
}
