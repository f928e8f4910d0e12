// Import command: replay an instrumentation trace file into the engine and
// archive the resulting frame.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/retrace/internal/codec"
	"github.com/mesh-intelligence/retrace/internal/engine"
	"github.com/mesh-intelligence/retrace/internal/tracefile"
)

var (
	importFrameID int
	importParent  int
	importFile    string
	importExclude []string
)

func init() {
	importCmd.Flags().IntVar(&importFrameID, "frame", 0, "frame id to archive under")
	importCmd.Flags().IntVar(&importParent, "parent", engine.NoFrame, "parent frame id, if any")
	importCmd.Flags().StringVar(&importFile, "file", "", "source file of the traced context (default: from first record)")
	importCmd.Flags().StringSliceVar(&importExclude, "exclude", nil, "identifier names to ignore (builtins etc.)")
}

var importCmd = &cobra.Command{
	Use:   "import <trace.jsonl>",
	Short: "Import a trace file and archive the frame",
	Long: `Import reads a JSONL trace of raw change records, replays it through
the engine (classifying each record as initial value, creation, mutation, or
deletion), and archives the resulting frame.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := tracefile.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		if len(records) == 0 {
			return fmt.Errorf("import: %s contains no records", args[0])
		}

		file := importFile
		if file == "" {
			file = records[0].File
		}

		frame, err := engine.RestoreFrame(importFrameID, importParent, engine.FrameConfig{
			File:    file,
			Codec:   codec.New(),
			Exclude: importExclude,
		}, nil)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}

		for i, rec := range records {
			switch rec.Kind {
			case tracefile.RecordInitial:
				err = frame.RecordInitial(rec.Target, rec.Value, rec.Location())
			case tracefile.RecordAssignment:
				_, err = frame.RecordChange(engine.RawChange{
					Target:   rec.Target,
					Kind:     engine.ChangeAssignment,
					NewValue: rec.Value,
					Sources:  rec.Sources,
					Location: rec.Location(),
				})
			case tracefile.RecordDeletion:
				_, err = frame.RecordChange(engine.RawChange{
					Target:   rec.Target,
					Kind:     engine.ChangeDeletion,
					Sources:  rec.Sources,
					Location: rec.Location(),
				})
			}
			if err != nil {
				return fmt.Errorf("import: record %d (%s %s): %w", i+1, rec.Kind, rec.Target, err)
			}
		}

		store, err := attachStore()
		if err != nil {
			return sysError(fmt.Errorf("import: %w", err))
		}
		defer store.Detach()

		if err := store.SaveFrame(frame); err != nil {
			return sysError(fmt.Errorf("import: %w", err))
		}

		if flagJSON {
			return printJSON(map[string]any{
				"frame_id": frame.ID(),
				"events":   len(frame.History()),
				"targets":  len(frame.Targets()),
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d events for %d identifiers into frame %d\n",
			len(frame.History()), len(frame.Targets()), frame.ID())
		return nil
	},
}
