// Shared helpers for retrace CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mesh-intelligence/retrace/internal/codec"
	"github.com/mesh-intelligence/retrace/internal/engine"
	"github.com/mesh-intelligence/retrace/internal/sqlite"
	"github.com/mesh-intelligence/retrace/pkg/types"
)

// attachStore resolves the data directory and attaches the archive store.
// The caller must defer store.Detach().
func attachStore() (*sqlite.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	store := sqlite.NewStore()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dataDir}
	if err := store.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach archive: %w", err)
	}
	return store, nil
}

// loadFrame attaches the store and loads one archived frame with the
// default codec. The caller must defer store.Detach().
func loadFrame(frameID int) (*sqlite.Store, *engine.Frame, error) {
	store, err := attachStore()
	if err != nil {
		return nil, nil, err
	}
	frame, err := store.LoadFrame(frameID, codec.New())
	if err != nil {
		store.Detach()
		return nil, nil, err
	}
	return store, frame, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// sysError prints msg to stderr and exits with the system error code.
func sysError(err error) error {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(exitSysError)
	return nil // unreachable
}
