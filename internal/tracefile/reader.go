// Package tracefile reads raw change streams produced by an instrumentation
// collaborator. The format is JSONL: one record per line, each describing
// one observed program step.
package tracefile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mesh-intelligence/retrace/pkg/types"
)

// Record kinds. "initial" reports a pre-existing value observed on first
// read; "assignment" and "deletion" are traced changes.
const (
	RecordInitial    = "initial"
	RecordAssignment = "assignment"
	RecordDeletion   = "deletion"
)

// Record is one line of a trace file.
type Record struct {
	Target  string            `json:"target"`
	Kind    string            `json:"kind"`
	Value   any               `json:"value,omitempty"`
	Sources []types.SourceRef `json:"sources,omitempty"`
	File    string            `json:"file"`
	Line    int               `json:"line"`
}

// Location returns the record's source location.
func (r Record) Location() types.Location {
	return types.Location{File: r.File, Line: r.Line}
}

// validate checks the fields every record needs before it reaches the
// engine. Engine-level invariants are not duplicated here.
func (r Record) validate() error {
	if r.Target == "" {
		return fmt.Errorf("missing target")
	}
	switch r.Kind {
	case RecordInitial, RecordAssignment, RecordDeletion:
		return nil
	case "":
		return fmt.Errorf("missing kind")
	default:
		return fmt.Errorf("unknown kind %q", r.Kind)
	}
}

// Read parses a JSONL trace stream. Unlike a lenient loader, a malformed or
// invalid line fails the whole read with its line number: a trace with a
// hole silently produces wrong point-in-time answers later.
func Read(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("trace line %d: %w", lineno, err)
		}
		if err := rec.validate(); err != nil {
			return nil, fmt.Errorf("trace line %d: %v", lineno, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning trace: %w", err)
	}
	return records, nil
}

// ReadFile reads a JSONL trace file from disk.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
