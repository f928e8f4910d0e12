package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/retrace/internal/engine"
	"github.com/mesh-intelligence/retrace/pkg/types"
)

// FrameInfo summarizes one archived frame.
type FrameInfo struct {
	FrameID  int    `json:"frame_id"`
	ParentID int    `json:"parent_id"`
	File     string `json:"file"`
	Events   int    `json:"events"`
}

// ErrFrameNotArchived is returned when loading a frame id with no rows.
var ErrFrameNotArchived = errors.New("frame not archived")

// SaveFrame archives a frame and its full event history. Saving the same
// frame id again replaces its previous rows; the write is transactional.
func (s *Store) SaveFrame(f *engine.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return ErrStoreDetached
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM events WHERE frame_id = ?`, f.ID()); err != nil {
		return fmt.Errorf("clear frame %d events: %w", f.ID(), err)
	}
	if _, err := tx.Exec(
		`INSERT INTO frames (frame_id, parent_id, file) VALUES (?, ?, ?)
		 ON CONFLICT(frame_id) DO UPDATE SET parent_id = excluded.parent_id, file = excluded.file`,
		f.ID(), f.Parent(), f.File(),
	); err != nil {
		return fmt.Errorf("save frame %d: %w", f.ID(), err)
	}

	insert, err := tx.Prepare(
		`INSERT INTO events (event_id, frame_id, step, kind, target, file, line, value, delta, sources)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insert.Close()

	for step, e := range f.History() {
		value, delta, sources, err := marshalPayload(e)
		if err != nil {
			return fmt.Errorf("save frame %d step %d: %w", f.ID(), step, err)
		}
		if _, err := insert.Exec(
			e.EventID, f.ID(), step, e.Kind, e.Target,
			e.Location.File, e.Location.Line, value, delta, sources,
		); err != nil {
			return fmt.Errorf("save frame %d step %d: %w", f.ID(), step, err)
		}
	}

	return tx.Commit()
}

// LoadFrame rebuilds an archived frame by replaying its events through the
// engine with the given codec and exclusion set. Returns ErrFrameNotArchived
// for unknown frame ids.
func (s *Store) LoadFrame(frameID int, codec types.Codec) (*engine.Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, ErrStoreDetached
	}

	var parentID int
	var file string
	err := s.db.QueryRow(
		`SELECT parent_id, file FROM frames WHERE frame_id = ?`, frameID,
	).Scan(&parentID, &file)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("load frame %d: %w", frameID, ErrFrameNotArchived)
	}
	if err != nil {
		return nil, fmt.Errorf("load frame %d: %w", frameID, err)
	}

	rows, err := s.db.Query(
		`SELECT event_id, kind, target, file, line, value, delta, sources
		 FROM events WHERE frame_id = ? ORDER BY step`, frameID)
	if err != nil {
		return nil, fmt.Errorf("load frame %d events: %w", frameID, err)
	}
	defer rows.Close()

	var events []types.Event
	for rows.Next() {
		var e types.Event
		var value, delta, sources sql.NullString
		if err := rows.Scan(
			&e.EventID, &e.Kind, &e.Target, &e.Location.File, &e.Location.Line,
			&value, &delta, &sources,
		); err != nil {
			return nil, fmt.Errorf("load frame %d events: %w", frameID, err)
		}
		if err := unmarshalPayload(&e, value, delta, sources); err != nil {
			return nil, fmt.Errorf("load frame %d event %s: %w", frameID, e.EventID, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load frame %d events: %w", frameID, err)
	}

	cfg := engine.FrameConfig{File: file, Codec: codec}
	f, err := engine.RestoreFrame(frameID, parentID, cfg, events)
	if err != nil {
		return nil, fmt.Errorf("load frame %d: %w", frameID, err)
	}
	return f, nil
}

// ListFrames returns a summary of every archived frame, ordered by id.
func (s *Store) ListFrames() ([]FrameInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, ErrStoreDetached
	}

	rows, err := s.db.Query(
		`SELECT f.frame_id, f.parent_id, f.file, COUNT(e.event_id)
		 FROM frames f LEFT JOIN events e ON e.frame_id = f.frame_id
		 GROUP BY f.frame_id ORDER BY f.frame_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FrameInfo
	for rows.Next() {
		var info FrameInfo
		if err := rows.Scan(&info.FrameID, &info.ParentID, &info.File, &info.Events); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// marshalPayload serializes an event's kind-specific payload columns.
// Columns that do not apply to the kind stay NULL.
func marshalPayload(e types.Event) (value, delta, sources sql.NullString, err error) {
	if e.Seeds() {
		data, merr := json.Marshal(e.Value)
		if merr != nil {
			return value, delta, sources, merr
		}
		value = sql.NullString{String: string(data), Valid: true}
	}
	if e.Delta != nil {
		delta = sql.NullString{String: string(e.Delta), Valid: true}
	}
	if e.Sources != nil {
		data, merr := json.Marshal(e.Sources)
		if merr != nil {
			return value, delta, sources, merr
		}
		sources = sql.NullString{String: string(data), Valid: true}
	}
	return value, delta, sources, nil
}

// unmarshalPayload restores an event's payload from its columns.
func unmarshalPayload(e *types.Event, value, delta, sources sql.NullString) error {
	if value.Valid {
		if err := json.Unmarshal([]byte(value.String), &e.Value); err != nil {
			return err
		}
	}
	if delta.Valid {
		e.Delta = types.Delta(delta.String)
	}
	if sources.Valid {
		if err := json.Unmarshal([]byte(sources.String), &e.Sources); err != nil {
			return err
		}
	}
	return nil
}
