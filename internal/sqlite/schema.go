// Package sqlite implements the SQLite archive backend for the retrace
// engine: frames and their event logs are persisted with serialized deltas
// so traced executions can be reloaded and queried after the fact.
package sqlite

// Schema DDL. The archive is append-mostly; SaveFrame rewrites one frame's
// rows inside a transaction.
const (
	createFrames = `CREATE TABLE IF NOT EXISTS frames (
    frame_id INTEGER PRIMARY KEY,
    parent_id INTEGER NOT NULL,
    file TEXT NOT NULL
);`

	createEvents = `CREATE TABLE IF NOT EXISTS events (
    event_id TEXT PRIMARY KEY,
    frame_id INTEGER NOT NULL,
    step INTEGER NOT NULL,
    kind TEXT NOT NULL,
    target TEXT NOT NULL,
    file TEXT NOT NULL,
    line INTEGER NOT NULL,
    value TEXT,
    delta TEXT,
    sources TEXT,
    FOREIGN KEY (frame_id) REFERENCES frames(frame_id),
    UNIQUE (frame_id, step)
);`

	createEventsTargetIndex = `CREATE INDEX IF NOT EXISTS events_frame_target
    ON events(frame_id, target, step);`
)

// schemaStatements lists the DDL applied on Attach, in order.
var schemaStatements = []string{
	createFrames,
	createEvents,
	createEventsTargetIndex,
}
