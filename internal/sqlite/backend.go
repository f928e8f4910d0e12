package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/retrace/pkg/types"
)

// archiveFileName is the SQLite database file created inside DataDir.
const archiveFileName = "retrace.db"

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("archive store is detached")
	ErrAlreadyAttached = errors.New("archive store is already attached")
)

// Store archives frames and their event logs in SQLite.
type Store struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
}

// NewStore creates a new archive store. The store is not attached; call
// Attach with a Config to initialize.
func NewStore() *Store {
	return &Store{}
}

// Attach opens (creating if needed) the archive database under
// config.DataDir and applies the schema. Returns ErrAlreadyAttached if
// called while attached. Existing archived frames are preserved.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, archiveFileName))
	if err != nil {
		return err
	}
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	s.db = db
	s.config = config
	s.attached = true
	return nil
}

// Detach closes the database. Idempotent: detaching a detached store
// succeeds. After Detach, operations return ErrStoreDetached.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
		s.db = nil
	}
	s.attached = false
	return nil
}
