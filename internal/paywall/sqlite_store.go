package paywall

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
)

// SQLiteStore persists unlock state in a local database so unlocks survive
// process restarts.
type SQLiteStore struct {
	db     *sql.DB
	logger interfaces.Logger
}

// NewSQLiteStore opens (creating if needed) the unlocks database under dir.
func NewSQLiteStore(dir string, logger interfaces.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "unlocks.db"))
	if err != nil {
		return nil, fmt.Errorf("opening unlocks database: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS unlocks (
			report_id   TEXT PRIMARY KEY,
			unlocked_at TEXT NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying unlocks schema: %w", err)
	}
	logger.Info("sqlite unlock store ready", interfaces.F("dir", dir))
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) IsUnlocked(ctx context.Context, reportID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM unlocks WHERE report_id = ?`, reportID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying unlock state: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) Unlock(ctx context.Context, reportID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO unlocks (report_id, unlocked_at) VALUES (?, ?)
		 ON CONFLICT(report_id) DO NOTHING`,
		reportID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("persisting unlock: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func init() {
	RegisterBackend("sqlite", func(cfg Config, logger interfaces.Logger) (Store, error) {
		dir := cfg.Path
		if dir == "" {
			dir = "."
		}
		return NewSQLiteStore(dir, logger)
	})
}
