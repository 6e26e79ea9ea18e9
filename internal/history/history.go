// Package history persists completed reports so later runs of the same URL
// can be listed and compared.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
	"github.com/peternemser-ui/font-scanner-sub013/internal/urlutil"
)

// ErrNotFound is returned when a report id has no stored run.
var ErrNotFound = errors.New("report not found")

// Run is one stored scan outcome.
type Run struct {
	RowID         string                `json:"rowId"`
	ReportID      string                `json:"reportId"`
	Analyzer      string                `json:"analyzer"`
	URL           string                `json:"url"`
	NormalizedURL string                `json:"normalizedUrl"`
	StartedAt     time.Time             `json:"startedAt"`
	StoredAt      time.Time             `json:"storedAt"`
	Result        *model.AnalysisResult `json:"result,omitempty"`
}

// Store is the sqlite-backed report archive.
type Store struct {
	db     *sql.DB
	logger interfaces.Logger
}

// NewStore opens (creating if needed) the reports database under dir.
func NewStore(dir string, logger interfaces.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "reports.db"))
	if err != nil {
		return nil, fmt.Errorf("opening reports database: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying reports schema: %w", err)
	}
	logger.Info("report store ready", interfaces.F("dir", dir))
	return &Store{db: db, logger: logger.With(interfaces.F("component", "history"))}, nil
}

func applySchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reports (
			row_id          TEXT PRIMARY KEY,
			report_id       TEXT NOT NULL UNIQUE,
			analyzer        TEXT NOT NULL,
			url             TEXT NOT NULL,
			normalized_url  TEXT NOT NULL,
			started_at      TEXT NOT NULL,
			stored_at       TEXT NOT NULL,
			payload         BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_reports_target
			ON reports (analyzer, normalized_url, started_at);
	`)
	return err
}

// Save archives a completed report. Saving the same report id again replaces
// the payload; the id is deterministic per run, so this is an idempotent put.
func (s *Store) Save(ctx context.Context, rc *model.ReportContext) error {
	if rc == nil || rc.Result == nil {
		return errors.New("history: nil report")
	}
	normalized, err := urlutil.Normalize(rc.URL)
	if err != nil {
		return fmt.Errorf("history: normalizing %q: %w", rc.URL, err)
	}
	payload := rc.Result.Raw
	if len(payload) == 0 {
		payload, err = json.Marshal(rc.Result)
		if err != nil {
			return fmt.Errorf("history: encoding result: %w", err)
		}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (row_id, report_id, analyzer, url, normalized_url, started_at, stored_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(report_id) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at`,
		uuid.NewString(), rc.ReportID, rc.Analyzer, rc.URL, normalized,
		rc.StartedAt.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
		[]byte(payload))
	if err != nil {
		return fmt.Errorf("history: inserting report %s: %w", rc.ReportID, err)
	}
	s.logger.Debug("report archived", interfaces.F("report_id", rc.ReportID))
	return nil
}

// Get loads one stored run by report id.
func (s *Store) Get(ctx context.Context, reportID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT row_id, report_id, analyzer, url, normalized_url, started_at, stored_at, payload
		FROM reports WHERE report_id = ?`, reportID)
	return scanRun(row, true)
}

// ListByURL returns stored runs of one analyzer against one target, newest
// first, without payloads. limit <= 0 means no limit.
func (s *Store) ListByURL(ctx context.Context, analyzer, rawURL string, limit int) ([]*Run, error) {
	normalized, err := urlutil.Normalize(rawURL)
	if err != nil {
		return nil, fmt.Errorf("history: normalizing %q: %w", rawURL, err)
	}
	q := `
		SELECT row_id, report_id, analyzer, url, normalized_url, started_at, stored_at, NULL
		FROM reports WHERE analyzer = ? AND normalized_url = ?
		ORDER BY started_at DESC`
	args := []any{analyzer, normalized}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows, false)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner, withPayload bool) (*Run, error) {
	var (
		run       Run
		startedAt string
		storedAt  string
		payload   []byte
	)
	err := row.Scan(&run.RowID, &run.ReportID, &run.Analyzer, &run.URL,
		&run.NormalizedURL, &startedAt, &storedAt, &payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history: scanning run: %w", err)
	}
	run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	run.StoredAt, _ = time.Parse(time.RFC3339, storedAt)
	if withPayload && len(payload) > 0 {
		res, err := model.ParseAnalysisResult(payload)
		if err != nil {
			return nil, fmt.Errorf("history: decoding stored payload: %w", err)
		}
		run.Result = res
	}
	return &run, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
