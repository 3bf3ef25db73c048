// Package store persists the append-only audit log of prediction requests
// and serves time-windowed aggregation queries over it.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// TimestampLayout is the canonical audit timestamp form: UTC with a
// fixed-width fractional second, so lexicographic order on the TEXT column
// equals chronological order. Window boundaries are normalized to the same
// layout before they reach SQL.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

const defaultStatsWindow = 15 * 24 * time.Hour

// Record is one immutable audit entry describing a single request outcome.
// Records are append-only; the service never updates or deletes them.
type Record struct {
	ID             int64  `json:"id"`
	Timestamp      string `json:"timestamp"`
	InputJSON      string `json:"input_json"`
	PredictionJSON string `json:"prediction_json,omitempty"`
	StatusCode     int    `json:"status_code"`
	ErrorMessage   string `json:"error_message,omitempty"`
	ModelType      string `json:"model_type"`
	ModelVersion   string `json:"model_version"`
}

// Stats is a derived aggregate over a closed [start, end] window,
// recomputed on every query and never persisted.
type Stats struct {
	Start               string           `json:"start"`
	End                 string           `json:"end"`
	TotalRequests       int64            `json:"total_requests"`
	Success200          int64            `json:"success_200"`
	BadRequest400       int64            `json:"bad_request_400"`
	ValidationErrors422 int64            `json:"validation_errors_422"`
	InternalErrors500   int64            `json:"internal_errors_500"`
	AvgPredictedPrice   *float64         `json:"avg_predicted_price"`
	ModelVersionUsage   map[string]int64 `json:"model_version_usage"`
}

// Store wraps the SQLite database holding the audit log.
type Store struct {
	db     *sql.DB
	window time.Duration
}

// Open initializes the audit store using the supplied DSN/file path and driver.
func Open(dsn string, driver string) (*Store, error) {
	if driver == "" {
		driver = "sqlite"
	}
	if driver != "sqlite" {
		return nil, fmt.Errorf("unsupported datastore driver: %s", driver)
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("datastore DSN is required")
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create datastore directory: %w", err)
	}
	conn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dsn)
	db, err := sql.Open("sqlite", conn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite datastore: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, window: defaultStatsWindow}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS predictions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			input_json TEXT,
			prediction_json TEXT,
			status_code INTEGER NOT NULL,
			error_message TEXT,
			model_type TEXT,
			model_version TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_timestamp ON predictions(timestamp);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema apply failed: %w", err)
		}
	}
	return nil
}

// Close shuts down the datastore.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SetDefaultWindow overrides the window used when QueryStats is called
// without boundaries.
func (s *Store) SetDefaultWindow(d time.Duration) {
	if d > 0 {
		s.window = d
	}
}

// FormatTime renders t in the canonical audit timestamp layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Append durably persists a record with a single synchronous insert and
// returns its assigned sequence id. The timestamp is set on first write
// and never changes.
func (s *Store) Append(r *Record) (int64, error) {
	if r.Timestamp == "" {
		r.Timestamp = FormatTime(time.Now())
	}
	prediction := sql.NullString{String: r.PredictionJSON, Valid: r.PredictionJSON != ""}
	errMsg := sql.NullString{String: r.ErrorMessage, Valid: r.ErrorMessage != ""}
	res, err := s.db.Exec(`INSERT INTO predictions (timestamp, input_json, prediction_json, status_code, error_message, model_type, model_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Timestamp, r.InputJSON, prediction, r.StatusCode, errMsg, r.ModelType, r.ModelVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append audit record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read audit record id: %w", err)
	}
	r.ID = id
	return id, nil
}

// QueryStats aggregates records whose timestamp falls inside the closed
// interval [start, end], compared as canonical timestamp strings
// (inclusive on both ends). Empty boundaries default to the configured
// window ending now. An inverted window (start > end) matches nothing and
// reconciles to zero counts.
func (s *Store) QueryStats(start, end string) (*Stats, error) {
	now := time.Now()
	if start == "" {
		start = FormatTime(now.Add(-s.window))
	}
	if end == "" {
		end = FormatTime(now)
	}

	stats := &Stats{
		Start:             start,
		End:               end,
		ModelVersionUsage: map[string]int64{},
	}

	row := s.db.QueryRow(`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status_code = 200 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status_code = 400 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status_code = 422 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status_code = 500 THEN 1 ELSE 0 END), 0)
		FROM predictions
		WHERE timestamp BETWEEN ? AND ?`, start, end)
	if err := row.Scan(&stats.TotalRequests, &stats.Success200, &stats.BadRequest400,
		&stats.ValidationErrors422, &stats.InternalErrors500); err != nil {
		return nil, fmt.Errorf("failed to aggregate status counts: %w", err)
	}

	rows, err := s.db.Query(`SELECT model_version, COUNT(*)
		FROM predictions
		WHERE timestamp BETWEEN ? AND ?
		GROUP BY model_version`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate model versions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var version sql.NullString
		var count int64
		if err := rows.Scan(&version, &count); err != nil {
			return nil, fmt.Errorf("failed to scan model version row: %w", err)
		}
		stats.ModelVersionUsage[version.String] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to aggregate model versions: %w", err)
	}

	var avg sql.NullFloat64
	err = s.db.QueryRow(`SELECT AVG(CAST(json_extract(prediction_json, '$.predicted_price') AS REAL))
		FROM predictions
		WHERE status_code = 200 AND timestamp BETWEEN ? AND ?`, start, end).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("failed to average predicted price: %w", err)
	}
	if avg.Valid {
		rounded := math.Round(avg.Float64*100) / 100
		stats.AvgPredictedPrice = &rounded
	}

	return stats, nil
}

// RecentRecords returns the newest audit records, newest first. A
// non-positive limit returns the entire log.
func (s *Store) RecentRecords(limit int) ([]Record, error) {
	query := `SELECT id, timestamp, input_json, prediction_json, status_code, error_message, model_type, model_version
		FROM predictions ORDER BY id DESC`
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		var r Record
		var prediction, errMsg, modelType, modelVersion sql.NullString
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.InputJSON, &prediction, &r.StatusCode, &errMsg, &modelType, &modelVersion); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		r.PredictionJSON = prediction.String
		r.ErrorMessage = errMsg.String
		r.ModelType = modelType.String
		r.ModelVersion = modelVersion.String
		records = append(records, r)
	}
	return records, rows.Err()
}
