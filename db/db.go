// Package db persists behavioural alerts to sqlite. The engine core never
// touches this package; the service and replay layers record what Step
// returns.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/lookout.report/internal/vision"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the alert database at path.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = sqlDB.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			camera TEXT,
			started_unix_nanos BIGINT
		);
		CREATE TABLE IF NOT EXISTS alerts (
			alert_id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT,
			frame_unix_nanos BIGINT,
			alert_type TEXT,
			label TEXT,
			track_id BIGINT,
			since_s DOUBLE,
			confidence DOUBLE,
			x1 DOUBLE, y1 DOUBLE, x2 DOUBLE, y2 DOUBLE,
			FOREIGN KEY(session_id) REFERENCES sessions(session_id)
		);
		CREATE INDEX IF NOT EXISTS idx_alerts_session ON alerts(session_id);
		CREATE INDEX IF NOT EXISTS idx_alerts_type ON alerts(alert_type);
	`)
	if err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{sqlDB}, nil
}

// RecordSession registers an engine session before its alerts are recorded.
func (db *DB) RecordSession(sessionID, camera string, startedAt time.Time) error {
	_, err := db.Exec(
		"INSERT OR IGNORE INTO sessions (session_id, camera, started_unix_nanos) VALUES (?, ?, ?)",
		sessionID, camera, startedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

// RecordAlert stores one alert raised at the given frame time.
func (db *DB) RecordAlert(sessionID string, at time.Time, a vision.Alert) error {
	_, err := db.Exec(`
		INSERT INTO alerts (
			session_id, frame_unix_nanos, alert_type, label, track_id,
			since_s, confidence, x1, y1, x2, y2
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, at.UnixNano(), string(a.Type), a.Label, a.TrackID,
		a.SinceSeconds, a.Confidence, a.Box.X1, a.Box.Y1, a.Box.X2, a.Box.Y2,
	)
	if err != nil {
		return fmt.Errorf("record alert: %w", err)
	}
	return nil
}

// AlertRow is a persisted alert as returned by query methods.
type AlertRow struct {
	AlertID   int64     `json:"alert_id"`
	SessionID string    `json:"session_id"`
	At        time.Time `json:"at"`
	Type      string    `json:"type"`
	Label     string    `json:"label,omitempty"`
	TrackID   int64     `json:"track_id"`
	SinceS    float64   `json:"since_s"`
	Conf      float64   `json:"confidence"`
	Box       [4]float64 `json:"box"`
}

const alertColumns = `alert_id, session_id, frame_unix_nanos, alert_type,
	label, track_id, since_s, confidence, x1, y1, x2, y2`

func scanAlerts(rows *sql.Rows) ([]AlertRow, error) {
	defer rows.Close()

	var out []AlertRow
	for rows.Next() {
		var r AlertRow
		var nanos int64
		if err := rows.Scan(
			&r.AlertID, &r.SessionID, &nanos, &r.Type,
			&r.Label, &r.TrackID, &r.SinceS, &r.Conf,
			&r.Box[0], &r.Box[1], &r.Box[2], &r.Box[3],
		); err != nil {
			return nil, err
		}
		r.At = time.Unix(0, nanos).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Alerts returns the most recent alerts, newest first.
func (db *DB) Alerts(limit int) ([]AlertRow, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := db.Query(
		"SELECT "+alertColumns+" FROM alerts ORDER BY frame_unix_nanos DESC, alert_id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	return scanAlerts(rows)
}

// AlertsByType returns the most recent alerts of one type, newest first.
func (db *DB) AlertsByType(alertType string, limit int) ([]AlertRow, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := db.Query(
		"SELECT "+alertColumns+" FROM alerts WHERE alert_type = ? ORDER BY frame_unix_nanos DESC, alert_id DESC LIMIT ?",
		alertType, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query alerts by type: %w", err)
	}
	return scanAlerts(rows)
}

// SessionAlerts returns all alerts for one session, oldest first.
func (db *DB) SessionAlerts(sessionID string) ([]AlertRow, error) {
	rows, err := db.Query(
		"SELECT "+alertColumns+" FROM alerts WHERE session_id = ? ORDER BY frame_unix_nanos ASC, alert_id ASC",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query session alerts: %w", err)
	}
	return scanAlerts(rows)
}
