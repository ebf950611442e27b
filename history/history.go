// Package history records conversion attempts in an SQLite log.
//
// The log is strictly best-effort observability: Record never returns an
// error to the request path, and the service runs fine with history
// disabled entirely.
package history

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/hazyhaar/convertd/idgen"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversion_logs (
	conversion_id  TEXT PRIMARY KEY,
	filename       TEXT NOT NULL,
	input_format   TEXT NOT NULL,
	output_format  TEXT NOT NULL,
	input_bytes    INTEGER NOT NULL,
	output_bytes   INTEGER NOT NULL,
	success        INTEGER NOT NULL,
	error          TEXT DEFAULT '',
	duration_ms    INTEGER NOT NULL,
	created_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversion_logs_created
	ON conversion_logs(created_at);
`

// Entry is one conversion attempt.
type Entry struct {
	Filename     string
	InputFormat  string
	OutputFormat string
	InputBytes   int
	OutputBytes  int
	Success      bool
	Error        string
	Duration     time.Duration
}

// Log writes conversion entries and manages retention cleanup.
type Log struct {
	db    *sql.DB
	newID idgen.Generator
}

// Option configures a Log.
type Option func(*Log)

// WithIDGenerator sets a custom ID generator for conversion IDs.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(l *Log) { l.newID = gen }
}

// New creates a Log backed by an already-opened database. The schema is
// applied by Open.
func New(db *sql.DB, opts ...Option) *Log {
	l := &Log{
		db:    db,
		newID: idgen.Prefixed("cnv_", idgen.Default),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Record logs a conversion attempt. Non-blocking: insert failures are
// slog-logged but do not propagate, so a failing history store never
// blocks a conversion.
func (l *Log) Record(ctx context.Context, e Entry) {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO conversion_logs (
			conversion_id, filename, input_format, output_format,
			input_bytes, output_bytes, success, error, duration_ms, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		l.newID(), e.Filename, e.InputFormat, e.OutputFormat,
		e.InputBytes, e.OutputBytes, e.Success, e.Error,
		e.Duration.Milliseconds(), time.Now().Unix())
	if err != nil {
		slog.Error("history record failed", "error", err, "filename", e.Filename)
	}
}

// Count returns the number of recorded conversions.
func (l *Log) Count(ctx context.Context) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversion_logs`).Scan(&n)
	return n, err
}

// Cleanup deletes entries older than the retention threshold. Zero days
// means no cleanup.
func Cleanup(ctx context.Context, db *sql.DB, days int) error {
	if days <= 0 {
		return nil
	}
	cutoff := time.Now().Unix() - int64(days)*86400
	_, err := db.ExecContext(ctx, `DELETE FROM conversion_logs WHERE created_at < ?`, cutoff)
	return err
}
