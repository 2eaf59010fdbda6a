package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite journals executions, errors and snapshots to a SQLite database.
type SQLite struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *logger.Logger
}

// NewSQLite opens (or creates) the database at path and runs migrations.
// Use ":memory:" for an ephemeral journal.
func NewSQLite(path string, log *logger.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to open sqlite", err)
	}

	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to set WAL mode", err)
	}

	r := &SQLite{db: db, logger: log}
	if err := r.migrate(); err != nil {
		db.Close()

		return nil, err
	}

	log.Info("SQLite recorder opened", zap.String("path", path))

	return r, nil
}

func (r *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS executions (
			id        TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			side      TEXT NOT NULL,
			quantity  REAL NOT NULL,
			price     REAL NOT NULL,
			origin    TEXT NOT NULL,
			order_id  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_executions_ts ON executions(timestamp)`,

		`CREATE TABLE IF NOT EXISTS errors (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			code      INTEGER NOT NULL,
			label     TEXT,
			message   TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			balance   REAL NOT NULL,
			positions TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return errors.Wrap(errors.ErrCodeRecorderFailed, "failed to migrate sqlite journal", err)
		}
	}

	return nil
}

func (r *SQLite) OnExecution(record types.ExecutionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO executions
		(id, timestamp, symbol, side, quantity, price, origin, order_id)
		VALUES (?,?,?,?,?,?,?,?)`,
		record.ID, record.Timestamp.UnixMilli(), record.Symbol, string(record.Side),
		record.Quantity, record.Price, string(record.Origin), record.OrderID,
	)
	if err != nil {
		r.logger.Error("Failed to record execution", zap.String("id", record.ID), zap.Error(err))
	}
}

func (r *SQLite) OnError(cause error) {
	if cause == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO errors (timestamp, code, label, message) VALUES (?,?,?,?)`,
		time.Now().UnixMilli(), int(errors.GetCode(cause)), errors.Label(cause), cause.Error(),
	)
	if err != nil {
		r.logger.Error("Failed to record error", zap.Error(err))
	}
}

func (r *SQLite) OnSnapshot(snapshot types.LedgerSnapshot) {
	positions, err := json.Marshal(snapshot.Positions)
	if err != nil {
		r.logger.Error("Failed to marshal positions", zap.Error(err))

		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO snapshots (timestamp, balance, positions) VALUES (?,?,?)`,
		snapshot.Time.UnixMilli(), snapshot.Balance, string(positions),
	)
	if err != nil {
		r.logger.Error("Failed to record snapshot", zap.Error(err))
	}
}

// Executions returns the most recent executions, newest first.
func (r *SQLite) Executions(ctx context.Context, limit int) ([]types.ExecutionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, `SELECT id, timestamp, symbol, side, quantity, price, origin, order_id
		FROM executions ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query executions", err)
	}
	defer rows.Close()

	records := []types.ExecutionRecord{}

	for rows.Next() {
		var (
			record  types.ExecutionRecord
			ts      int64
			side    string
			origin  string
			orderID sql.NullString
		)

		if err := rows.Scan(&record.ID, &ts, &record.Symbol, &side, &record.Quantity, &record.Price, &origin, &orderID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan execution", err)
		}

		record.Timestamp = time.UnixMilli(ts)
		record.Side = types.Side(side)
		record.Origin = types.ExecutionMode(origin)
		record.OrderID = orderID.String
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating executions", err)
	}

	return records, nil
}

// ErrorCount returns the number of recorded errors.
func (r *SQLite) ErrorCount(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM errors`).Scan(&n); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count errors", err)
	}

	return n, nil
}

// LatestSnapshot returns the last recorded snapshot. ok is false when none exists.
func (r *SQLite) LatestSnapshot(ctx context.Context) (snapshot types.LedgerSnapshot, ok bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		ts        int64
		positions string
	)

	err = r.db.QueryRowContext(ctx, `SELECT timestamp, balance, positions FROM snapshots ORDER BY id DESC LIMIT 1`).
		Scan(&ts, &snapshot.Balance, &positions)
	if errors.Is(err, sql.ErrNoRows) {
		return types.LedgerSnapshot{}, false, nil
	}

	if err != nil {
		return types.LedgerSnapshot{}, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query snapshot", err)
	}

	if err := json.Unmarshal([]byte(positions), &snapshot.Positions); err != nil {
		return types.LedgerSnapshot{}, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to decode positions", err)
	}

	snapshot.Time = time.UnixMilli(ts)

	return snapshot, true, nil
}

// Close closes the database.
func (r *SQLite) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.db.Close()
}

var _ Recorder = (*SQLite)(nil)
