package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-autotrader/internal/logger"
	"github.com/rxtech-lab/argo-autotrader/internal/types"
	"github.com/rxtech-lab/argo-autotrader/pkg/errors"
	"go.uber.org/zap"
)

const (
	ExecutionsFile = "executions.parquet"
	SnapshotsFile  = "snapshots.parquet"
)

// Parquet buffers events in an in-memory DuckDB database and exports them to
// parquet files under dir on Flush and Close.
type Parquet struct {
	db     *sql.DB
	mu     sync.Mutex
	sq     squirrel.StatementBuilderType
	dir    string
	logger *logger.Logger
}

// NewParquet creates a parquet journal that writes into dir.
func NewParquet(dir string, log *logger.Logger) (*Parquet, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to open duckdb", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeRecorderFailed, "failed to connect to duckdb", err)
	}

	p := &Parquet{
		db:     db,
		mu:     sync.Mutex{},
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		dir:    dir,
		logger: log,
	}

	if err := p.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return p, nil
}

func (p *Parquet) initialize() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS executions (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMP,
			symbol TEXT,
			side TEXT,
			quantity DOUBLE,
			price DOUBLE,
			origin TEXT,
			order_id TEXT
		)`,
		`CREATE SEQUENCE IF NOT EXISTS snapshot_id_seq`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY DEFAULT nextval('snapshot_id_seq'),
			timestamp TIMESTAMP,
			balance DOUBLE,
			positions TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := p.db.Exec(s); err != nil {
			return errors.Wrap(errors.ErrCodeRecorderFailed, "failed to create journal tables", err)
		}
	}

	return nil
}

func (p *Parquet) OnExecution(record types.ExecutionRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := p.sq.
		Insert("executions").
		Columns("id", "timestamp", "symbol", "side", "quantity", "price", "origin", "order_id").
		Values(record.ID, record.Timestamp, record.Symbol, string(record.Side),
			record.Quantity, record.Price, string(record.Origin), record.OrderID).
		RunWith(p.db).
		Exec()
	if err != nil {
		p.logger.Error("Failed to record execution", zap.String("id", record.ID), zap.Error(err))
	}
}

// OnError only logs. Errors are not part of the parquet export.
func (p *Parquet) OnError(err error) {
	if err == nil {
		return
	}

	p.logger.Debug("Iteration error observed", zap.String("label", errors.Label(err)), zap.Error(err))
}

func (p *Parquet) OnSnapshot(snapshot types.LedgerSnapshot) {
	positions, err := json.Marshal(snapshot.Positions)
	if err != nil {
		p.logger.Error("Failed to marshal positions", zap.Error(err))

		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, err = p.sq.
		Insert("snapshots").
		Columns("timestamp", "balance", "positions").
		Values(snapshot.Time, snapshot.Balance, string(positions)).
		RunWith(p.db).
		Exec()
	if err != nil {
		p.logger.Error("Failed to record snapshot", zap.Error(err))
	}
}

// Executions returns every buffered execution ordered by time.
func (p *Parquet) Executions() ([]types.ExecutionRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows, err := p.sq.
		Select("id", "timestamp", "symbol", "side", "quantity", "price", "origin", "order_id").
		From("executions").
		OrderBy("timestamp ASC", "id ASC").
		RunWith(p.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query executions", err)
	}
	defer rows.Close()

	records := []types.ExecutionRecord{}

	for rows.Next() {
		var (
			record  types.ExecutionRecord
			ts      time.Time
			side    string
			origin  string
			orderID sql.NullString
		)

		if err := rows.Scan(&record.ID, &ts, &record.Symbol, &side, &record.Quantity, &record.Price, &origin, &orderID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan execution", err)
		}

		record.Timestamp = ts
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

// Flush exports the buffered tables to parquet files in the journal directory.
func (p *Parquet) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.flush()
}

func (p *Parquet) flush() error {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeRecorderFailed, "failed to create journal directory", err)
	}

	for table, file := range map[string]string{"executions": ExecutionsFile, "snapshots": SnapshotsFile} {
		path := filepath.Join(p.dir, file)

		_, err := p.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM %s ORDER BY timestamp) TO '%s' (FORMAT PARQUET)`, table, path))
		if err != nil {
			return errors.Wrapf(errors.ErrCodeRecorderFailed, err, "failed to export %s to parquet", table)
		}
	}

	p.logger.Info("Exported journal to parquet", zap.String("dir", p.dir))

	return nil
}

// Close flushes and closes the database.
func (p *Parquet) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}

	flushErr := p.flush()
	closeErr := p.db.Close()
	p.db = nil

	if flushErr != nil {
		return flushErr
	}

	if closeErr != nil {
		return errors.Wrap(errors.ErrCodeRecorderFailed, "failed to close duckdb", closeErr)
	}

	return nil
}

var _ Recorder = (*Parquet)(nil)
