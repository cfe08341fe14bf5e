package postgressink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/eventforge/eventgen-go/eventgen"
	"github.com/eventforge/eventgen-go/eventgen/postgressink/internal/adapters"
)

const (
	defaultRecordTableName       = "ingestion_events"
	defaultBatchSize             = 500
	logMsgBuildInsertQueryFailed = "failed to build insert query"
	logMsgBuildCountQueryFailed  = "failed to build count query"
	logMsgSerializeRecordFailed  = "failed to serialize event to wire record"
	logMsgDBExecFailed           = "database execution failed during batch insert"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgBatchInserted          = "record batch inserted"
	logMsgSQLExecuted            = "executed sql for: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrRecordCount           = "record_count"
	logAttrRowsAffected          = "rows_affected"
	logAttrDurationMS            = "duration_ms"
	logActionInsert              = "insert"
	logActionCount               = "count"
	colAccountID                 = "account_id"
	colDistinctID                = "distinct_id"
	colEventType                 = "event_type"
	colEventName                 = "event_name"
	colOccurredAt                = "occurred_at"
	colRecord                    = "record"
	dialectPostgres              = "postgres"
	castTimestamp                = "?::timestamp with time zone"
	castJsonb                    = "?::jsonb"
)

type sqlQueryString = string

// Logger interface for SQL query logging, operational metrics, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// bufferedRecord holds one serialized event until the next batch flush.
type bufferedRecord struct {
	accountID  string
	distinctID string
	eventType  string
	eventName  string
	occurredAt time.Time
	record     []byte
}

// Sink writes generated ingestion events into a PostgreSQL table as flat
// JSON wire records. Events are buffered and written in batches; call Flush
// or Close to persist a partially filled buffer. Sink is safe for concurrent
// use by multiple goroutines.
type Sink struct {
	db              adapters.DBAdapter
	recordTableName string
	batchSize       int
	logger          Logger

	mu     sync.Mutex
	buffer []bufferedRecord
	closed bool
}

// Option defines a functional option for configuring a Sink.
type Option func(*Sink) error

// WithTableName sets the record table name for the Sink.
func WithTableName(tableName string) Option {
	return func(s *Sink) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		s.recordTableName = tableName

		return nil
	}
}

// WithBatchSize sets how many records are buffered before a batch insert.
func WithBatchSize(batchSize int) Option {
	return func(s *Sink) error {
		if batchSize <= 0 {
			return ErrInvalidBatchSize
		}

		s.batchSize = batchSize

		return nil
	}
}

// WithLogger sets the logger for the Sink.
// Debug level receives SQL queries with execution timing, Info level receives
// batch counts and durations, Error level receives critical failures.
func WithLogger(logger Logger) Option {
	return func(s *Sink) error {
		s.logger = logger
		return nil
	}
}

// NewSinkFromPGXPool creates a new Sink using a pgx Pool with optional configuration.
func NewSinkFromPGXPool(db *pgxpool.Pool, options ...Option) (*Sink, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newSink(adapters.NewPGXAdapter(db), options...)
}

// NewSinkFromSQLDB creates a new Sink using a sql.DB with optional configuration.
func NewSinkFromSQLDB(db *sql.DB, options ...Option) (*Sink, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newSink(adapters.NewSQLAdapter(db), options...)
}

// NewSinkFromSQLX creates a new Sink using a sqlx.DB with optional configuration.
func NewSinkFromSQLX(db *sqlx.DB, options ...Option) (*Sink, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newSink(adapters.NewSQLXAdapter(db), options...)
}

func newSink(db adapters.DBAdapter, options ...Option) (*Sink, error) {
	s := &Sink{
		db:              db,
		recordTableName: defaultRecordTableName,
		batchSize:       defaultBatchSize,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Emit serializes the event into its wire record and buffers it for the next
// batch insert. The batch is written once the buffer reaches the configured
// batch size.
func (s *Sink) Emit(ctx context.Context, event eventgen.Event) error {
	record, serializeErr := eventgen.Serialize(event)
	if serializeErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgSerializeRecordFailed, logAttrError, serializeErr.Error())
		}

		return serializeErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	s.buffer = append(s.buffer, bufferedRecord{
		accountID:  event.AccountID,
		distinctID: event.DistinctID,
		eventType:  string(event.Type),
		eventName:  event.EventName,
		occurredAt: event.Time,
		record:     record,
	})

	if len(s.buffer) >= s.batchSize {
		return s.flushLocked(ctx)
	}

	return nil
}

// Flush writes all buffered records to the database immediately.
func (s *Sink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flushLocked(ctx)
}

// Close flushes any buffered records and marks the sink as closed.
// Emit calls after Close return ErrSinkClosed.
func (s *Sink) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	flushErr := s.flushLocked(ctx)
	s.closed = true

	return flushErr
}

func (s *Sink) flushLocked(ctx context.Context) error {
	if len(s.buffer) == 0 {
		return nil
	}

	batch := s.buffer
	s.buffer = nil

	sqlQuery, buildErr := s.buildInsertQuery(batch)
	if buildErr != nil {
		return buildErr
	}

	start := time.Now()
	result, execErr := s.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(sqlQuery, logActionInsert, duration)

	if execErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrRecordCount, len(batch))
		}

		return errors.Join(ErrInsertingRecordsFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgRowsAffectedFailed, logAttrError, rowsAffectedErr.Error())
		}

		return errors.Join(ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	if rowsAffected < int64(len(batch)) {
		return fmt.Errorf("%w: expected %d, got %d", ErrUnexpectedRowsAffected, len(batch), rowsAffected)
	}

	if s.logger != nil {
		s.logger.Info(logMsgBatchInserted,
			logAttrRecordCount, len(batch),
			logAttrDurationMS, s.durationToMilliseconds(duration))
	}

	return nil
}

// Count returns the number of records currently stored in the record table.
func (s *Sink) Count(ctx context.Context) (int64, error) {
	sqlQuery, buildErr := s.buildCountQuery()
	if buildErr != nil {
		return 0, buildErr
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(sqlQuery, logActionCount, time.Since(start))

	if queryErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		}

		return 0, errors.Join(ErrCountingRecordsFailed, queryErr)
	}
	defer s.closeRows(rows)

	var count int64
	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			return 0, errors.Join(ErrCountingRecordsFailed, scanErr)
		}
	}

	return count, nil
}

// EnsureTable creates the record table and its lookup index if they do not exist.
func (s *Sink) EnsureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s TEXT NOT NULL,
	%s TEXT NOT NULL,
	%s TEXT NOT NULL,
	%s TEXT NOT NULL DEFAULT '',
	%s TIMESTAMP WITH TIME ZONE NOT NULL,
	%s JSONB NOT NULL
)`,
		s.recordTableName,
		colAccountID, colDistinctID, colEventType, colEventName, colOccurredAt, colRecord)

	if _, execErr := s.db.Exec(ctx, ddl); execErr != nil {
		return errors.Join(ErrEnsuringTableFailed, execErr)
	}

	index := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_%s_user ON %s (%s, %s, %s)",
		s.recordTableName, s.recordTableName, colAccountID, colDistinctID, colOccurredAt)

	if _, execErr := s.db.Exec(ctx, index); execErr != nil {
		return errors.Join(ErrEnsuringTableFailed, execErr)
	}

	return nil
}

func (s *Sink) buildInsertQuery(batch []bufferedRecord) (sqlQueryString, error) {
	builder := goqu.Dialect(dialectPostgres)

	rows := make([]any, len(batch))
	for i, r := range batch {
		rows[i] = goqu.Record{
			colAccountID:  r.accountID,
			colDistinctID: r.distinctID,
			colEventType:  r.eventType,
			colEventName:  r.eventName,
			colOccurredAt: goqu.L(castTimestamp, r.occurredAt),
			colRecord:     goqu.L(castJsonb, string(r.record)),
		}
	}

	insertStmt := builder.
		Insert(s.recordTableName).
		Rows(rows...)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgBuildInsertQueryFailed, logAttrError, toSQLErr.Error(), logAttrRecordCount, len(batch))
		}

		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *Sink) buildCountQuery() (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.recordTableName).
		Select(goqu.COUNT(goqu.Star()))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgBuildCountQueryFailed, logAttrError, toSQLErr.Error())
		}

		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// closeRows safely closes database rows and logs any errors.
func (s *Sink) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (s *Sink) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, s.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s *Sink) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
