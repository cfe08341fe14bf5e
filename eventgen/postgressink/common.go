package postgressink

import "errors"

var (
	// ErrNilDatabaseConnection occurs when a factory method receives a nil connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName occurs when an empty table name is supplied as an option.
	ErrEmptyTableName = errors.New("table name must not be empty")

	// ErrInvalidBatchSize occurs when a non-positive batch size is supplied as an option.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrBuildingQueryFailed occurs when the insert or count query can not be built.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrInsertingRecordsFailed occurs when writing a batch of records fails.
	ErrInsertingRecordsFailed = errors.New("inserting records failed")

	// ErrGettingRowsAffectedFailed occurs when the affected row count can not be read.
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")

	// ErrUnexpectedRowsAffected occurs when an insert reports fewer rows than were sent.
	ErrUnexpectedRowsAffected = errors.New("unexpected number of rows affected")

	// ErrCountingRecordsFailed occurs when the stored record count can not be queried.
	ErrCountingRecordsFailed = errors.New("counting records failed")

	// ErrEnsuringTableFailed occurs when the record table can not be created.
	ErrEnsuringTableFailed = errors.New("ensuring record table failed")

	// ErrSinkClosed occurs when events are emitted after the sink was closed.
	ErrSinkClosed = errors.New("sink is closed")
)
