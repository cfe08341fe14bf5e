// Package adapters provides database adapter implementations for the
// PostgreSQL record sink.
//
// The adapter pattern supports multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality
// through a common DBAdapter interface, allowing the sink to work with any
// supported database connection type.
package adapters
