// Package postgressink persists generated ingestion events into a
// PostgreSQL table, typically to seed an analytics store with fixture data.
//
// The sink buffers events and writes them in batches as flat JSON wire
// records alongside a few indexed columns for querying. It supports multiple
// PostgreSQL database libraries through dedicated factory methods:
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	sink, _ := postgressink.NewSinkFromPGXPool(pool)
//	defer sink.Close(ctx)
//
// NewSinkFromSQLDB and NewSinkFromSQLX offer the same behavior on top of
// database/sql and sqlx connections.
package postgressink
