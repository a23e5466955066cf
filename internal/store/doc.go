// Package store archives analysis runs and their residual rows in SQLite.
//
// The schema is embedded and versioned; a database written by a different
// schema version is rejected with ErrSchemaMismatch rather than migrated.
// Writes retry on SQLITE_BUSY with exponential backoff.
package store
