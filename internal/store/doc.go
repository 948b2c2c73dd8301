// Package store provides SQLite-backed storage for Daleel records.
//
// Every write goes through one of five entry points (insert, Update,
// UpdateMany, Delete, DeleteMany). Each entry point asks the injected
// guard.Evaluator for a Decision before any SQL is prepared; a rejection
// returns the *guard.Violation and leaves the database untouched. The
// typed repositories (CreateSource, UpdateSourceMetadata, ...) are thin
// layers over those entry points, and the underlying *sql.DB is not
// exported.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Timestamps are stored as RFC 3339 UTC text (record.FormatTime).
package store
