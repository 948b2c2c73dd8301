// Package guard decides whether a write against the Daleel datastore may
// proceed.
//
// Some record kinds are append-only: once a Source, Statement, Affiliation,
// AuditLog or ProfileVersion row exists it can never be deleted, and its
// defining fields can never change. The guard is the single gate that every
// mutation passes through before it reaches SQL.
//
// # Rules
//
//   - create is always allowed.
//   - Kinds outside the immutable set are always allowed.
//   - delete and deleteMany on an immutable kind are rejected.
//   - update and updateMany on an immutable kind are rejected, unless the
//     kind has a partial-mutability rule. Source has one: updates are
//     allowed as long as they avoid the archival fingerprint
//     (originUrl, archivedUrl, archivedAt, archiveMethod).
//
// # Purity
//
// Evaluate is a function of (kind, operation, fields) only. A Policy is
// built once, never mutated afterwards, and is safe to share between
// goroutines without locking. Callers must evaluate and dispatch in the same
// call path; see store.Store for the data-access side of that contract.
package guard
