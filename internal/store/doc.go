// Package store persists blob records in SQLite and owns the status
// transition rules for the recognition workflow.
//
// Every status change goes through a single conditional UPDATE keyed by blob
// id, so concurrent workflow steps cannot interleave an inconsistent status:
// the WHERE clause admits only the legal source statuses for the target (plus
// the target itself, which makes repeated invocations of the same step
// harmless). Writers never read-modify-write.
//
// The database is transient workflow state, not an archive. Schema changes
// bump the version in schema.go; users delete the database to adopt the new
// schema.
package store
