// Package ledger persists a history of keyframe batches in SQLite.
//
// The ledger is opt-in. Output directories remain the only signal used to
// decide whether an input is done; the ledger only records what each run
// did so `keyframer history` can report it.
//
// Schema changes bump schemaVersion. An existing database with a different
// version is rejected with ErrSchemaMismatch and must be deleted.
package ledger
