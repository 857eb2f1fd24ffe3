// Package store provides SQLite-backed storage for coercion failure
// reports.
//
// Each TryCoerce run that is recorded becomes one row in runs and one row
// per failing element in failure_cases:
//   - Runs: target type, input source, element and failure counts, and the
//     report fingerprint
//   - Failure cases: index and canonical JSON of the original value
//
// # Ordering
//
// Runs are ordered by seq, an autoincrement logical clock, with the run ID
// as tiebreaker. created_at is informational and never used for ordering.
// Failure cases are ordered by index.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Values are stored in canonical JSON (internal/canon), so a report read
// back fingerprints identically to the report that was written.
package store
