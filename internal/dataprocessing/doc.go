// Package dataprocessing turns raw price tables and archived JSON logs into
// trusted group summaries. It holds the ingestion path, the cleaning chain and
// the aggregator.
//
// # Architecture
//
// The package is organized into four components:
//
//  1. Decoder: parses one line of text into a Record or reports a DecodeError
//  2. ArchiveWalker: decodes every line of every member of a zip archive,
//     tallying malformed lines instead of stopping
//  3. Cleaning stages: RepairMissing, CoerceTypes, Deduplicate and
//     ValidateInvariants, composed by a Pipeline
//  4. Aggregator: per-group mean and standard deviation of a numeric column
//
// # Data Flow
//
//	zip archive → ArchiveWalker → Records → RecordsToTable ┐
//	CSV / XLSX  → TableLoader ─────────────────────────────┴→ Pipeline → Aggregator → Summary
//
// # Error Handling
//
// Only a missing or unreadable input ends a run. Per-line and per-cell problems
// are absorbed: malformed lines are counted, uncoercible cells become Missing,
// rows breaking an invariant are excluded, and every such action is reported
// through a StageReport or WalkResult so data loss can be audited.
//
// # Immutability
//
// Stages never modify their input Table; each returns a new one, so a caller
// holding the pre-stage table can keep using it.
package dataprocessing
