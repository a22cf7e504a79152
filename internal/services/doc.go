// Package services defines the shared error taxonomy and context helpers used
// by the remote clients, the resolver and the sync orchestrator.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so callers can classify a
//     failure with errors.Is regardless of how deeply it was wrapped.
//   - Outcome classification that turns a per-record error into the short
//     reason recorded in logs and the run ledger.
//   - Context helpers that stamp run IDs, database kinds and page IDs so log
//     lines emitted deep inside a client still carry the record they serve.
//
// Only configuration errors are fatal to a run. Everything else is counted at
// the record boundary and the run moves on.
package services
