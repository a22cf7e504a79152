// Package history persists a ledger of sync runs in SQLite.
//
// Each run row carries its options and final counters; each outcome row
// records what happened to one Notion page (status, failure reason, the
// MusicBrainz ID that was linked). The ledger never stores remote metadata,
// so it is not a cache and a later run always re-fetches from MusicBrainz.
//
// Schema changes bump schemaVersion in schema.go; users delete the ledger
// to adopt the new schema.
package history
