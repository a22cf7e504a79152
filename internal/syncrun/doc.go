// Package syncrun drives one synchronization pass over the configured Notion
// databases.
//
// A Runner binds every configured database to its live schema, then walks
// artists, albums, songs and labels in that order. Each page moves through a
// small state machine: its title is extracted, the resolver picks a
// MusicBrainz entity, the formatter turns that entity into a property set,
// and the page is updated. Every page ends as success, failed or skipped;
// per-page errors are counted and the loop continues, while configuration
// errors and cancellation end the run.
//
// Outcomes are reported to an optional Recorder, which the CLI backs with
// the history ledger.
package syncrun
