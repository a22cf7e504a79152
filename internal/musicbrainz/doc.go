// Package musicbrainz is a rate-limited client for the MusicBrainz web
// service and the Cover Art Archive.
//
// Every outbound request passes through one shared clock that enforces a
// minimum spacing between requests. Failed requests are retried with a fixed
// schedule: rate-limited responses (429) wait 2^attempt+1 seconds, other
// failures wait 1+0.5*attempt seconds. A 404 is terminal and surfaces as
// services.ErrNotFound. Detail lookups and cover-art lookups are memoized for
// the lifetime of the client; call Reset to start over.
//
// Payloads are decoded once into the typed structs in types.go so downstream
// code never re-parses JSON.
package musicbrainz
