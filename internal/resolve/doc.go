// Package resolve narrows MusicBrainz candidates down to the single entity a
// local catalog record refers to.
//
// Every search-driven choice passes the exact title check in textutil; a
// record with no exact match stays unresolved rather than being linked to a
// near miss. Stored IDs are trusted when they still resolve, except album IDs,
// which are re-checked against the songs linked to the album.
package resolve
