package musicbrainz

import "strings"

var phraseEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Phrase quotes a value for use as a Lucene phrase.
func Phrase(value string) string {
	return `"` + phraseEscaper.Replace(strings.TrimSpace(value)) + `"`
}

// ReleaseQuery builds release:"title" AND artist:"artist".
func ReleaseQuery(title, artist string) string {
	query := "release:" + Phrase(title)
	if strings.TrimSpace(artist) != "" {
		query += " AND artist:" + Phrase(artist)
	}
	return query
}

// RecordingQuery builds recording:"title" with optional artist and release
// clauses.
func RecordingQuery(title, artist, album string) string {
	query := "recording:" + Phrase(title)
	if strings.TrimSpace(artist) != "" {
		query += " AND artist:" + Phrase(artist)
	}
	if strings.TrimSpace(album) != "" {
		query += " AND release:" + Phrase(album)
	}
	return query
}

// ReleasesByArtist selects releases credited to an artist MBID.
func ReleasesByArtist(artistID string) string {
	return "arid:" + strings.TrimSpace(artistID)
}
