package musicbrainz

import (
	"strings"

	"github.com/google/uuid"
)

// ValidID reports whether id is a well-formed MBID.
func ValidID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// EntityURL returns the public MusicBrainz page for an entity.
func EntityURL(entity, id string) string {
	return "https://musicbrainz.org/" + entity + "/" + id
}
