package properties

import (
	"slices"
	"strings"

	"notionbrainz/internal/musicbrainz"
	"notionbrainz/internal/notion"
	"notionbrainz/internal/textutil"
)

const (
	maxNames   = 10
	maxCredits = 5
)

// date writes a single day, expanding partial dates to the start of their
// period.
func date(value string) Result {
	day, ok := textutil.PeriodStart(value)
	if !ok {
		return Omit()
	}
	return Set(notion.Date(day, ""))
}

func rating(r musicbrainz.Rating) Result {
	if r.Value == nil {
		return Omit()
	}
	return Set(notion.Number(*r.Value))
}

func genreNames(genres []musicbrainz.Genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		if g.Name != "" {
			names = append(names, g.Name)
		}
	}
	return names
}

func firstGenres(genres []musicbrainz.Genre) Result {
	names := genreNames(genres)
	return options(names[:min(maxNames, len(names))])
}

// tagsExcept returns up to ten tag names that are not also genre names.
func tagsExcept(tags []musicbrainz.Tag, genres []musicbrainz.Genre) Result {
	skip := genreNames(genres)
	names := make([]string, 0, maxNames)
	for _, t := range tags {
		if t.Name == "" || slices.Contains(skip, t.Name) {
			continue
		}
		names = append(names, t.Name)
		if len(names) == maxNames {
			break
		}
	}
	return options(names)
}

// urlLinks is the classification of an entity's URL relations.
type urlLinks struct {
	instagram string
	website   string
	youtube   string
	bandcamp  string
	spotify   string
}

var websiteTypes = []string{"official homepage", "official website", "official site"}

func classifyURLs(relations []musicbrainz.Relation) urlLinks {
	var out urlLinks
	for _, rel := range relations {
		resource := rel.Resource()
		if resource == "" {
			continue
		}
		kind := strings.ToLower(rel.Type)
		lower := strings.ToLower(resource)
		switch {
		case kind == "instagram" || (kind == "social network" && strings.Contains(lower, "instagram")):
			setOnce(&out.instagram, resource)
		case slices.Contains(websiteTypes, kind):
			setOnce(&out.website, resource)
		case (strings.Contains(lower, "youtube") || strings.Contains(lower, "youtu.be")) && !strings.Contains(lower, "music.youtube.com"):
			setOnce(&out.youtube, resource)
		case strings.Contains(lower, "bandcamp"):
			setOnce(&out.bandcamp, resource)
		case strings.Contains(lower, "spotify"):
			setOnce(&out.spotify, resource)
		}
	}
	return out
}

func setOnce(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

// streamingLink returns a spotify.com URL from a streaming relation.
func streamingLink(relations []musicbrainz.Relation) string {
	for _, rel := range relations {
		kind := strings.ToLower(rel.Type)
		if kind != "streaming" && kind != "free streaming" {
			continue
		}
		if resource := rel.Resource(); strings.Contains(strings.ToLower(resource), "spotify.com") {
			return resource
		}
	}
	return ""
}

func firstCreditName(credits []musicbrainz.ArtistCredit) string {
	if len(credits) == 0 {
		return ""
	}
	return credits[0].DisplayName()
}

func mediaFormats(media []musicbrainz.Medium) []string {
	var formats []string
	for _, m := range media {
		if m.Format != "" && !slices.Contains(formats, m.Format) {
			formats = append(formats, m.Format)
		}
	}
	return formats
}

func trackCount(media []musicbrainz.Medium) int {
	total := 0
	for _, m := range media {
		if m.TrackCount > 0 {
			total += m.TrackCount
		} else {
			total += len(m.Tracks)
		}
	}
	return total
}
