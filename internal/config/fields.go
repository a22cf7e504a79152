package config

import "slices"

// Kind names one of the synced databases.
type Kind string

const (
	KindArtists Kind = "artists"
	KindAlbums  Kind = "albums"
	KindSongs   Kind = "songs"
	KindLabels  Kind = "labels"
)

// Kinds lists the synced databases in processing order.
func Kinds() []Kind {
	return []Kind{KindArtists, KindAlbums, KindSongs, KindLabels}
}

// ParseKind accepts a database name as written on the command line.
func ParseKind(value string) (Kind, bool) {
	k := Kind(value)
	if slices.Contains(Kinds(), k) {
		return k, true
	}
	return "", false
}

// Semantic field names used as keys in the [properties.*] tables.
const (
	FieldTitle           = "title"
	FieldMusicBrainzID   = "musicbrainz_id"
	FieldSortName        = "sort_name"
	FieldType            = "type"
	FieldGender          = "gender"
	FieldArea            = "area"
	FieldBornIn          = "born_in"
	FieldIGLink          = "ig_link"
	FieldWebsiteLink     = "website_link"
	FieldYouTubeLink     = "youtube_link"
	FieldBandcampLink    = "bandcamp_link"
	FieldStreamingLink   = "streaming_link"
	FieldCountry         = "country"
	FieldBeginDate       = "begin_date"
	FieldEndDate         = "end_date"
	FieldDisambiguation  = "disambiguation"
	FieldDescription     = "description"
	FieldGenres          = "genres"
	FieldTags            = "tags"
	FieldRating          = "rating"
	FieldLastUpdated     = "last_updated"
	FieldMusicBrainzURL  = "musicbrainz_url"
	FieldAlbums          = "albums"
	FieldSongs           = "songs"
	FieldArtist          = "artist"
	FieldReleaseDate     = "release_date"
	FieldLabel           = "label"
	FieldListen          = "listen"
	FieldStatus          = "status"
	FieldPackaging       = "packaging"
	FieldBarcode         = "barcode"
	FieldFormat          = "format"
	FieldTrackCount      = "track_count"
	FieldCoverImage      = "cover_image"
	FieldAlbum           = "album"
	FieldTrackNumber     = "track_number"
	FieldLength          = "length"
	FieldISRC            = "isrc"
	FieldOfficialWebsite = "official_website"
	FieldIG              = "ig"
	FieldBandcamp        = "bandcamp"
	FieldFounded         = "founded"
)

var knownFields = map[Kind][]string{
	KindArtists: {
		FieldTitle, FieldMusicBrainzID, FieldSortName, FieldType, FieldGender, FieldArea,
		FieldBornIn, FieldIGLink, FieldWebsiteLink, FieldYouTubeLink, FieldBandcampLink,
		FieldStreamingLink, FieldCountry, FieldBeginDate, FieldEndDate, FieldDisambiguation,
		FieldDescription, FieldGenres, FieldTags, FieldRating, FieldLastUpdated,
		FieldMusicBrainzURL, FieldAlbums, FieldSongs,
	},
	KindAlbums: {
		FieldTitle, FieldMusicBrainzID, FieldArtist, FieldReleaseDate, FieldCountry,
		FieldLabel, FieldType, FieldListen, FieldStatus, FieldPackaging, FieldBarcode,
		FieldFormat, FieldTrackCount, FieldDescription, FieldGenres, FieldTags, FieldRating,
		FieldCoverImage, FieldMusicBrainzURL, FieldLastUpdated, FieldSongs,
	},
	KindSongs: {
		FieldTitle, FieldMusicBrainzID, FieldArtist, FieldAlbum, FieldTrackNumber,
		FieldLength, FieldISRC, FieldDisambiguation, FieldDescription, FieldGenres,
		FieldTags, FieldListen, FieldRating, FieldMusicBrainzURL, FieldLastUpdated,
	},
	KindLabels: {
		FieldTitle, FieldMusicBrainzID, FieldType, FieldCountry, FieldBeginDate,
		FieldEndDate, FieldDisambiguation, FieldDescription, FieldGenres, FieldTags,
		FieldRating, FieldLastUpdated, FieldMusicBrainzURL, FieldOfficialWebsite,
		FieldIG, FieldBandcamp, FieldFounded, FieldAlbums, FieldArea,
	},
}

// KnownFields returns the semantic fields a database kind understands.
func KnownFields(kind Kind) []string {
	return slices.Clone(knownFields[kind])
}

// FieldMap maps a semantic field name to the Notion property ID that backs
// it. A missing or blank entry means the field is not configured.
type FieldMap map[string]string

// ID returns the property ID for field, or "" when unconfigured.
func (m FieldMap) ID(field string) string {
	if m == nil {
		return ""
	}
	return m[field]
}

// Has reports whether field is configured.
func (m FieldMap) Has(field string) bool {
	return m.ID(field) != ""
}
