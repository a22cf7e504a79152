package musicbrainz

// Area is a geographic area attached to an artist, label or release event.
type Area struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ISOCodes []string `json:"iso-3166-1-codes"`
}

// Code returns the first ISO 3166-1 code, if any.
func (a *Area) Code() string {
	if a == nil || len(a.ISOCodes) == 0 {
		return ""
	}
	return a.ISOCodes[0]
}

// LifeSpan bounds an artist or label in time.
type LifeSpan struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
	Ended bool   `json:"ended"`
}

// Genre is a curated genre with its vote count.
type Genre struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Tag is a free-form folksonomy tag.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Rating is the community rating on a 0-5 scale. Value is nil when nobody
// has voted.
type Rating struct {
	Value *float64 `json:"value"`
	Votes int      `json:"votes-count"`
}

// Alias is an alternative name for an artist or label.
type Alias struct {
	Name     string `json:"name"`
	SortName string `json:"sort-name"`
}

// URL is the target of a URL relationship.
type URL struct {
	ID       string `json:"id"`
	Resource string `json:"resource"`
}

// Relation is a relationship from an entity; only URL targets are decoded.
type Relation struct {
	Type       string `json:"type"`
	TargetType string `json:"target-type"`
	URL        *URL   `json:"url"`
}

// Resource returns the related URL, or "" for non-URL relations.
func (r Relation) Resource() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Resource
}

// ArtistRef is the artist embedded in an artist credit.
type ArtistRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SortName string `json:"sort-name"`
}

// ArtistCredit is one entry of a release or recording credit.
type ArtistCredit struct {
	Name       string    `json:"name"`
	JoinPhrase string    `json:"joinphrase"`
	Artist     ArtistRef `json:"artist"`
}

// DisplayName prefers the artist's canonical name over the credited name.
func (c ArtistCredit) DisplayName() string {
	if c.Artist.Name != "" {
		return c.Artist.Name
	}
	return c.Name
}

// ReleaseGroup groups the releases of one album.
type ReleaseGroup struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	PrimaryType      string  `json:"primary-type"`
	Type             string  `json:"type"`
	FirstReleaseDate string  `json:"first-release-date"`
	Genres           []Genre `json:"genres"`
	Tags             []Tag   `json:"tags"`
	Rating           Rating  `json:"rating"`
}

// Kind returns the primary type, falling back to the legacy type field.
func (g *ReleaseGroup) Kind() string {
	if g == nil {
		return ""
	}
	if g.PrimaryType != "" {
		return g.PrimaryType
	}
	return g.Type
}

// ReleaseEvent is a dated, localized release of a release.
type ReleaseEvent struct {
	Date string `json:"date"`
	Area *Area  `json:"area"`
}

// TrackRecording is the recording referenced by a track.
type TrackRecording struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Track is one track on a medium.
type Track struct {
	ID        string         `json:"id"`
	Number    string         `json:"number"`
	Position  int            `json:"position"`
	Title     string         `json:"title"`
	Recording TrackRecording `json:"recording"`
}

// Medium is one disc or side of a release.
type Medium struct {
	Format     string  `json:"format"`
	Position   int     `json:"position"`
	TrackCount int     `json:"track-count"`
	Tracks     []Track `json:"tracks"`
}

// LabelRef is the label embedded in label info.
type LabelRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LabelInfo pairs a label with a catalog number.
type LabelInfo struct {
	CatalogNumber string    `json:"catalog-number"`
	Label         *LabelRef `json:"label"`
}

// Release is a concrete published release of an album.
type Release struct {
	ID             string         `json:"id"`
	Score          int            `json:"score"`
	Title          string         `json:"title"`
	Status         string         `json:"status"`
	Packaging      string         `json:"packaging"`
	Barcode        string         `json:"barcode"`
	Date           string         `json:"date"`
	Country        string         `json:"country"`
	Events         []ReleaseEvent `json:"release-events"`
	ArtistCredit   []ArtistCredit `json:"artist-credit"`
	LabelInfo      []LabelInfo    `json:"label-info"`
	Media          []Medium       `json:"media"`
	ReleaseGroup   *ReleaseGroup  `json:"release-group"`
	Genres         []Genre        `json:"genres"`
	Tags           []Tag          `json:"tags"`
	Relations      []Relation     `json:"relations"`
	Disambiguation string         `json:"disambiguation"`
}

// CountryCode returns the release country, falling back to the area code of
// the first release event only.
func (r *Release) CountryCode() string {
	if r.Country != "" {
		return r.Country
	}
	if len(r.Events) > 0 {
		return r.Events[0].Area.Code()
	}
	return ""
}

// BestDate returns the release date, then the first release event's date,
// then the release group's first release date. Later events are ignored.
func (r *Release) BestDate() string {
	if r.Date != "" {
		return r.Date
	}
	if len(r.Events) > 0 && r.Events[0].Date != "" {
		return r.Events[0].Date
	}
	if r.ReleaseGroup != nil {
		return r.ReleaseGroup.FirstReleaseDate
	}
	return ""
}

// PrimaryType returns the release group's primary type.
func (r *Release) PrimaryType() string {
	return r.ReleaseGroup.Kind()
}

// HasTracks reports whether track listings were included in the payload.
func (r *Release) HasTracks() bool {
	for _, m := range r.Media {
		if len(m.Tracks) > 0 {
			return true
		}
	}
	return false
}

// Tracks returns every track across all media in order.
func (r *Release) Tracks() []Track {
	var tracks []Track
	for _, m := range r.Media {
		tracks = append(tracks, m.Tracks...)
	}
	return tracks
}

// TrackPosition returns the position of the track whose recording matches
// recordingID.
func (r *Release) TrackPosition(recordingID string) (int, bool) {
	for _, track := range r.Tracks() {
		if track.Recording.ID == recordingID {
			return track.Position, true
		}
	}
	return 0, false
}

// ContainsRecording reports whether any track references recordingID.
func (r *Release) ContainsRecording(recordingID string) bool {
	_, ok := r.TrackPosition(recordingID)
	return ok
}

// Merge overlays the non-empty fields of full onto a copy of r. Search stubs
// carry a few fields the detail payload omits (score), so neither side alone
// is complete.
func (r Release) Merge(full *Release) Release {
	if full == nil {
		return r
	}
	out := r
	setString(&out.ID, full.ID)
	setString(&out.Title, full.Title)
	setString(&out.Status, full.Status)
	setString(&out.Packaging, full.Packaging)
	setString(&out.Barcode, full.Barcode)
	setString(&out.Date, full.Date)
	setString(&out.Country, full.Country)
	setString(&out.Disambiguation, full.Disambiguation)
	if len(full.Events) > 0 {
		out.Events = full.Events
	}
	if len(full.ArtistCredit) > 0 {
		out.ArtistCredit = full.ArtistCredit
	}
	if len(full.LabelInfo) > 0 {
		out.LabelInfo = full.LabelInfo
	}
	if len(full.Media) > 0 {
		out.Media = full.Media
	}
	if full.ReleaseGroup != nil {
		out.ReleaseGroup = full.ReleaseGroup
	}
	if len(full.Genres) > 0 {
		out.Genres = full.Genres
	}
	if len(full.Tags) > 0 {
		out.Tags = full.Tags
	}
	if len(full.Relations) > 0 {
		out.Relations = full.Relations
	}
	return out
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// Recording is a distinct audio recording.
type Recording struct {
	ID             string         `json:"id"`
	Score          int            `json:"score"`
	Title          string         `json:"title"`
	Length         int            `json:"length"`
	Disambiguation string         `json:"disambiguation"`
	ISRCs          []string       `json:"isrcs"`
	ArtistCredit   []ArtistCredit `json:"artist-credit"`
	Releases       []Release      `json:"releases"`
	Genres         []Genre        `json:"genres"`
	Tags           []Tag          `json:"tags"`
	Rating         Rating         `json:"rating"`
	Relations      []Relation     `json:"relations"`
}

// Artist is a person or group credited on releases.
type Artist struct {
	ID             string     `json:"id"`
	Score          int        `json:"score"`
	Name           string     `json:"name"`
	SortName       string     `json:"sort-name"`
	Type           string     `json:"type"`
	Gender         string     `json:"gender"`
	Country        string     `json:"country"`
	Disambiguation string     `json:"disambiguation"`
	Area           *Area      `json:"area"`
	BeginArea      *Area      `json:"begin-area"`
	LifeSpan       LifeSpan   `json:"life-span"`
	Aliases        []Alias    `json:"aliases"`
	Genres         []Genre    `json:"genres"`
	Tags           []Tag      `json:"tags"`
	Rating         Rating     `json:"rating"`
	Relations      []Relation `json:"relations"`
}

// Label is a record label.
type Label struct {
	ID             string     `json:"id"`
	Score          int        `json:"score"`
	Name           string     `json:"name"`
	SortName       string     `json:"sort-name"`
	Type           string     `json:"type"`
	Country        string     `json:"country"`
	Disambiguation string     `json:"disambiguation"`
	Area           *Area      `json:"area"`
	LifeSpan       LifeSpan   `json:"life-span"`
	Aliases        []Alias    `json:"aliases"`
	Genres         []Genre    `json:"genres"`
	Tags           []Tag      `json:"tags"`
	Rating         Rating     `json:"rating"`
	Relations      []Relation `json:"relations"`
}

type artistSearch struct {
	Artists []Artist `json:"artists"`
}

type labelSearch struct {
	Labels []Label `json:"labels"`
}

type releaseSearch struct {
	Releases []Release `json:"releases"`
}

type recordingSearch struct {
	Recordings []Recording `json:"recordings"`
}

type coverArtListing struct {
	Images []struct {
		Front bool   `json:"front"`
		Image string `json:"image"`
	} `json:"images"`
}
