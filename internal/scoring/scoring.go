// Package scoring ranks candidate releases. Scores are pure functions of the
// release: the same input always yields the same points and tie-break date.
package scoring

import (
	"slices"
	"strings"

	"notionbrainz/internal/musicbrainz"
	"notionbrainz/internal/textutil"
)

const (
	// CountryBonus rewards US releases.
	CountryBonus = 100
	// AlbumBonus rewards releases whose group is an album.
	AlbumBonus = 50
	// ContainsRequiredBonus rewards releases verified to contain every
	// required recording. It outweighs every other signal.
	ContainsRequiredBonus = 1000

	preferredCountry = "US"
	preferredType    = "album"
)

// Score is a release's rank: higher Points first, then earlier Date.
type Score struct {
	Points int
	Date   string
}

// Less reports whether s ranks ahead of other.
func (s Score) Less(other Score) bool {
	if s.Points != other.Points {
		return s.Points > other.Points
	}
	return s.Date < other.Date
}

// ScoreRelease computes the base score of a release.
func ScoreRelease(r *musicbrainz.Release) Score {
	points := 0
	if strings.EqualFold(r.CountryCode(), preferredCountry) {
		points += CountryBonus
	}
	if strings.EqualFold(r.PrimaryType(), preferredType) {
		points += AlbumBonus
	}
	date, ok := textutil.PeriodEnd(r.BestDate())
	if !ok {
		date = textutil.UndefinedDate
	}
	return Score{Points: points, Date: date}
}

// Requirement lists the recordings a release must contain.
type Requirement struct {
	RecordingIDs []string
	Titles       []string
}

// Empty reports whether nothing is required.
func (q Requirement) Empty() bool {
	return len(q.RecordingIDs) == 0 && len(q.Titles) == 0
}

// SatisfiedBy reports whether r contains every required recording.
func (q Requirement) SatisfiedBy(r *musicbrainz.Release) bool {
	return ContainsRecordings(r, q.RecordingIDs, q.Titles)
}

// ContainsRecordings reports whether the release's track listing covers every
// recording ID and every title (normalized). A release without track data
// only satisfies an empty requirement.
func ContainsRecordings(r *musicbrainz.Release, recordingIDs, requiredTitles []string) bool {
	if len(recordingIDs) == 0 && len(requiredTitles) == 0 {
		return true
	}
	ids := make(map[string]struct{})
	titles := make(map[string]struct{})
	for _, track := range r.Tracks() {
		ids[track.Recording.ID] = struct{}{}
		title := track.Recording.Title
		if title == "" {
			title = track.Title
		}
		titles[textutil.NormalizedKey(title)] = struct{}{}
	}
	for _, id := range recordingIDs {
		if _, ok := ids[id]; !ok {
			return false
		}
	}
	for _, title := range requiredTitles {
		if _, ok := titles[textutil.NormalizedKey(title)]; !ok {
			return false
		}
	}
	return true
}

// Candidate is a scored release.
type Candidate struct {
	Release     musicbrainz.Release
	Score       Score
	HasRequired bool
}

// Evaluate scores a release, adding the containment bonus when it is
// verified to hold every required recording.
func Evaluate(r musicbrainz.Release, req Requirement) Candidate {
	c := Candidate{Release: r, Score: ScoreRelease(&r)}
	if !req.Empty() && req.SatisfiedBy(&r) {
		c.HasRequired = true
		c.Score.Points += ContainsRequiredBonus
	}
	return c
}

// Sort orders candidates by (-points, date) keeping the input order of ties.
func Sort(candidates []Candidate) {
	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		switch {
		case a.Score.Less(b.Score):
			return -1
		case b.Score.Less(a.Score):
			return 1
		default:
			return 0
		}
	})
}
