package analysis

import (
	"fmt"
	"strings"
	"time"
)

// Snapshot is a small shareable summary of a period.
type Snapshot struct {
	User            string  `json:"user" yaml:"user"`
	Period          Period  `json:"period" yaml:"period"`
	HasData         bool    `json:"has_data" yaml:"has_data"`
	TotalMinutes    int64   `json:"total_minutes" yaml:"total_minutes"`
	TopArtist       string  `json:"top_artist,omitempty" yaml:"top_artist,omitempty"`
	TopTrack        string  `json:"top_track,omitempty" yaml:"top_track,omitempty"`
	TopGenre        string  `json:"top_genre,omitempty" yaml:"top_genre,omitempty"`
	DiversityScore  float64 `json:"diversity_score" yaml:"diversity_score"`
	PrimaryMood     Mood    `json:"primary_mood" yaml:"primary_mood"`
	CurrentObsessed string  `json:"current_obsession,omitempty" yaml:"current_obsession,omitempty"`
}

// BuildSnapshot composes the wrapped report, diversity and obsession data for
// a period. Obsessions are looked for in all of plays, not only the period.
func BuildSnapshot(user string, plays []Play, genres GenreIndex, period Period, now time.Time) Snapshot {
	snap := Snapshot{User: user, Period: period, PrimaryMood: MoodVaried}
	wrapped := BuildWrappedReport(plays, genres, period)
	if !wrapped.HasData {
		return snap
	}
	s := wrapped.Stats
	snap.HasData = true
	snap.TotalMinutes = s.TotalMinutes
	if len(s.TopArtists) > 0 {
		snap.TopArtist = s.TopArtists[0].Label
	}
	if len(s.TopTracks) > 0 {
		snap.TopTrack = s.TopTracks[0].Label
	}
	if len(s.TopGenres) > 0 {
		snap.TopGenre = s.TopGenres[0].Name
	}
	snap.PrimaryMood = s.Mood.Primary()
	snap.DiversityScore = roundTo(ComputeDiversity(period.Filter(plays), genres).Scores.Overall, 1)

	obsessions := DetectObsessions(plays, genres, now)
	if len(obsessions.Current) > 0 {
		snap.CurrentObsessed = obsessions.Current[0].Label
	}
	return snap
}

func (s Snapshot) Text() string {
	if !s.HasData {
		return fmt.Sprintf("%s has no listening recorded for %s.", s.User, s.Period.Label)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s listened to %d minutes of music in %s.", s.User, s.TotalMinutes, s.Period.Label)
	if s.TopArtist != "" {
		fmt.Fprintf(&b, " Top artist: %s.", s.TopArtist)
	}
	if s.TopTrack != "" {
		fmt.Fprintf(&b, " Top track: %s.", s.TopTrack)
	}
	if s.TopGenre != "" {
		fmt.Fprintf(&b, " Top genre: %s.", s.TopGenre)
	}
	fmt.Fprintf(&b, " Mood: %s. Diversity score: %.0f/100.", s.PrimaryMood, s.DiversityScore)
	if s.CurrentObsessed != "" {
		fmt.Fprintf(&b, " Currently obsessed with %s.", s.CurrentObsessed)
	}
	return b.String()
}
