package analysis

import (
	"fmt"
	"sort"
	"time"
)

const (
	playlistMostPlayed = 10
	playlistMoodTags   = 2
)

type PlaylistTrack struct {
	TrackID     string `json:"track_id" yaml:"track_id"`
	Name        string `json:"name" yaml:"name"`
	ArtistID    string `json:"artist_id" yaml:"artist_id"`
	Artist      string `json:"artist" yaml:"artist"`
	Album       string `json:"album" yaml:"album"`
	ReleaseYear int    `json:"release_year,omitempty" yaml:"release_year,omitempty"`
	DurationMs  int64  `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
}

type Playlist struct {
	ID     string          `json:"id" yaml:"id"`
	Name   string          `json:"name" yaml:"name"`
	Tracks []PlaylistTrack `json:"tracks" yaml:"tracks"`
}

type PlaylistTrackStats struct {
	PlaylistTrack `yaml:",inline"`
	PlayCount     int64     `json:"play_count" yaml:"play_count"`
	LastPlayed    time.Time `json:"last_played,omitempty" yaml:"last_played,omitempty"`
	Moods         []string  `json:"moods" yaml:"moods"`
}

type PlaylistReport struct {
	Name           string               `json:"name" yaml:"name"`
	TotalTracks    int                  `json:"total_tracks" yaml:"total_tracks"`
	PlayedTracks   int                  `json:"played_tracks" yaml:"played_tracks"`
	CompletionRate float64              `json:"completion_rate" yaml:"completion_rate"`
	Genres         []Count              `json:"genres" yaml:"genres"`
	Artists        []Count              `json:"artists" yaml:"artists"`
	Decades        []Count              `json:"decades" yaml:"decades"`
	Moods          []Count              `json:"moods" yaml:"moods"`
	Tracks         []PlaylistTrackStats `json:"tracks" yaml:"tracks"`
	MostPlayed     []PlaylistTrackStats `json:"most_played" yaml:"most_played"`
	Unplayed       []PlaylistTrackStats `json:"unplayed" yaml:"unplayed"`
}

// AnalyzePlaylist joins a playlist listing with play history and the genre
// index.
func AnalyzePlaylist(pl Playlist, plays []Play, genres GenreIndex) PlaylistReport {
	report := PlaylistReport{
		Name:        pl.Name,
		TotalTracks: len(pl.Tracks),
		Tracks:      []PlaylistTrackStats{},
		MostPlayed:  []PlaylistTrackStats{},
		Unplayed:    []PlaylistTrackStats{},
	}
	byTrack := Aggregate(plays, ByTrack)

	genreCounts := newCounter()
	artistCounts := newCounter()
	decadeCounts := newCounter()
	moodCounts := newCounter()

	for _, t := range pl.Tracks {
		st := PlaylistTrackStats{PlaylistTrack: t}
		if e, ok := byTrack[t.TrackID]; ok && t.TrackID != "" {
			st.PlayCount = e.PlayCount
			st.LastPlayed = e.LastSeen
		}

		trackGenres := genres.Genres(t.ArtistID)
		profile := ClassifyMood(trackGenres)
		st.Moods = profile.Tags(playlistMoodTags)

		for _, g := range trackGenres {
			genreCounts.add(g)
		}
		artistCounts.add(t.Artist)
		decadeCounts.add(decade(t.ReleaseYear))
		moodCounts.add(string(profile.Primary()))

		if st.PlayCount > 0 {
			report.PlayedTracks++
		} else {
			report.Unplayed = append(report.Unplayed, st)
		}
		report.Tracks = append(report.Tracks, st)
	}

	report.CompletionRate = roundTo(Percentage(float64(report.PlayedTracks), float64(report.TotalTracks)), 1)
	report.Genres = genreCounts.counts(len(pl.Tracks))
	report.Artists = artistCounts.counts(len(pl.Tracks))
	report.Decades = decadeCounts.counts(len(pl.Tracks))
	report.Moods = moodCounts.counts(len(pl.Tracks))

	for _, st := range report.Tracks {
		if st.PlayCount > 0 {
			report.MostPlayed = append(report.MostPlayed, st)
		}
	}
	sort.SliceStable(report.MostPlayed, func(i, j int) bool {
		return report.MostPlayed[i].PlayCount > report.MostPlayed[j].PlayCount
	})
	if len(report.MostPlayed) > playlistMostPlayed {
		report.MostPlayed = report.MostPlayed[:playlistMostPlayed]
	}
	return report
}

func decade(year int) string {
	if year <= 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%ds", year/10*10)
}

// counter keeps insertion order so equal counts sort deterministically.
type counter struct {
	order []string
	n     map[string]int
}

func newCounter() *counter { return &counter{n: make(map[string]int)} }

func (c *counter) add(name string) {
	if name == "" {
		return
	}
	if _, ok := c.n[name]; !ok {
		c.order = append(c.order, name)
	}
	c.n[name]++
}

// counts returns the distribution as percentages of total, largest first.
func (c *counter) counts(total int) []Count {
	out := make([]Count, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, Count{
			Name:       name,
			Count:      c.n[name],
			Percentage: roundTo(Percentage(float64(c.n[name]), float64(total)), 1),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
