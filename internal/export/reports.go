package export

import (
	"strings"
	"time"

	"github.com/ademuri/listening-stats/internal/analysis"
)

const dateFormat = "2006-01-02"

func minutes(ms int64) float64 {
	return float64(ms/600) / 100
}

func entityTable(name string, entities []analysis.Entity) Table {
	t := Table{Name: name, Header: []string{"Rank", "Name", "Plays", "Minutes", "First played", "Last played"}}
	for i, e := range entities {
		t.Append(i+1, e.Label, e.PlayCount, minutes(e.TotalMs), e.FirstSeen, e.LastSeen)
	}
	return t
}

func shareTable(name string, shares []analysis.Share) Table {
	t := Table{Name: name, Header: []string{"Name", "Minutes", "Percentage"}}
	for _, s := range shares {
		t.Append(s.Name, minutes(s.TotalMs), s.Percentage)
	}
	return t
}

func countTable(name string, counts []analysis.Count) Table {
	t := Table{Name: name, Header: []string{"Name", "Count", "Percentage"}}
	for _, c := range counts {
		t.Append(c.Name, c.Count, c.Percentage)
	}
	return t
}

func moodTable(profile analysis.MoodProfile) Table {
	t := Table{Name: "Mood", Header: []string{"Mood", "Score"}}
	for _, m := range profile {
		t.Append(string(m.Mood), m.Score)
	}
	return t
}

func hourlyTable(buckets []analysis.Bucket) Table {
	t := Table{Name: "Hourly", Header: []string{"Hour", "Plays", "Minutes"}}
	for _, b := range buckets {
		t.Append(b.Index, b.Plays, minutes(b.TotalMs))
	}
	return t
}

func weekdayTable(buckets []analysis.Bucket) Table {
	t := Table{Name: "Day of week", Header: []string{"Day", "Plays", "Minutes"}}
	for _, b := range buckets {
		t.Append(time.Weekday(b.Index).String(), b.Plays, minutes(b.TotalMs))
	}
	return t
}

func WrappedTables(r analysis.WrappedReport) []Table {
	summary := Table{Name: "Summary", Header: []string{"Metric", "Value"}}
	summary.Append("Period", r.Period.Label)
	if !r.HasData {
		summary.Append("Plays", 0)
		return []Table{summary}
	}
	s := r.Stats
	summary.Append("Plays", s.TotalPlays)
	summary.Append("Minutes", s.TotalMinutes)
	summary.Append("Unique tracks", s.UniqueTracks)
	summary.Append("Unique artists", s.UniqueArtists)
	summary.Append("Unique albums", s.UniqueAlbums)
	summary.Append("Peak hour", s.PeakHour)
	summary.Append("Peak day", s.PeakDay.String())
	summary.Append("Minutes per day", minutes(s.AvgMsPerDay))
	summary.Append("Mood", string(s.Mood.Primary()))

	facts := Table{Name: "Fun facts", Header: []string{"Fact"}}
	for _, f := range s.FunFacts {
		facts.Append(f)
	}

	return []Table{
		summary,
		entityTable("Top artists", s.TopArtists),
		entityTable("Top tracks", s.TopTracks),
		entityTable("Top albums", s.TopAlbums),
		shareTable("Top genres", s.TopGenres),
		hourlyTable(s.Hourly),
		weekdayTable(s.DayOfWeek),
		moodTable(s.Mood),
		facts,
	}
}

func DiversityTables(r analysis.DiversityReport) []Table {
	scores := Table{Name: "Scores", Header: []string{"Score", "Value"}}
	scores.Append("Overall", r.Scores.Overall)
	scores.Append("Genre diversity", r.Scores.GenreDiversity)
	scores.Append("Artist diversity", r.Scores.ArtistDiversity)
	scores.Append("Exploration", r.Scores.ExplorationScore)
	scores.Append("Mainstream", r.Scores.MainstreamScore)
	scores.Append("Niche", r.Scores.NicheScore)
	scores.Append("Top genre concentration", r.TopGenreConcentration)
	scores.Append("Distinct genres", r.DistinctGenres)
	scores.Append("Distinct artists", r.DistinctArtists)
	return []Table{scores, shareTable("Genres", r.Genres), shareTable("Artists", r.Artists)}
}

func PatternsTables(p analysis.TemporalPatterns) []Table {
	summary := Table{Name: "Summary", Header: []string{"Metric", "Value"}}
	summary.Append("Peak hour", p.PeakHour)
	summary.Append("Peak day", p.PeakDay.String())
	summary.Append("Current streak", p.Streak.Current)
	summary.Append("Longest streak", p.Streak.Longest)

	daily := Table{Name: "Daily", Header: []string{"Date", "Plays", "Minutes"}}
	for _, d := range p.Daily {
		daily.Append(d.Date.Format(dateFormat), d.Plays, minutes(d.TotalMs))
	}
	heatmap := Table{Name: "Heatmap", Header: []string{"Date", "Plays", "Level"}}
	for _, c := range p.Heatmap {
		heatmap.Append(c.Date.Format(dateFormat), c.Plays, c.Level)
	}
	return []Table{summary, hourlyTable(p.Hourly), weekdayTable(p.DayOfWeek), daily, heatmap}
}

func obsessionTable(name string, list []analysis.Obsession) Table {
	t := Table{Name: name, Header: []string{
		"Kind", "Name", "Status", "Intensity", "Start", "Peak", "End", "Plays in burst", "Plays per day", "Window", "Total plays", "Last played", "Genres",
	}}
	for _, o := range list {
		t.Append(string(o.Kind), o.Label, string(o.Status), o.Intensity,
			o.Period.StartDate.Format(dateFormat), o.Period.PeakDate.Format(dateFormat), o.Period.EndDate.Format(dateFormat),
			o.Period.PlayCount, o.Period.AvgPlaysPerDay, o.WindowSize, o.TotalPlays, o.LastPlayed, strings.Join(o.Genres, ", "))
	}
	return t
}

func ObsessionTables(r analysis.ObsessionReport) []Table {
	summary := Table{Name: "Summary", Header: []string{"Metric", "Value"}}
	summary.Append("Plays", r.TotalPlays)
	summary.Append("Insufficient data", r.InsufficientData)
	return []Table{
		summary,
		obsessionTable("Current", r.Current),
		obsessionTable("Past", r.Past),
		obsessionTable("Tracks", r.Tracks),
		obsessionTable("Artists", r.Artists),
	}
}

func MoodTables(profile analysis.MoodProfile) []Table {
	return []Table{moodTable(profile)}
}

func ComparisonTables(r analysis.ComparisonReport) []Table {
	t := Table{Name: "Comparison", Header: []string{"Metric", "Value"}}
	t.Append("User", r.UserID)
	t.Append("From", r.WindowStart.Format(dateFormat))
	t.Append("To", r.WindowEnd.Format(dateFormat))
	t.Append("Minutes", minutes(r.TotalMs))
	t.Append("Rank", r.Rank)
	t.Append("Users", r.TotalUsers)
	t.Append("Percentile", r.Percentile)
	t.Append("Artists played", r.RecentArtists)
	t.Append("New artists", r.NewArtists)
	t.Append("Discovery score", r.DiscoveryScore)
	return []Table{t}
}

func playlistTrackTable(name string, tracks []analysis.PlaylistTrackStats) Table {
	t := Table{Name: name, Header: []string{"Track", "Artist", "Album", "Year", "Plays", "Last played", "Moods"}}
	for _, s := range tracks {
		var year any
		if s.ReleaseYear > 0 {
			year = s.ReleaseYear
		}
		t.Append(s.Name, s.Artist, s.Album, year, s.PlayCount, s.LastPlayed, strings.Join(s.Moods, ", "))
	}
	return t
}

func PlaylistTables(r analysis.PlaylistReport) []Table {
	summary := Table{Name: "Summary", Header: []string{"Metric", "Value"}}
	summary.Append("Playlist", r.Name)
	summary.Append("Tracks", r.TotalTracks)
	summary.Append("Played", r.PlayedTracks)
	summary.Append("Completion rate", r.CompletionRate)
	return []Table{
		summary,
		playlistTrackTable("Tracks", r.Tracks),
		playlistTrackTable("Most played", r.MostPlayed),
		playlistTrackTable("Unplayed", r.Unplayed),
		countTable("Genres", r.Genres),
		countTable("Artists", r.Artists),
		countTable("Decades", r.Decades),
		countTable("Moods", r.Moods),
	}
}

func SnapshotTables(s analysis.Snapshot) []Table {
	t := Table{Name: "Snapshot", Header: []string{"Metric", "Value"}}
	t.Append("User", s.User)
	t.Append("Period", s.Period.Label)
	t.Append("Minutes", s.TotalMinutes)
	t.Append("Top artist", s.TopArtist)
	t.Append("Top track", s.TopTrack)
	t.Append("Top genre", s.TopGenre)
	t.Append("Diversity score", s.DiversityScore)
	t.Append("Mood", string(s.PrimaryMood))
	t.Append("Current obsession", s.CurrentObsessed)
	return []Table{t}
}
