package analysis

import (
	"fmt"
	"time"
)

const (
	wrappedTopArtists = 10
	wrappedTopTracks  = 10
	wrappedTopAlbums  = 5
	wrappedTopGenres  = 10
)

// Period is the half-open range [Start, End).
type Period struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
	Label string    `json:"label" yaml:"label"`
}

func MonthPeriod(year int, month time.Month, loc *time.Location) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Period{Start: start, End: start.AddDate(0, 1, 0), Label: start.Format("2006-01")}
}

func YearPeriod(year int, loc *time.Location) Period {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, loc)
	return Period{Start: start, End: start.AddDate(1, 0, 0), Label: start.Format("2006")}
}

func RangePeriod(start, end time.Time) Period {
	return Period{Start: start, End: end, Label: start.Format(dateFormat) + "_" + end.Format(dateFormat)}
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Days is the number of calendar days the period touches, at least 1.
func (p Period) Days() int {
	d := daysBetween(p.Start, p.End)
	if d < 1 {
		return 1
	}
	return d
}

// Filter returns the plays inside the period.
func (p Period) Filter(plays []Play) []Play {
	out := make([]Play, 0, len(plays))
	for _, pl := range plays {
		if p.Contains(pl.PlayedAt) {
			out = append(out, pl)
		}
	}
	return out
}

type WrappedStats struct {
	TotalMs       int64 `json:"total_ms" yaml:"total_ms"`
	TotalMinutes  int64 `json:"total_minutes" yaml:"total_minutes"`
	TotalPlays    int   `json:"total_plays" yaml:"total_plays"`
	UniqueTracks  int   `json:"unique_tracks" yaml:"unique_tracks"`
	UniqueArtists int   `json:"unique_artists" yaml:"unique_artists"`
	UniqueAlbums  int   `json:"unique_albums" yaml:"unique_albums"`

	// Artists and albums rank by listening time, tracks by play count.
	TopArtists []Entity `json:"top_artists" yaml:"top_artists"`
	TopTracks  []Entity `json:"top_tracks" yaml:"top_tracks"`
	TopAlbums  []Entity `json:"top_albums" yaml:"top_albums"`
	TopGenres  []Share  `json:"top_genres" yaml:"top_genres"`

	Hourly      []Bucket     `json:"hourly" yaml:"hourly"`
	DayOfWeek   []Bucket     `json:"day_of_week" yaml:"day_of_week"`
	PeakHour    int          `json:"peak_hour" yaml:"peak_hour"`
	PeakDay     time.Weekday `json:"peak_day" yaml:"peak_day"`
	AvgMsPerDay int64        `json:"avg_ms_per_day" yaml:"avg_ms_per_day"`

	Mood     MoodProfile `json:"mood" yaml:"mood"`
	FunFacts []string    `json:"fun_facts" yaml:"fun_facts"`
}

type WrappedReport struct {
	Period  Period        `json:"period" yaml:"period"`
	HasData bool          `json:"has_data" yaml:"has_data"`
	Stats   *WrappedStats `json:"stats" yaml:"stats"`
}

// BuildWrappedReport summarizes the plays that fall inside period.
func BuildWrappedReport(plays []Play, genres GenreIndex, period Period) WrappedReport {
	report := WrappedReport{Period: period}
	plays = period.Filter(plays)
	if len(plays) == 0 {
		return report
	}

	byArtist := Aggregate(plays, ByArtist)
	byTrack := Aggregate(plays, ByTrack)
	byAlbum := Aggregate(plays, ByAlbum)
	byGenre := AggregateMulti(plays, genres.byGenre)

	total := totalDuration(plays)
	var genreTotal int64
	for _, g := range byGenre {
		genreTotal += g.TotalMs
	}

	hourly, weekly := HourlyAndWeekday(plays)
	stats := &WrappedStats{
		TotalMs:       total,
		TotalMinutes:  total / 60000,
		TotalPlays:    len(plays),
		UniqueTracks:  len(byTrack),
		UniqueArtists: len(byArtist),
		UniqueAlbums:  len(byAlbum),
		TopArtists:    TopN(byArtist, ByTime, wrappedTopArtists),
		TopTracks:     TopN(byTrack, ByCount, wrappedTopTracks),
		TopAlbums:     TopN(byAlbum, ByTime, wrappedTopAlbums),
		TopGenres:     Shares(TopN(byGenre, ByTime, wrappedTopGenres), genreTotal),
		Hourly:        hourly,
		DayOfWeek:     weekly,
		PeakHour:      PeakBucket(hourly),
		PeakDay:       time.Weekday(PeakBucket(weekly)),
		AvgMsPerDay:   total / int64(period.Days()),
	}

	topGenres := make([]string, 0, len(stats.TopGenres))
	for _, g := range stats.TopGenres {
		topGenres = append(topGenres, g.Name)
	}
	stats.Mood = ClassifyMood(topGenres)
	stats.FunFacts = funFacts(stats)

	report.HasData = true
	report.Stats = stats
	return report
}

func funFacts(s *WrappedStats) []string {
	var facts []string
	if len(s.TopTracks) > 0 {
		t := s.TopTracks[0]
		facts = append(facts, fmt.Sprintf("Your most played track was %s, with %d plays.", t.Label, t.PlayCount))
	}
	if len(s.TopArtists) > 0 {
		a := s.TopArtists[0]
		pct := Percentage(float64(a.TotalMs), float64(s.TotalMs))
		facts = append(facts, fmt.Sprintf("%s made up %.0f%% of your listening time.", a.Label, pct))
	}
	facts = append(facts,
		fmt.Sprintf("You listened the most around %s.", hourLabel(s.PeakHour)),
		fmt.Sprintf("%s was your biggest listening day of the week.", s.PeakDay),
		durationFact(s.TotalMs),
		fmt.Sprintf("On average you listened for %d minutes a day.", s.AvgMsPerDay/60000),
	)
	return facts
}

func hourLabel(h int) string {
	switch {
	case h == 0:
		return "midnight"
	case h == 12:
		return "noon"
	case h < 12:
		return fmt.Sprintf("%d AM", h)
	default:
		return fmt.Sprintf("%d PM", h-12)
	}
}

func durationFact(ms int64) string {
	minutes := ms / 60000
	hours := minutes / 60
	switch {
	case hours >= 48:
		return fmt.Sprintf("That's %d minutes of music, or %.1f days straight.", minutes, float64(hours)/24)
	case hours >= 1:
		return fmt.Sprintf("That's %d minutes of music, about %d hours.", minutes, hours)
	default:
		return fmt.Sprintf("That's %d minutes of music.", minutes)
	}
}
