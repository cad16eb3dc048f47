package analysis

import (
	"math"
	"sort"
	"time"
)

const (
	// Below this many plays in the query window the detector reports
	// insufficient data instead of guessing.
	MinObsessionPlays = 50

	minActiveDays = 3

	TrackMinPlays     = 5
	TrackMinIntensity = 30

	ArtistMinPlays     = 10
	ArtistMinIntensity = 25

	maxCurrentTracks  = 3
	maxCurrentArtists = 2
	maxPastTracks     = 5
	maxPastArtists    = 3
)

// Window sizes in active days, not calendar days.
var spikeWindows = []int{7, 14, 21}

type EntityKind string

const (
	KindTrack  EntityKind = "track"
	KindArtist EntityKind = "artist"
)

type ObsessionStatus string

const (
	StatusActive  ObsessionStatus = "active"
	StatusCooling ObsessionStatus = "cooling"
	StatusPast    ObsessionStatus = "past"
)

// DayCount is the number of plays (and their duration) of one entity on one
// calendar day.
type DayCount struct {
	Date    time.Time
	Plays   int64
	TotalMs int64
}

type ObsessionPeriod struct {
	StartDate      time.Time `json:"start_date" yaml:"start_date"`
	EndDate        time.Time `json:"end_date" yaml:"end_date"`
	PeakDate       time.Time `json:"peak_date" yaml:"peak_date"`
	PlayCount      int64     `json:"play_count" yaml:"play_count"`
	TotalMs        int64     `json:"total_ms" yaml:"total_ms"`
	AvgPlaysPerDay float64   `json:"avg_plays_per_day" yaml:"avg_plays_per_day"`
}

// Spike is the best qualifying window found for one entity.
type Spike struct {
	Period          ObsessionPeriod
	WindowSize      int
	Score           float64
	AvgPlaysOverall float64
}

type Obsession struct {
	Key        string          `json:"key" yaml:"key"`
	Label      string          `json:"label" yaml:"label"`
	Kind       EntityKind      `json:"kind" yaml:"kind"`
	Period     ObsessionPeriod `json:"period" yaml:"period"`
	WindowSize int             `json:"window_size" yaml:"window_size"`
	Intensity  int             `json:"intensity" yaml:"intensity"`
	Status     ObsessionStatus `json:"status" yaml:"status"`
	TotalPlays int64           `json:"total_plays" yaml:"total_plays"`
	LastPlayed time.Time       `json:"last_played" yaml:"last_played"`
	Genres     []string        `json:"genres,omitempty" yaml:"genres,omitempty"`
}

type ObsessionReport struct {
	InsufficientData bool        `json:"insufficient_data" yaml:"insufficient_data"`
	TotalPlays       int         `json:"total_plays" yaml:"total_plays"`
	Tracks           []Obsession `json:"obsessed_tracks" yaml:"obsessed_tracks"`
	Artists          []Obsession `json:"obsessed_artists" yaml:"obsessed_artists"`
	Current          []Obsession `json:"current" yaml:"current"`
	Past             []Obsession `json:"past" yaml:"past"`
}

// DetectObsessions looks for tracks and artists whose plays bunch up into a
// burst well above their usual rate. genres may be nil.
func DetectObsessions(plays []Play, genres GenreIndex, now time.Time) ObsessionReport {
	report := ObsessionReport{
		TotalPlays: len(plays),
		Tracks:     []Obsession{},
		Artists:    []Obsession{},
		Current:    []Obsession{},
		Past:       []Obsession{},
	}
	if len(plays) < MinObsessionPlays {
		report.InsufficientData = true
		return report
	}

	report.Tracks = detectKind(plays, KindTrack, ByTrack, now, nil)
	report.Artists = detectKind(plays, KindArtist, ByArtist, now, genres)

	report.Current = append(
		pickStatus(report.Tracks, StatusActive, maxCurrentTracks),
		pickStatus(report.Artists, StatusActive, maxCurrentArtists)...)
	sortByIntensity(report.Current)

	report.Past = append(
		pickStatus(report.Tracks, StatusPast, maxPastTracks),
		pickStatus(report.Artists, StatusPast, maxPastArtists)...)
	sortByIntensity(report.Past)

	return report
}

type entitySeries struct {
	key, label string
	days       map[time.Time]*DayCount
	total      int64
	lastPlayed time.Time
	firstSeen  time.Time
}

func detectKind(plays []Play, kind EntityKind, keyFn KeyFunc, now time.Time, genres GenreIndex) []Obsession {
	minPlays, minIntensity := int64(TrackMinPlays), TrackMinIntensity
	if kind == KindArtist {
		minPlays, minIntensity = ArtistMinPlays, ArtistMinIntensity
	}

	out := []Obsession{}
	for _, s := range buildSeries(plays, keyFn) {
		spike, ok := FindSpike(s.sortedDays())
		if !ok || spike.Period.PlayCount < minPlays {
			continue
		}
		intensity := Intensity(spike)
		if intensity < minIntensity {
			continue
		}
		o := Obsession{
			Key:        s.key,
			Label:      s.label,
			Kind:       kind,
			Period:     spike.Period,
			WindowSize: spike.WindowSize,
			Intensity:  intensity,
			Status:     ClassifyStatus(s.lastPlayed, now),
			TotalPlays: s.total,
			LastPlayed: s.lastPlayed,
		}
		if kind == KindArtist {
			o.Genres = genres.Genres(s.key)
		}
		out = append(out, o)
	}
	sortByIntensity(out)
	return out
}

// buildSeries returns per-entity daily counts in first-seen order, so the
// later stable sort by intensity is deterministic.
func buildSeries(plays []Play, keyFn KeyFunc) []*entitySeries {
	byKey := make(map[string]*entitySeries)
	var order []*entitySeries
	for _, p := range plays {
		key, label := keyFn(p)
		if key == "" {
			continue
		}
		s, ok := byKey[key]
		if !ok {
			s = &entitySeries{key: key, label: label, days: make(map[time.Time]*DayCount), firstSeen: p.PlayedAt}
			byKey[key] = s
			order = append(order, s)
		}
		d := day(p.PlayedAt)
		dc, ok := s.days[d]
		if !ok {
			dc = &DayCount{Date: d}
			s.days[d] = dc
		}
		dc.Plays++
		dc.TotalMs += p.DurationMs
		s.total++
		if p.PlayedAt.After(s.lastPlayed) {
			s.lastPlayed = p.PlayedAt
		}
		if p.PlayedAt.Before(s.firstSeen) {
			s.firstSeen = p.PlayedAt
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		if !order[i].firstSeen.Equal(order[j].firstSeen) {
			return order[i].firstSeen.Before(order[j].firstSeen)
		}
		return order[i].key < order[j].key
	})
	return order
}

func (s *entitySeries) sortedDays() []DayCount {
	out := make([]DayCount, 0, len(s.days))
	for _, d := range s.days {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// FindSpike slides windows of 7, 14 and 21 positions across the entity's
// active days (sorted by date). A "14 day" window is 14 active days, however
// much wall-clock time it spans. A window qualifies when its average is at
// least twice the entity's overall average and at least 2 plays per day;
// qualifying windows are scored avg*sqrt(size) and the best one is returned.
func FindSpike(days []DayCount) (Spike, bool) {
	if len(days) < minActiveDays {
		return Spike{}, false
	}
	var total int64
	for _, d := range days {
		total += d.Plays
	}
	avgOverall := float64(total) / float64(len(days))

	var best Spike
	found := false
	for _, size := range spikeWindows {
		start, avg, ok := BestWindow(days, size)
		if !ok {
			continue
		}
		if avg < 2*avgOverall || avg < 2 {
			continue
		}
		score := avg * math.Sqrt(float64(size))
		if found && score <= best.Score {
			continue
		}
		best = Spike{
			Period:          windowPeriod(days[start:start+size], avg),
			WindowSize:      size,
			Score:           score,
			AvgPlaysOverall: avgOverall,
		}
		found = true
	}
	return best, found
}

// BestWindow returns the start index and average of the size-long window with
// the highest average plays. The earliest window wins ties.
func BestWindow(days []DayCount, size int) (int, float64, bool) {
	if size <= 0 || len(days) < size {
		return 0, 0, false
	}
	var sum int64
	for _, d := range days[:size] {
		sum += d.Plays
	}
	bestStart, bestSum := 0, sum
	for i := 1; i+size <= len(days); i++ {
		sum += days[i+size-1].Plays - days[i-1].Plays
		if sum > bestSum {
			bestStart, bestSum = i, sum
		}
	}
	return bestStart, float64(bestSum) / float64(size), true
}

func windowPeriod(window []DayCount, avg float64) ObsessionPeriod {
	p := ObsessionPeriod{
		StartDate:      window[0].Date,
		EndDate:        window[len(window)-1].Date,
		PeakDate:       window[0].Date,
		AvgPlaysPerDay: avg,
	}
	var peak int64 = -1
	for _, d := range window {
		p.PlayCount += d.Plays
		p.TotalMs += d.TotalMs
		if d.Plays > peak {
			peak = d.Plays
			p.PeakDate = d.Date
		}
	}
	return p
}

// Intensity rates a spike from 0 to 100 by how far above the usual rate it
// runs, weighted by how many calendar days it lasted.
func Intensity(s Spike) int {
	spanDays := daysBetween(s.Period.StartDate, s.Period.EndDate) + 1
	durationFactor := math.Min(float64(spanDays)/14, 1.5)
	ratio := s.Period.AvgPlaysPerDay / math.Max(s.AvgPlaysOverall, 0.5)
	return int(math.Min(math.Round(ratio*20*durationFactor), 100))
}

// ClassifyStatus: played today or yesterday is active, any play in the last
// week is cooling, everything else is past.
func ClassifyStatus(lastPlayed, now time.Time) ObsessionStatus {
	ago := daysBetween(lastPlayed.In(now.Location()), now)
	switch {
	case ago <= 1:
		return StatusActive
	case ago < 7:
		return StatusCooling
	default:
		return StatusPast
	}
}

func pickStatus(list []Obsession, status ObsessionStatus, limit int) []Obsession {
	out := []Obsession{}
	for _, o := range list {
		if o.Status != status {
			continue
		}
		out = append(out, o)
		if len(out) == limit {
			break
		}
	}
	return out
}

func sortByIntensity(list []Obsession) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Intensity > list[j].Intensity })
}
