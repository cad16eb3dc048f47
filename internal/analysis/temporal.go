package analysis

import (
	"sort"
	"time"
)

type Streak struct {
	Current int `json:"current" yaml:"current"`
	Longest int `json:"longest" yaml:"longest"`
}

type HeatmapCell struct {
	Date  time.Time `json:"date" yaml:"date"`
	Plays int64     `json:"plays" yaml:"plays"`
	Level int       `json:"level" yaml:"level"`
}

type TemporalPatterns struct {
	Hourly    []Bucket      `json:"hourly" yaml:"hourly"`
	DayOfWeek []Bucket      `json:"day_of_week" yaml:"day_of_week"`
	Daily     []DailyTotal  `json:"daily" yaml:"daily"`
	PeakHour  int           `json:"peak_hour" yaml:"peak_hour"`
	PeakDay   time.Weekday  `json:"peak_day" yaml:"peak_day"`
	Streak    Streak        `json:"streak" yaml:"streak"`
	Heatmap   []HeatmapCell `json:"heatmap" yaml:"heatmap"`
}

// ComputeTemporalPatterns buckets plays by hour, weekday and calendar day and
// derives streaks and a heatmap of the weeks leading up to now.
func ComputeTemporalPatterns(plays []Play, now time.Time, weeks int) TemporalPatterns {
	hourly, weekly := HourlyAndWeekday(plays)
	daily := DailyTotals(plays)

	dates := make([]time.Time, 0, len(daily))
	for _, d := range daily {
		dates = append(dates, d.Date)
	}

	return TemporalPatterns{
		Hourly:    hourly,
		DayOfWeek: weekly,
		Daily:     daily,
		PeakHour:  PeakBucket(hourly),
		PeakDay:   time.Weekday(PeakBucket(weekly)),
		Streak: Streak{
			Current: CurrentStreak(dates),
			Longest: LongestStreak(dates),
		},
		Heatmap: Heatmap(daily, now, weeks),
	}
}

// HourlyAndWeekday returns 24 hour-of-day buckets and 7 day-of-week buckets
// (0 = Sunday).
func HourlyAndWeekday(plays []Play) ([]Bucket, []Bucket) {
	hourly := make([]Bucket, 24)
	weekly := make([]Bucket, 7)
	for i := range hourly {
		hourly[i].Index = i
	}
	for i := range weekly {
		weekly[i].Index = i
	}
	for _, p := range plays {
		h := p.PlayedAt.Hour()
		hourly[h].Plays++
		hourly[h].TotalMs += p.DurationMs

		w := int(p.PlayedAt.Weekday())
		weekly[w].Plays++
		weekly[w].TotalMs += p.DurationMs
	}
	return hourly, weekly
}

// PeakBucket returns the index with the most listening time. The lowest index
// wins ties.
func PeakBucket(buckets []Bucket) int {
	if len(buckets) == 0 {
		return 0
	}
	best := 0
	for i, b := range buckets {
		if b.TotalMs > buckets[best].TotalMs {
			best = i
		}
	}
	return buckets[best].Index
}

// DailyTotals sums plays per calendar day, ordered by date.
func DailyTotals(plays []Play) []DailyTotal {
	byDay := make(map[time.Time]*DailyTotal)
	for _, p := range plays {
		d := day(p.PlayedAt)
		t, ok := byDay[d]
		if !ok {
			t = &DailyTotal{Date: d}
			byDay[d] = t
		}
		t.Plays++
		t.TotalMs += p.DurationMs
	}
	out := make([]DailyTotal, 0, len(byDay))
	for _, t := range byDay {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// distinctDays truncates to calendar days and removes duplicates, sorted
// ascending or descending.
func distinctDays(dates []time.Time, descending bool) []time.Time {
	seen := make(map[time.Time]bool, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		d = day(d)
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if descending {
			return out[i].After(out[j])
		}
		return out[i].Before(out[j])
	})
	return out
}

// ConsecutiveRun walks dates from the head and counts entries while each is
// exactly one calendar day from the previous. The input must already be sorted
// (either direction); duplicate days are collapsed first so they never extend
// a run.
func ConsecutiveRun(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	compact := []time.Time{day(dates[0])}
	for _, d := range dates[1:] {
		d = day(d)
		if !d.Equal(compact[len(compact)-1]) {
			compact = append(compact, d)
		}
	}

	run := 1
	for i := 1; i < len(compact); i++ {
		gap := daysBetween(compact[i-1], compact[i])
		if gap != 1 && gap != -1 {
			break
		}
		run++
	}
	return run
}

// CurrentStreak is the run of consecutive active days counted back from the
// most recent active day.
func CurrentStreak(dates []time.Time) int {
	return ConsecutiveRun(distinctDays(dates, true))
}

func LongestStreak(dates []time.Time) int {
	days := distinctDays(dates, false)
	longest := 0
	for i := 0; i < len(days); {
		run := ConsecutiveRun(days[i:])
		if run > longest {
			longest = run
		}
		i += run
	}
	return longest
}

// Heatmap covers weeks*7 calendar days ending on now's day. Each day gets a
// level from 0 (no plays) to 4 relative to the busiest day in the window.
func Heatmap(daily []DailyTotal, now time.Time, weeks int) []HeatmapCell {
	if weeks <= 0 {
		return []HeatmapCell{}
	}
	counts := make(map[string]int64, len(daily))
	for _, d := range daily {
		counts[d.Date.Format(dateFormat)] += d.Plays
	}

	today := day(now)
	n := weeks * 7
	cells := make([]HeatmapCell, n)
	var max int64
	for i := 0; i < n; i++ {
		d := today.AddDate(0, 0, i-n+1)
		cells[i] = HeatmapCell{Date: d, Plays: counts[d.Format(dateFormat)]}
		if cells[i].Plays > max {
			max = cells[i].Plays
		}
	}
	for i := range cells {
		cells[i].Level = HeatmapLevel(cells[i].Plays, max)
	}
	return cells
}

func HeatmapLevel(count, max int64) int {
	if count <= 0 || max <= 0 {
		return 0
	}
	ratio := float64(count) / float64(max)
	switch {
	case ratio > 0.75:
		return 4
	case ratio > 0.5:
		return 3
	case ratio > 0.25:
		return 2
	default:
		return 1
	}
}
