package analysis

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.ParseInLocation(dateFormat, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func dates(s ...string) []time.Time {
	out := make([]time.Time, 0, len(s))
	for _, d := range s {
		out = append(out, date(d))
	}
	return out
}

func TestConsecutiveRun(t *testing.T) {
	cases := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{"empty", nil, 0},
		{"single", dates("2024-01-01"), 1},
		{"gap after three", dates("2024-01-01", "2024-01-02", "2024-01-03", "2024-01-05"), 3},
		{"descending", dates("2024-01-05", "2024-01-04", "2024-01-01"), 2},
		{"duplicates collapse", dates("2024-01-01", "2024-01-01", "2024-01-02"), 2},
		{"month boundary", dates("2024-01-31", "2024-02-01", "2024-02-02"), 3},
	}
	for _, c := range cases {
		if got := ConsecutiveRun(c.dates); got != c.want {
			t.Errorf("%s: ConsecutiveRun() = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestStreaks(t *testing.T) {
	d := dates("2024-01-01", "2024-01-02", "2024-01-03", "2024-01-05", "2024-01-06")
	if got := CurrentStreak(d); got != 2 {
		t.Errorf("CurrentStreak() = %d, want 2", got)
	}
	if got := LongestStreak(d); got != 3 {
		t.Errorf("LongestStreak() = %d, want 3", got)
	}

	// Several plays on the same day and unsorted input.
	d = []time.Time{
		date("2024-03-02").Add(23 * time.Hour),
		date("2024-03-01").Add(time.Hour),
		date("2024-03-02").Add(time.Hour),
	}
	if got := CurrentStreak(d); got != 2 {
		t.Errorf("CurrentStreak() with repeats = %d, want 2", got)
	}
	if got := LongestStreak(nil); got != 0 {
		t.Errorf("LongestStreak(nil) = %d, want 0", got)
	}
}

func TestPeakBucketTieGoesToLowestIndex(t *testing.T) {
	buckets := []Bucket{{Index: 0, TotalMs: 5}, {Index: 1, TotalMs: 9}, {Index: 2, TotalMs: 9}}
	if got := PeakBucket(buckets); got != 1 {
		t.Errorf("PeakBucket() = %d, want 1", got)
	}
	if got := PeakBucket(nil); got != 0 {
		t.Errorf("PeakBucket(nil) = %d, want 0", got)
	}
}

func TestHourlyAndWeekdaySumToTotal(t *testing.T) {
	plays := []Play{
		play("T1", "A", "X", date("2024-01-01").Add(8*time.Hour), 1000),
		play("T1", "A", "X", date("2024-01-01").Add(8*time.Hour+30*time.Minute), 2000),
		play("T2", "A", "X", date("2024-01-06").Add(23*time.Hour), 4000),
	}
	hourly, weekly := HourlyAndWeekday(plays)
	if len(hourly) != 24 || len(weekly) != 7 {
		t.Fatalf("got %d hourly and %d weekly buckets", len(hourly), len(weekly))
	}
	var hourSum, daySum int64
	for _, b := range hourly {
		hourSum += b.TotalMs
	}
	for _, b := range weekly {
		daySum += b.TotalMs
	}
	if hourSum != 7000 || daySum != 7000 {
		t.Errorf("hourly sum %d, weekly sum %d, want 7000", hourSum, daySum)
	}
	if hourly[8].Plays != 2 {
		t.Errorf("hour 8 plays = %d, want 2", hourly[8].Plays)
	}
	// 2024-01-01 is a Monday, 2024-01-06 a Saturday.
	if weekly[time.Monday].TotalMs != 3000 || weekly[time.Saturday].TotalMs != 4000 {
		t.Errorf("weekly buckets = %+v", weekly)
	}
	if PeakBucket(weekly) != int(time.Saturday) {
		t.Errorf("peak day = %d, want Saturday", PeakBucket(weekly))
	}
}

func TestHeatmapLevel(t *testing.T) {
	cases := []struct {
		count, max int64
		want       int
	}{
		{0, 10, 0},
		{1, 0, 0},
		{10, 10, 4},
		{8, 10, 4},
		{75, 100, 3},
		{51, 100, 3},
		{50, 100, 2},
		{26, 100, 2},
		{25, 100, 1},
		{1, 100, 1},
	}
	for _, c := range cases {
		if got := HeatmapLevel(c.count, c.max); got != c.want {
			t.Errorf("HeatmapLevel(%d, %d) = %d, want %d", c.count, c.max, got, c.want)
		}
	}
}

func TestComputeTemporalPatternsHeatmap(t *testing.T) {
	var plays []Play
	for d, n := range map[string]int{"2024-01-07": 8, "2024-01-06": 6, "2024-01-05": 4, "2024-01-04": 2, "2023-12-01": 50} {
		for i := 0; i < n; i++ {
			plays = append(plays, play("T", "A", "X", date(d).Add(time.Duration(i)*time.Minute), 1000))
		}
	}
	now := date("2024-01-07").Add(15 * time.Hour)
	p := ComputeTemporalPatterns(plays, now, 1)

	if len(p.Heatmap) != 7 {
		t.Fatalf("got %d heatmap cells, want 7", len(p.Heatmap))
	}
	if !p.Heatmap[0].Date.Equal(date("2024-01-01")) || !p.Heatmap[6].Date.Equal(date("2024-01-07")) {
		t.Errorf("heatmap covers %v to %v", p.Heatmap[0].Date, p.Heatmap[6].Date)
	}
	wantLevels := []int{0, 0, 0, 1, 2, 3, 4}
	for i, w := range wantLevels {
		if p.Heatmap[i].Level != w {
			t.Errorf("cell %s: level %d, want %d", p.Heatmap[i].Date.Format(dateFormat), p.Heatmap[i].Level, w)
		}
	}
	if p.Streak.Current != 4 || p.Streak.Longest != 4 {
		t.Errorf("streak = %+v, want current 4 longest 4", p.Streak)
	}
	if len(p.Daily) != 5 {
		t.Errorf("got %d daily totals, want 5", len(p.Daily))
	}
	if p.PeakHour != 0 {
		t.Errorf("PeakHour = %d, want 0", p.PeakHour)
	}
}
