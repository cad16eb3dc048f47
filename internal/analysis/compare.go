package analysis

import (
	"math"
	"sort"
	"time"
)

// ComparisonWindow is how far back comparisons look.
const ComparisonWindow = 30 * 24 * time.Hour

type UserTotal struct {
	UserID  string `json:"user_id" yaml:"user_id"`
	TotalMs int64  `json:"total_ms" yaml:"total_ms"`
}

type ComparisonReport struct {
	UserID         string    `json:"user_id" yaml:"user_id"`
	WindowStart    time.Time `json:"window_start" yaml:"window_start"`
	WindowEnd      time.Time `json:"window_end" yaml:"window_end"`
	TotalMs        int64     `json:"total_ms" yaml:"total_ms"`
	Rank           int       `json:"rank" yaml:"rank"`
	TotalUsers     int       `json:"total_users" yaml:"total_users"`
	Percentile     int       `json:"percentile" yaml:"percentile"`
	RecentArtists  int       `json:"recent_artists" yaml:"recent_artists"`
	NewArtists     int       `json:"new_artists" yaml:"new_artists"`
	DiscoveryScore int       `json:"discovery_score" yaml:"discovery_score"`
}

// BuildComparisonReport ranks the user's listening time over the last 30 days
// against every user in allUsersPlays. userPlays should be the user's full
// history so that "new" artists can be told apart from returning ones.
func BuildComparisonReport(userID string, userPlays, allUsersPlays []Play, now time.Time) ComparisonReport {
	window := Period{Start: now.Add(-ComparisonWindow), End: now}
	report := ComparisonReport{UserID: userID, WindowStart: window.Start, WindowEnd: window.End}

	totals := make(map[string]int64)
	for _, e := range Aggregate(window.Filter(allUsersPlays), ByUser) {
		totals[e.Key] = e.TotalMs
	}
	report.TotalMs = totals[userID]
	report.Rank, report.Percentile, report.TotalUsers = RankPercentile(totals, userID)

	report.RecentArtists, report.NewArtists = discovery(userPlays, window)
	report.DiscoveryScore = DiscoveryScore(report.NewArtists, report.RecentArtists)
	return report
}

// RankPercentile sorts totals descending and returns the user's 1-based rank,
// percentile round((n-rank)/n*100) and n. A user missing from totals is
// ranked with a total of 0. Equal totals are ordered by user id.
func RankPercentile(totals map[string]int64, userID string) (rank, percentile, n int) {
	users := make([]UserTotal, 0, len(totals)+1)
	for u, t := range totals {
		users = append(users, UserTotal{UserID: u, TotalMs: t})
	}
	if _, ok := totals[userID]; !ok {
		users = append(users, UserTotal{UserID: userID})
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].TotalMs != users[j].TotalMs {
			return users[i].TotalMs > users[j].TotalMs
		}
		return users[i].UserID < users[j].UserID
	})

	n = len(users)
	for i, u := range users {
		if u.UserID == userID {
			rank = i + 1
			break
		}
	}
	percentile = int(math.Round(float64(n-rank) / float64(n) * 100))
	return rank, percentile, n
}

func DiscoveryScore(newArtists, recentArtists int) int {
	return int(math.Min(100, math.Round(float64(newArtists)/math.Max(float64(recentArtists), 1)*100)))
}

// discovery counts artists played inside the window, and of those the ones
// with no play before the window started.
func discovery(plays []Play, window Period) (recent, fresh int) {
	first := make(map[string]time.Time)
	inWindow := make(map[string]bool)
	for _, p := range plays {
		if p.ArtistID == "" {
			continue
		}
		if f, ok := first[p.ArtistID]; !ok || p.PlayedAt.Before(f) {
			first[p.ArtistID] = p.PlayedAt
		}
		if window.Contains(p.PlayedAt) {
			inWindow[p.ArtistID] = true
		}
	}
	for artist := range inWindow {
		recent++
		if !first[artist].Before(window.Start) {
			fresh++
		}
	}
	return recent, fresh
}
