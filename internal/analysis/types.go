package analysis

import "time"

// Play is a single listening event. The analysis functions never modify plays.
type Play struct {
	UserID   string `json:"user_id" yaml:"user_id"`
	TrackID  string `json:"track_id" yaml:"track_id"`
	ArtistID string `json:"artist_id" yaml:"artist_id"`
	AlbumID  string `json:"album_id" yaml:"album_id"`

	Track  string `json:"track" yaml:"track"`
	Artist string `json:"artist" yaml:"artist"`
	Album  string `json:"album" yaml:"album"`

	PlayedAt   time.Time `json:"played_at" yaml:"played_at"`
	DurationMs int64     `json:"duration_ms" yaml:"duration_ms"`
}

// Entity is the running aggregate for one key (track, artist, album, genre...).
type Entity struct {
	Key       string    `json:"key" yaml:"key"`
	Label     string    `json:"label" yaml:"label"`
	PlayCount int64     `json:"play_count" yaml:"play_count"`
	TotalMs   int64     `json:"total_ms" yaml:"total_ms"`
	FirstSeen time.Time `json:"first_seen" yaml:"first_seen"`
	LastSeen  time.Time `json:"last_seen" yaml:"last_seen"`
}

// Share is a named slice of total listening time.
type Share struct {
	Name       string  `json:"name" yaml:"name"`
	TotalMs    int64   `json:"total_ms" yaml:"total_ms"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// Count is a named slice of a count-based distribution.
type Count struct {
	Name       string  `json:"name" yaml:"name"`
	Count      int     `json:"count" yaml:"count"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// Bucket is one slot of an hourly or day-of-week distribution.
type Bucket struct {
	Index   int   `json:"index" yaml:"index"`
	Plays   int64 `json:"plays" yaml:"plays"`
	TotalMs int64 `json:"total_ms" yaml:"total_ms"`
}

// DailyTotal is the listening for one calendar day.
type DailyTotal struct {
	Date    time.Time `json:"date" yaml:"date"`
	Plays   int64     `json:"plays" yaml:"plays"`
	TotalMs int64     `json:"total_ms" yaml:"total_ms"`
}

const dateFormat = "2006-01-02"

// day truncates t to midnight in its own location.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole calendar days from a to b. Rounding absorbs DST shifts.
func daysBetween(a, b time.Time) int {
	hours := day(b).Sub(day(a)).Hours()
	if hours < 0 {
		return -int(-hours/24 + 0.5)
	}
	return int(hours/24 + 0.5)
}
