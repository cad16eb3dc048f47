package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

func (s *Store) GetLastUpdated(user string) (time.Time, error) {
	row := s.db.QueryRow("SELECT last_updated FROM User WHERE name = ?", user)
	var t sql.NullTime
	err := row.Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("getting last updated: %w", err)
	}
	return t.Time, nil
}

func (s *Store) GetLatestListen(user string) (time.Time, error) {
	query := "SELECT date FROM Listen WHERE user = ? ORDER BY CAST(date AS INTEGER) desc LIMIT 1"
	row := s.db.QueryRow(query, user)
	var dateStr string
	err := row.Scan(&dateStr)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("scanning latest listen: %w", err)
	}

	return parseDate(dateStr)
}

// parseDate accepts a Unix timestamp or an RFC 3339 date. Both come back in
// time.Local so that plays group into the same calendar days.
func parseDate(dateStr string) (time.Time, error) {
	dateInt, err := strconv.ParseInt(dateStr, 10, 64)
	if err == nil {
		return time.Unix(dateInt, 0), nil
	}

	t, err := time.Parse(time.RFC3339, dateStr)
	if err == nil {
		return t.Local(), nil
	}

	return time.Time{}, fmt.Errorf("parsing date %q: %w", dateStr, err)
}

func (s *Store) GetUsers() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM User ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetArtistsNeedingGenreUpdate returns artists with more than minListens
// listens whose genres are missing or older than interval.
func (s *Store) GetArtistsNeedingGenreUpdate(interval time.Duration, minListens int) ([]string, error) {
	threshold := time.Now().Add(-interval)
	query := `
		SELECT t.artist
		FROM Listen l
		JOIN Track t ON l.track = t.id
		JOIN Artist a ON t.artist = a.name
		WHERE (a.genres_last_updated IS NULL OR a.genres_last_updated < ?)
		GROUP BY t.artist
		HAVING COUNT(*) > ?
	`
	rows, err := s.db.Query(query, threshold, minListens)
	if err != nil {
		return nil, fmt.Errorf("querying artists for genre update: %w", err)
	}
	defer rows.Close()

	var artists []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

type TrackRef struct {
	ID     int64
	Artist string
	Name   string
}

// GetTracksNeedingDuration returns listened tracks that have never been
// looked up for a length, most listened first.
func (s *Store) GetTracksNeedingDuration(limit int) ([]TrackRef, error) {
	query := `
		SELECT t.id, t.artist, t.name
		FROM Track t
		JOIN Listen l ON l.track = t.id
		WHERE t.duration_ms IS NULL
		GROUP BY t.id
		ORDER BY COUNT(*) DESC, t.id
		LIMIT ?
	`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying tracks for duration update: %w", err)
	}
	defer rows.Close()

	var tracks []TrackRef
	for rows.Next() {
		var t TrackRef
		if err := rows.Scan(&t.ID, &t.Artist, &t.Name); err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// GetFirstListen returns the user's earliest listen, or the zero time.
func (s *Store) GetFirstListen(user string) (time.Time, error) {
	query := "SELECT date FROM Listen WHERE user = ? ORDER BY CAST(date AS INTEGER) asc LIMIT 1"
	var dateStr string
	err := s.db.QueryRow(query, user).Scan(&dateStr)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("scanning first listen: %w", err)
	}
	return parseDate(dateStr)
}
