package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/ademuri/listening-stats/internal/analysis"
)

const playsQuery = `
	SELECT l.user, t.id, t.artist, t.album, t.name, l.date, l.duration_ms, t.duration_ms
	FROM Listen l
	JOIN Track t ON l.track = t.id
	WHERE CAST(l.date AS INTEGER) >= ?
	AND CAST(l.date AS INTEGER) < ?
`

// GetPlays returns the user's plays in [start, end), oldest first, with the
// track, artist and album joined in. A listen with no recorded duration falls
// back to the track's length and then to the store's default duration.
func (s *Store) GetPlays(user string, start, end time.Time) ([]analysis.Play, error) {
	query := playsQuery + " AND l.user = ? ORDER BY CAST(l.date AS INTEGER) ASC, l.id ASC"
	rows, err := s.db.Query(query, start.Unix(), end.Unix(), user)
	if err != nil {
		return nil, fmt.Errorf("querying plays for %q: %w", user, err)
	}
	return s.scanPlays(rows)
}

// GetAllPlays returns every user's plays in [start, end).
func (s *Store) GetAllPlays(start, end time.Time) ([]analysis.Play, error) {
	query := playsQuery + " ORDER BY CAST(l.date AS INTEGER) ASC, l.id ASC"
	rows, err := s.db.Query(query, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("querying plays: %w", err)
	}
	return s.scanPlays(rows)
}

// RequirePlays is GetPlays for callers that have nothing to show without
// data. It returns ErrNoData when the range is empty.
func (s *Store) RequirePlays(user string, start, end time.Time) ([]analysis.Play, error) {
	plays, err := s.GetPlays(user, start, end)
	if err != nil {
		return nil, err
	}
	if len(plays) == 0 {
		return nil, fmt.Errorf("%s between %s and %s: %w", user, start.Format("2006-01-02"), end.Format("2006-01-02"), ErrNoData)
	}
	return plays, nil
}

func (s *Store) scanPlays(rows *sql.Rows) ([]analysis.Play, error) {
	defer rows.Close()

	plays := []analysis.Play{}
	for rows.Next() {
		var (
			p             analysis.Play
			trackID       int64
			dateStr       string
			listenMs      sql.NullInt64
			trackMs       sql.NullInt64
			artist, album sql.NullString
		)
		if err := rows.Scan(&p.UserID, &trackID, &artist, &album, &p.Track, &dateStr, &listenMs, &trackMs); err != nil {
			return nil, fmt.Errorf("scanning play: %w", err)
		}
		playedAt, err := parseDate(dateStr)
		if err != nil {
			// Rows with unparseable dates cannot be placed in time.
			continue
		}
		p.PlayedAt = playedAt
		p.TrackID = strconv.FormatInt(trackID, 10)
		p.Artist = artist.String
		p.ArtistID = artist.String
		p.Album = album.String
		if p.Album != "" {
			p.AlbumID = p.Artist + " - " + p.Album
		}
		p.DurationMs = s.duration(listenMs, trackMs)
		plays = append(plays, p)
	}
	return plays, rows.Err()
}

func (s *Store) duration(listenMs, trackMs sql.NullInt64) int64 {
	if listenMs.Valid && listenMs.Int64 > 0 {
		return listenMs.Int64
	}
	if trackMs.Valid && trackMs.Int64 > 0 {
		return trackMs.Int64
	}
	return s.defaultDurationMs
}

// GenreIndex loads every artist's stored genres. Entries that are not a JSON
// list of strings are left out.
func (s *Store) GenreIndex() (analysis.GenreIndex, error) {
	rows, err := s.db.Query("SELECT name, genres FROM Artist WHERE genres IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("querying artist genres: %w", err)
	}
	defer rows.Close()

	raw := make(map[string]string)
	for rows.Next() {
		var name, genres string
		if err := rows.Scan(&name, &genres); err != nil {
			return nil, fmt.Errorf("scanning artist genres: %w", err)
		}
		raw[name] = genres
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return analysis.NewGenreIndex(raw), nil
}
