package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/ademuri/listening-stats/internal/analysis"
)

// ErrNotFound is returned when a named record does not exist.
var ErrNotFound = errors.New("not found")

type PlaylistImport struct {
	Name   string
	Tracks []PlaylistTrackImport
}

type PlaylistTrackImport struct {
	Artist      string
	Track       string
	Album       string
	ReleaseYear int
	DurationMs  int64
}

// SavePlaylist stores a playlist for the user, replacing the track listing of
// any playlist with the same name. Tracks are matched to existing Track rows
// by artist, album and name, so listens already imported are joined.
func (s *Store) SavePlaylist(user string, pl PlaylistImport) error {
	if pl.Name == "" {
		return fmt.Errorf("saving playlist: empty name")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT OR IGNORE INTO User (name) VALUES (?)", user); err != nil {
		return fmt.Errorf("inserting user %q: %w", user, err)
	}
	if _, err := tx.Exec("INSERT OR IGNORE INTO Playlist (user, name) VALUES (?, ?)", user, pl.Name); err != nil {
		return fmt.Errorf("inserting playlist %q: %w", pl.Name, err)
	}
	var playlistID int64
	if err := tx.QueryRow("SELECT id FROM Playlist WHERE user = ? AND name = ?", user, pl.Name).Scan(&playlistID); err != nil {
		return fmt.Errorf("looking up playlist %q: %w", pl.Name, err)
	}
	if _, err := tx.Exec("DELETE FROM PlaylistTrack WHERE playlist = ?", playlistID); err != nil {
		return fmt.Errorf("clearing playlist %q: %w", pl.Name, err)
	}

	for i, t := range pl.Tracks {
		if err := createArtist(tx, t.Artist); err != nil {
			return err
		}
		if err := createAlbum(tx, t.Artist, t.Album); err != nil {
			return err
		}
		trackID, err := createTrack(tx, t.Artist, t.Album, t.Track)
		if err != nil {
			return err
		}
		if err := setTrackDurationIfUnknown(tx, trackID, t.DurationMs); err != nil {
			return err
		}
		_, err = tx.Exec("INSERT INTO PlaylistTrack (playlist, position, track, release_year) VALUES (?, ?, ?, ?)",
			playlistID, i, trackID, nullIfZero(int64(t.ReleaseYear)))
		if err != nil {
			return fmt.Errorf("inserting track %q into playlist %q: %w", t.Track, pl.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetPlaylist returns the user's playlist in position order, or ErrNotFound.
func (s *Store) GetPlaylist(user, name string) (analysis.Playlist, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM Playlist WHERE user = ? AND name = ?", user, name).Scan(&id)
	if err == sql.ErrNoRows {
		return analysis.Playlist{}, fmt.Errorf("playlist %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return analysis.Playlist{}, fmt.Errorf("looking up playlist %q: %w", name, err)
	}

	query := `
		SELECT t.id, t.name, t.artist, t.album, pt.release_year, t.duration_ms
		FROM PlaylistTrack pt
		JOIN Track t ON pt.track = t.id
		WHERE pt.playlist = ?
		ORDER BY pt.position
	`
	rows, err := s.db.Query(query, id)
	if err != nil {
		return analysis.Playlist{}, fmt.Errorf("querying playlist %q: %w", name, err)
	}
	defer rows.Close()

	pl := analysis.Playlist{ID: strconv.FormatInt(id, 10), Name: name, Tracks: []analysis.PlaylistTrack{}}
	for rows.Next() {
		var (
			t        analysis.PlaylistTrack
			trackID  int64
			year     sql.NullInt64
			duration sql.NullInt64
		)
		if err := rows.Scan(&trackID, &t.Name, &t.Artist, &t.Album, &year, &duration); err != nil {
			return analysis.Playlist{}, fmt.Errorf("scanning playlist track: %w", err)
		}
		t.TrackID = strconv.FormatInt(trackID, 10)
		t.ArtistID = t.Artist
		t.ReleaseYear = int(year.Int64)
		t.DurationMs = duration.Int64
		pl.Tracks = append(pl.Tracks, t)
	}
	return pl, rows.Err()
}

func (s *Store) ListPlaylists(user string) ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM Playlist WHERE user = ? ORDER BY name", user)
	if err != nil {
		return nil, fmt.Errorf("querying playlists: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
