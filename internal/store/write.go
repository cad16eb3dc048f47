package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type TrackImport struct {
	Artist    string
	Album     string
	TrackName string
	DateUTS   string
	// DurationMs is how long this listen actually played, 0 if unknown.
	DurationMs int64
}

// CreateUser ensures a user exists in the database.
func (s *Store) CreateUser(user string) error {
	row := s.db.QueryRow("SELECT name FROM User WHERE name = ?", user)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		_, err := s.db.Exec("INSERT INTO User (name) VALUES (?)", user)
		if err != nil {
			return fmt.Errorf("inserting user %q: %w", user, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking user %q: %w", user, err)
	}
	return nil
}

func (s *Store) SetLastUpdated(user string, updated time.Time) error {
	_, err := s.db.Exec("UPDATE User SET last_updated = ? WHERE name = ?", updated, user)
	if err != nil {
		return fmt.Errorf("updating last_updated for %q: %w", user, err)
	}
	return nil
}

// AddRecentTracks inserts a batch of listens transactionally. A listen that is
// already stored is skipped, but gains a duration if it had none.
func (s *Store) AddRecentTracks(user string, tracks []TrackImport) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, track := range tracks {
		if err := createArtist(tx, track.Artist); err != nil {
			return err
		}
		if err := createAlbum(tx, track.Artist, track.Album); err != nil {
			return err
		}
		trackID, err := createTrack(tx, track.Artist, track.Album, track.TrackName)
		if err != nil {
			return err
		}
		if err := createListen(tx, user, trackID, track.DateUTS, track.DurationMs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func createArtist(tx *sql.Tx, name string) error {
	if _, err := tx.Exec("INSERT OR IGNORE INTO Artist (name) VALUES (?)", name); err != nil {
		return fmt.Errorf("inserting artist %q: %w", name, err)
	}
	return nil
}

func createAlbum(tx *sql.Tx, artist, name string) error {
	if _, err := tx.Exec("INSERT OR IGNORE INTO Album (artist, name) VALUES (?, ?)", artist, name); err != nil {
		return fmt.Errorf("inserting album %q for %q: %w", name, artist, err)
	}
	return nil
}

func createTrack(tx *sql.Tx, artist, album, name string) (int64, error) {
	var id int64
	err := tx.QueryRow("SELECT id FROM Track WHERE artist = ? AND album = ? AND name = ?", artist, album, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("checking track %q: %w", name, err)
	}

	res, err := tx.Exec("INSERT INTO Track (artist, album, name) VALUES (?, ?, ?)", artist, album, name)
	if err != nil {
		return 0, fmt.Errorf("inserting track %q: %w", name, err)
	}
	return res.LastInsertId()
}

func createListen(tx *sql.Tx, user string, trackID int64, date string, durationMs int64) error {
	var id int64
	var existing sql.NullInt64
	err := tx.QueryRow("SELECT id, duration_ms FROM Listen WHERE user = ? AND date = ? AND track = ?", user, date, trackID).Scan(&id, &existing)
	if err == nil {
		if durationMs > 0 && (!existing.Valid || existing.Int64 <= 0) {
			if _, err := tx.Exec("UPDATE Listen SET duration_ms = ? WHERE id = ?", durationMs, id); err != nil {
				return fmt.Errorf("updating listen duration: %w", err)
			}
		}
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking listen: %w", err)
	}

	_, err = tx.Exec("INSERT INTO Listen (user, track, date, duration_ms) VALUES (?, ?, ?, ?)", user, trackID, date, nullIfZero(durationMs))
	if err != nil {
		return fmt.Errorf("inserting listen: %w", err)
	}
	return nil
}

func nullIfZero(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v > 0}
}

// SaveArtistGenres stores the artist's genre tags as a JSON array and marks
// them fresh.
func (s *Store) SaveArtistGenres(artist string, genres []string) error {
	if genres == nil {
		genres = []string{}
	}
	encoded, err := json.Marshal(genres)
	if err != nil {
		return fmt.Errorf("encoding genres for %q: %w", artist, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := createArtist(tx, artist); err != nil {
		return err
	}
	_, err = tx.Exec("UPDATE Artist SET genres = ?, genres_last_updated = ? WHERE name = ?", string(encoded), time.Now(), artist)
	if err != nil {
		return fmt.Errorf("updating genres for %q: %w", artist, err)
	}
	return tx.Commit()
}

// SetTrackDuration records a track's length. 0 marks the track as looked up
// with no length available, so it is not fetched again.
func (s *Store) SetTrackDuration(trackID int64, durationMs int64) error {
	if _, err := s.db.Exec("UPDATE Track SET duration_ms = ? WHERE id = ?", durationMs, trackID); err != nil {
		return fmt.Errorf("updating duration for track %d: %w", trackID, err)
	}
	return nil
}

func setTrackDurationIfUnknown(tx *sql.Tx, trackID int64, durationMs int64) error {
	if durationMs <= 0 {
		return nil
	}
	query := "UPDATE Track SET duration_ms = ? WHERE id = ? AND (duration_ms IS NULL OR duration_ms <= 0)"
	if _, err := tx.Exec(query, durationMs, trackID); err != nil {
		return fmt.Errorf("updating duration for track %d: %w", trackID, err)
	}
	return nil
}
