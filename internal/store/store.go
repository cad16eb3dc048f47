package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ademuri/listening-stats/internal/migration"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNoData is returned when a query that must produce plays finds none.
var ErrNoData = errors.New("no listening data")

type Store struct {
	db *sql.DB

	// Duration used for plays whose length is unknown.
	defaultDurationMs int64
}

type Option func(*Store)

// WithDefaultDuration sets the duration assumed for plays with no known length.
func WithDefaultDuration(ms int64) Option {
	return func(s *Store) {
		if ms > 0 {
			s.defaultDurationMs = ms
		}
	}
}

// DefaultDurationMs is the length assumed for a play when neither the listen
// nor the track records one.
const DefaultDurationMs = 150000

func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	s := &Store{db: db, defaultDurationMs: DefaultDurationMs}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	exists, err := dbExists(db)
	if err != nil {
		return err
	}

	if !exists {
		if _, err := db.Exec(migration.Create); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
		return nil
	}

	return createPlaylistTables(db)
}

func dbExists(db *sql.DB) (bool, error) {
	// 'User' stands in for the whole schema.
	row := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'User'")
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking db existence: %w", err)
	}
	return true, nil
}

// createPlaylistTables covers databases created before playlists existed.
func createPlaylistTables(db *sql.DB) error {
	query := `
CREATE TABLE IF NOT EXISTS Playlist (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user TEXT,
  name TEXT,
  FOREIGN KEY (user) REFERENCES User(name),
  UNIQUE (user, name)
);

CREATE TABLE IF NOT EXISTS PlaylistTrack (
  playlist INTEGER,
  position INTEGER,
  track INTEGER,
  release_year INTEGER,
  FOREIGN KEY (playlist) REFERENCES Playlist(id),
  FOREIGN KEY (track) REFERENCES Track(id),
  PRIMARY KEY (playlist, position)
);
`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("creating playlist tables: %w", err)
	}
	return nil
}

func ensureSchema(db *sql.DB) error {
	columns := []struct{ table, column, typeDef string }{
		{"Artist", "genres", "TEXT"},
		{"Artist", "genres_last_updated", "DATETIME"},
		{"Track", "duration_ms", "INTEGER"},
		{"Listen", "duration_ms", "INTEGER"},
	}
	for _, c := range columns {
		if err := addColumnIfNotExists(db, c.table, c.column, c.typeDef); err != nil {
			return err
		}
	}
	return nil
}

func addColumnIfNotExists(db *sql.DB, table, column, typeDef string) error {
	exists, err := columnExists(db, table, column)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if !exists {
		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typeDef)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("adding column %s.%s: %w", table, column, err)
		}
	}
	return nil
}

func columnExists(db *sql.DB, tableName string, columnName string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dfltValue interface{}
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			return true, nil
		}
	}
	return false, rows.Err()
}
