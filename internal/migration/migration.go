package migration

// Create builds a fresh database. Existing databases are brought up to date
// column by column by the store when it is opened.
const Create = `
CREATE TABLE User (
  name TEXT PRIMARY KEY,
  last_updated DATETIME
);

CREATE TABLE Artist (
  name TEXT PRIMARY KEY,
  genres TEXT,
  genres_last_updated DATETIME
);

CREATE TABLE Album (
  artist TEXT,
  name TEXT,
  FOREIGN KEY (artist) REFERENCES Artist(name),
  PRIMARY KEY (artist, name)
);

CREATE TABLE Track (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  artist TEXT,
  album TEXT,
  name TEXT,
  duration_ms INTEGER,
  FOREIGN KEY (artist) REFERENCES Artist(name),
  UNIQUE (artist, album, name)
);

CREATE TABLE Listen (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user TEXT,
  track INTEGER,
  date INTEGER,
  duration_ms INTEGER,
  FOREIGN KEY (user) REFERENCES User(name),
  FOREIGN KEY (track) REFERENCES Track(id)
);

CREATE INDEX ListenUserDate ON Listen (user, date);

CREATE TABLE Playlist (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user TEXT,
  name TEXT,
  FOREIGN KEY (user) REFERENCES User(name),
  UNIQUE (user, name)
);

CREATE TABLE PlaylistTrack (
  playlist INTEGER,
  position INTEGER,
  track INTEGER,
  release_year INTEGER,
  FOREIGN KEY (playlist) REFERENCES Playlist(id),
  FOREIGN KEY (track) REFERENCES Track(id),
  PRIMARY KEY (playlist, position)
);
`
