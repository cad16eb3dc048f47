/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ademuri/listening-stats/internal/store"
)

// historyBatch is how many listens are written per transaction.
const historyBatch = 500

// streamingEntry is one element of a streaming history export.
type streamingEntry struct {
	Timestamp string `json:"ts"`
	MsPlayed  int64  `json:"ms_played"`
	Track     string `json:"master_metadata_track_name"`
	Artist    string `json:"master_metadata_album_artist_name"`
	Album     string `json:"master_metadata_album_album_name"`
}

type importStats struct {
	Imported int
	Skipped  int
}

var importHistoryCmd = &cobra.Command{
	Use:   "import-history <files...>",
	Short: "Imports streaming history JSON exports",
	Long: `Reads the JSON arrays of a streaming history export and stores each track
listen with how long it actually played. Podcast episodes and entries without
a track name are skipped. Importing the same file twice is harmless.`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		if err := importHistory(currentUser(), args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importHistoryCmd)
}

func importHistory(user string, files []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.CreateUser(user); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		stats, err := importHistoryFile(db, user, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		fmt.Printf("%s: imported %d listens, skipped %d entries\n", path, stats.Imported, stats.Skipped)
	}
	return nil
}

// importHistoryFile decodes the array one entry at a time so that large
// exports don't have to fit in memory.
func importHistoryFile(db *store.Store, user string, r io.Reader) (importStats, error) {
	var stats importStats
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return stats, fmt.Errorf("reading start of array: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return stats, fmt.Errorf("expected a JSON array, got %v", tok)
	}

	batch := make([]store.TrackImport, 0, historyBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := db.AddRecentTracks(user, batch); err != nil {
			return err
		}
		stats.Imported += len(batch)
		batch = batch[:0]
		return nil
	}

	for dec.More() {
		var entry streamingEntry
		if err := dec.Decode(&entry); err != nil {
			return stats, fmt.Errorf("decoding entry %d: %w", stats.Imported+stats.Skipped+len(batch), err)
		}
		t, ok := entry.toImport()
		if !ok {
			stats.Skipped++
			continue
		}
		batch = append(batch, t)
		if len(batch) == historyBatch {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if _, err := dec.Token(); err != nil {
		return stats, fmt.Errorf("reading end of array: %w", err)
	}
	return stats, flush()
}

func (e streamingEntry) toImport() (store.TrackImport, bool) {
	if e.Track == "" || e.Artist == "" || e.MsPlayed <= 0 {
		return store.TrackImport{}, false
	}
	ts, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return store.TrackImport{}, false
	}
	return store.TrackImport{
		Artist:     e.Artist,
		Album:      e.Album,
		TrackName:  e.Track,
		DateUTS:    strconv.FormatInt(ts.Unix(), 10),
		DurationMs: e.MsPlayed,
	}, true
}
