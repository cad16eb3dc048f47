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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/listening-stats/internal/store"
)

type playlistFile struct {
	Name   string              `json:"name" yaml:"name"`
	Tracks []playlistFileTrack `json:"tracks" yaml:"tracks"`
}

type playlistFileTrack struct {
	Artist     string `json:"artist" yaml:"artist"`
	Track      string `json:"track" yaml:"track"`
	Album      string `json:"album" yaml:"album"`
	Year       int    `json:"year" yaml:"year"`
	DurationMs int64  `json:"duration_ms" yaml:"duration_ms"`
}

var importPlaylistCmd = &cobra.Command{
	Use:   "import-playlist <file>",
	Short: "Imports a playlist listing",
	Long: `Reads a playlist from a JSON or YAML file:
  {"name": "...", "tracks": [{"artist", "track", "album", "year", "duration_ms"}]}
Importing a playlist with an existing name replaces its track listing.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		if err := importPlaylist(currentUser(), args[0]); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importPlaylistCmd)
}

func importPlaylist(user, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	pl, err := decodePlaylist(f, ext == ".yaml" || ext == ".yml")
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.CreateUser(user); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	if err := db.SavePlaylist(user, pl); err != nil {
		return err
	}
	fmt.Printf("Imported playlist %q with %d tracks\n", pl.Name, len(pl.Tracks))
	return nil
}

func decodePlaylist(r io.Reader, isYAML bool) (store.PlaylistImport, error) {
	var file playlistFile
	var err error
	if isYAML {
		err = yaml.NewDecoder(r).Decode(&file)
	} else {
		err = json.NewDecoder(r).Decode(&file)
	}
	if err != nil {
		return store.PlaylistImport{}, fmt.Errorf("decoding playlist: %w", err)
	}
	if strings.TrimSpace(file.Name) == "" {
		return store.PlaylistImport{}, fmt.Errorf("playlist has no name")
	}

	pl := store.PlaylistImport{Name: file.Name}
	for i, t := range file.Tracks {
		if t.Artist == "" || t.Track == "" {
			return store.PlaylistImport{}, fmt.Errorf("track %d: artist and track are required", i+1)
		}
		pl.Tracks = append(pl.Tracks, store.PlaylistTrackImport{
			Artist:      t.Artist,
			Track:       t.Track,
			Album:       t.Album,
			ReleaseYear: t.Year,
			DurationMs:  t.DurationMs,
		})
	}
	return pl, nil
}
