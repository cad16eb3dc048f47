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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ademuri/listening-stats/internal/analysis"
	"github.com/ademuri/listening-stats/internal/export"
	"github.com/ademuri/listening-stats/internal/store"
)

var playlistCmd = &cobra.Command{
	Use:   "playlist <name>",
	Short: "Analyses an imported playlist against your history",
	Long: `Shows how much of a playlist you have actually played, which tracks you play
most and never, and its spread over genres, artists, decades and moods. Run
without a name to list the imported playlists.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		if len(args) == 0 {
			err = listPlaylists(currentUser())
		} else {
			err = runReport(buildPlaylist, args)
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(playlistCmd)
}

func listPlaylists(user string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	names, err := db.ListPlaylists(user)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Printf("No playlists imported for %q\n", user)
		return nil
	}
	fmt.Println(strings.Join(names, "\n"))
	return nil
}

func buildPlaylist(db *store.Store, user string, args []string) (report, error) {
	if len(args) != 1 {
		return report{}, fmt.Errorf("expected a playlist name")
	}
	pl, err := db.GetPlaylist(user, args[0])
	if err != nil {
		return report{}, err
	}
	plays, err := db.GetPlays(user, time.Unix(0, 0), clock())
	if err != nil {
		return report{}, err
	}
	genres, err := db.GenreIndex()
	if err != nil {
		return report{}, err
	}

	r := analysis.AnalyzePlaylist(pl, plays, genres)
	return report{Name: "playlist", Label: pl.Name, Doc: r, Tables: export.PlaylistTables(r)}, nil
}
