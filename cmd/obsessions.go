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
	"github.com/spf13/cobra"

	"github.com/ademuri/listening-stats/internal/analysis"
	"github.com/ademuri/listening-stats/internal/export"
	"github.com/ademuri/listening-stats/internal/store"
)

// obsessionLookback is how much history obsession detection reads.
const obsessionLookback = 90

var obsessionsCmd = &cobra.Command{
	Use:   "obsessions",
	Short: "Finds tracks and artists you binged",
	Long: `Looks at the last 90 days for tracks and artists whose plays bunched up into
a burst of at least twice their usual rate, and says whether each obsession is
active, cooling or past.`,
	Args:    cobra.NoArgs,
	PreRunE: requireUser,
	Run:     reportRun(buildObsessions),
}

func init() {
	rootCmd.AddCommand(obsessionsCmd)
}

func buildObsessions(db *store.Store, user string, args []string) (report, error) {
	now := clock()
	start := now.AddDate(0, 0, -obsessionLookback)
	plays, err := db.GetPlays(user, start, now)
	if err != nil {
		return report{}, err
	}
	genres, err := db.GenreIndex()
	if err != nil {
		return report{}, err
	}

	r := analysis.DetectObsessions(plays, genres, now)
	out := report{Name: "obsessions", Doc: r, Tables: export.ObsessionTables(r)}
	if r.InsufficientData {
		out.Screen = out.Tables[:1]
		out.Text = "Not enough listening in the last 90 days to look for obsessions"
	}
	return out, nil
}
