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

	"github.com/spf13/cobra"

	"github.com/ademuri/listening-stats/internal/analysis"
	"github.com/ademuri/listening-stats/internal/export"
	"github.com/ademuri/listening-stats/internal/store"
)

var wrappedCmd = &cobra.Command{
	Use:   "wrapped [from] [to]",
	Short: "Summarizes a period of listening",
	Long: `Top artists, tracks, albums and genres, listening time, peak hour and day,
mood and a few fun facts for a period. Dates are yyyy, yyyy-mm, yyyy-mm-dd or
relative (30d, 12w, 6m, 1y). Defaults to the current year.`,
	Args:    cobra.MaximumNArgs(2),
	PreRunE: requireUser,
	Run:     reportRun(buildWrapped),
}

func init() {
	rootCmd.AddCommand(wrappedCmd)
}

func buildWrapped(db *store.Store, user string, args []string) (report, error) {
	period, err := periodFromArgs(args, thisYear())
	if err != nil {
		return report{}, err
	}
	plays, err := db.GetPlays(user, period.Start, period.End)
	if err != nil {
		return report{}, err
	}
	genres, err := db.GenreIndex()
	if err != nil {
		return report{}, err
	}

	r := analysis.BuildWrappedReport(plays, genres, period)
	out := report{Name: "wrapped", Label: period.Label, Doc: r, Tables: export.WrappedTables(r)}
	if !r.HasData {
		out.Text = fmt.Sprintf("No listening data for %s", period.Label)
	}
	return out, nil
}
