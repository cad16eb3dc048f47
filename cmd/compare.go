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
	"time"

	"github.com/spf13/cobra"

	"github.com/ademuri/listening-stats/internal/analysis"
	"github.com/ademuri/listening-stats/internal/export"
	"github.com/ademuri/listening-stats/internal/store"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compares your recent listening with every other user",
	Long: `Ranks your listening time over the last 30 days against every user in the
database, and scores how many of the artists you played were new to you.`,
	Args:    cobra.NoArgs,
	PreRunE: requireUser,
	Run:     reportRun(buildCompare),
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func buildCompare(db *store.Store, user string, args []string) (report, error) {
	now := clock()
	userPlays, err := db.GetPlays(user, time.Unix(0, 0), now)
	if err != nil {
		return report{}, err
	}
	allPlays, err := db.GetAllPlays(now.Add(-analysis.ComparisonWindow), now)
	if err != nil {
		return report{}, err
	}

	r := analysis.BuildComparisonReport(user, userPlays, allPlays, now)
	return report{Name: "compare", Doc: r, Tables: export.ComparisonTables(r)}, nil
}
