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

var diversityCmd = &cobra.Command{
	Use:   "diversity [from] [to]",
	Short: "Scores how varied listening is",
	Long: `Genre and artist diversity (normalized Shannon entropy), exploration,
mainstream and niche scores, and an overall score out of 100. Defaults to the
last 30 days.`,
	Args:    cobra.MaximumNArgs(2),
	PreRunE: requireUser,
	Run:     reportRun(buildDiversity),
}

func init() {
	rootCmd.AddCommand(diversityCmd)
}

func buildDiversity(db *store.Store, user string, args []string) (report, error) {
	period, err := periodFromArgs(args, "30d")
	if err != nil {
		return report{}, err
	}
	plays, err := db.RequirePlays(user, period.Start, period.End)
	if err != nil {
		return report{}, err
	}
	genres, err := db.GenreIndex()
	if err != nil {
		return report{}, err
	}

	r := analysis.ComputeDiversity(plays, genres)
	return report{Name: "diversity", Label: period.Label, Doc: r, Tables: export.DiversityTables(r)}, nil
}
