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

var moodCmd = &cobra.Command{
	Use:   "mood [from] [to]",
	Short: "Classifies the mood of the genres you listened to",
	Long: `Scores the top genres of a period against the mood keywords (energetic,
chill, happy, sad, romantic, focus, angry). Defaults to the last 30 days.`,
	Args:    cobra.MaximumNArgs(2),
	PreRunE: requireUser,
	Run:     reportRun(buildMood),
}

func init() {
	rootCmd.AddCommand(moodCmd)
}

func buildMood(db *store.Store, user string, args []string) (report, error) {
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

	wrapped := analysis.BuildWrappedReport(plays, genres, period)
	if !wrapped.HasData {
		return report{}, fmt.Errorf("%s for %s: %w", user, period.Label, store.ErrNoData)
	}
	profile := wrapped.Stats.Mood
	return report{
		Name:   "mood",
		Label:  period.Label,
		Doc:    profile,
		Tables: export.MoodTables(profile),
		Text:   "Primary mood: " + string(profile.Primary()),
	}, nil
}
