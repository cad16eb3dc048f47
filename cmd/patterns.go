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
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/analysis"
	"github.com/ademuri/listening-stats/internal/export"
	"github.com/ademuri/listening-stats/internal/store"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns [from] [to]",
	Short: "Shows when listening happens",
	Long: `Hourly and day-of-week distributions, daily totals, current and longest
streaks, and a calendar heatmap of the last heatmap_weeks weeks. Defaults to
the heatmap's range.`,
	Args:    cobra.MaximumNArgs(2),
	PreRunE: requireUser,
	Run:     reportRun(buildPatterns),
}

func init() {
	rootCmd.AddCommand(patternsCmd)
}

func buildPatterns(db *store.Store, user string, args []string) (report, error) {
	weeks := viper.GetInt("heatmap_weeks")
	if weeks <= 0 {
		weeks = defaultHeatmapWeeks
	}
	period, err := periodFromArgs(args, fmt.Sprintf("%dw", weeks))
	if err != nil {
		return report{}, err
	}
	plays, err := db.RequirePlays(user, period.Start, period.End)
	if err != nil {
		return report{}, err
	}

	p := analysis.ComputeTemporalPatterns(plays, clock(), weeks)
	tables := export.PatternsTables(p)
	return report{
		Name:   "patterns",
		Label:  period.Label,
		Doc:    p,
		Tables: tables,
		Screen: tables[:3],
		Text:   heatmapGrid(p.Heatmap),
	}, nil
}

const defaultHeatmapWeeks = 52

var heatmapShades = []rune(" ░▒▓█")

// heatmapGrid draws one row per weekday and one column per week.
func heatmapGrid(cells []analysis.HeatmapCell) string {
	if len(cells) == 0 {
		return ""
	}
	offset := int(cells[0].Date.Weekday())
	cols := (len(cells) + offset + 6) / 7
	grid := make([][]rune, 7)
	for d := range grid {
		grid[d] = []rune(strings.Repeat(" ", cols))
	}
	for i, c := range cells {
		pos := i + offset
		grid[pos%7][pos/7] = heatmapShades[c.Level]
	}

	var b strings.Builder
	for d, row := range grid {
		fmt.Fprintf(&b, "%s %s\n", time.Weekday(d).String()[:3], string(row))
	}
	return b.String()
}
