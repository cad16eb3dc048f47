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

	"github.com/spf13/cobra"

	"github.com/ademuri/listening-stats/internal/store"
)

// reportBuilder computes one report for user from the positional args of its
// command.
type reportBuilder func(db *store.Store, user string, args []string) (report, error)

// reportBuilders is every report that can be exported, by name.
var reportBuilders = map[string]reportBuilder{
	"wrapped":    buildWrapped,
	"diversity":  buildDiversity,
	"patterns":   buildPatterns,
	"obsessions": buildObsessions,
	"mood":       buildMood,
	"compare":    buildCompare,
	"playlist":   buildPlaylist,
	"snapshot":   buildSnapshot,
}

func runReport(build reportBuilder, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := build(db, currentUser(), args)
	if err != nil {
		return err
	}
	printReport(os.Stdout, r)
	return nil
}

// reportRun adapts a builder to a cobra Run func, exiting on error.
func reportRun(build reportBuilder) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		if err := runReport(build, args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
}
