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
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/export"
	"github.com/ademuri/listening-stats/internal/store"
)

type ExportConfig struct {
	User   string
	Report string
	Args   []string
	Format string
	Out    string
}

var exportCmd = &cobra.Command{
	Use:   "export <report> [args...]",
	Short: "Writes a report to a CSV, XLSX, JSON or YAML file",
	Long: `Runs a report and writes it to a file instead of the terminal.
  <report> is one of: ` + strings.Join(reportNames(), ", ") + `.
  The remaining arguments are the report's own: dates, or a playlist name.
  --out defaults to <user>-<report>-<label>.<format>; use --out - for stdout.`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		config := ExportConfig{
			User:   currentUser(),
			Report: args[0],
			Args:   args[1:],
			Format: viper.GetString("export_format"),
			Out:    viper.GetString("export_out"),
		}
		if err := exportReport(config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	var format string
	exportCmd.Flags().StringVarP(&format, "format", "f", "csv", "Output format: csv, xlsx, json or yaml")
	viper.BindPFlag("export_format", exportCmd.Flags().Lookup("format"))

	var out string
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "Output file")
	viper.BindPFlag("export_out", exportCmd.Flags().Lookup("out"))
}

func reportNames() []string {
	names := make([]string, 0, len(reportBuilders))
	for name := range reportBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func exportReport(config ExportConfig) error {
	format, err := export.ParseFormat(config.Format)
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	path, err := writeExport(db, config, format, os.Stdout)
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}

// writeExport builds the report and writes it to config.Out, or stdout for
// "-". It returns the path written, empty for stdout.
func writeExport(db *store.Store, config ExportConfig, format export.Format, stdout io.Writer) (string, error) {
	build, ok := reportBuilders[config.Report]
	if !ok {
		return "", fmt.Errorf("unknown report %q (want one of %s)", config.Report, strings.Join(reportNames(), ", "))
	}
	r, err := build(db, config.User, config.Args)
	if err != nil {
		return "", fmt.Errorf("building %s: %w", config.Report, err)
	}

	if config.Out == "-" {
		return "", export.Write(stdout, format, r.Doc, r.Tables)
	}

	path := config.Out
	if path == "" {
		path = export.FileName(config.User, r.Name, r.Label, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.Write(f, format, r.Doc, r.Tables); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}
