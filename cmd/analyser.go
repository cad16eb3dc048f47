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
	"bytes"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/ademuri/listening-stats/internal/export"
)

// Analysis is one table of terminal output. results[0] is the header.
type Analysis struct {
	results [][]string
	summary string
}

// report is what every report command produces: a value for JSON and YAML
// exports, and tables for the terminal, CSV and XLSX.
type report struct {
	Name   string
	Label  string
	Doc    any
	Tables []export.Table

	// Screen, when set, replaces Tables on the terminal.
	Screen []export.Table

	// Text is printed after the tables.
	Text string
}

func newAnalysis(t export.Table) Analysis {
	a := Analysis{results: [][]string{t.Header}}
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = export.CellString(v)
		}
		a.results = append(a.results, cells)
	}
	if len(t.Rows) == 0 {
		a.summary = "(none)"
	}
	return a
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	if len(a.results) == 0 {
		fmt.Fprintf(out, "%s\n", a.summary)
		return out.String()
	}
	table := tablewriter.NewWriter(out)
	table.Header(a.results[0])
	for _, row := range a.results[1:] {
		if err := table.Append(row); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("Error rendering table: %v", err)
	}
	if a.summary != "" {
		fmt.Fprintf(out, "%s\n", a.summary)
	}
	return out.String()
}

func printReport(w io.Writer, r report) {
	tables := r.Tables
	if r.Screen != nil {
		tables = r.Screen
	}
	for _, t := range tables {
		fmt.Fprintf(w, "%s\n", t.Name)
		fmt.Fprint(w, newAnalysis(t))
		fmt.Fprintln(w)
	}
	if r.Text != "" {
		fmt.Fprintln(w, r.Text)
	}
}
