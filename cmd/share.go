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
	"html"
	"os"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/analysis"
	"github.com/ademuri/listening-stats/internal/export"
	"github.com/ademuri/listening-stats/internal/store"
)

type ShareConfig struct {
	User   string
	To     string
	From   string
	DryRun bool
	Args   []string
}

var shareCmd = &cobra.Command{
	Use:   "share [from] [to]",
	Short: "Prints a shareable snapshot, optionally emailing it",
	Long: `Composes the wrapped summary, diversity score, mood and current obsession of a
period into one paragraph. With --to the snapshot is emailed via SendGrid.
Defaults to the last 30 days.`,
	Args:    cobra.MaximumNArgs(2),
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		config := ShareConfig{
			User:   currentUser(),
			To:     viper.GetString("share_to"),
			From:   viper.GetString("from"),
			DryRun: viper.GetBool("share_dry_run"),
			Args:   args,
		}
		if err := share(config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(shareCmd)

	var to string
	shareCmd.Flags().StringVar(&to, "to", "", "Email the snapshot to this address")
	viper.BindPFlag("share_to", shareCmd.Flags().Lookup("to"))

	var dryRun bool
	shareCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print the email instead of sending it")
	viper.BindPFlag("share_dry_run", shareCmd.Flags().Lookup("dry_run"))
}

// sendMail delivers a message through SendGrid and returns the HTTP status.
var sendMail = func(message *mail.SGMailV3) (int, error) {
	client := sendgrid.NewSendClient(viper.GetString("sendgrid_api_key"))
	response, err := client.Send(message)
	if err != nil {
		return 0, err
	}
	return response.StatusCode, nil
}

func share(config ShareConfig) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := buildSnapshot(db, config.User, config.Args)
	if err != nil {
		return err
	}
	fmt.Println(r.Text)
	if config.To == "" {
		return nil
	}
	return sendSnapshot(config, r)
}

func buildSnapshot(db *store.Store, user string, args []string) (report, error) {
	period, err := periodFromArgs(args, "30d")
	if err != nil {
		return report{}, err
	}

	// Obsessions look back from now, which may be outside the period.
	now := clock()
	start, end := period.Start, period.End
	if lookback := now.AddDate(0, 0, -obsessionLookback); lookback.Before(start) {
		start = lookback
	}
	if now.After(end) {
		end = now
	}
	plays, err := db.GetPlays(user, start, end)
	if err != nil {
		return report{}, err
	}
	genres, err := db.GenreIndex()
	if err != nil {
		return report{}, err
	}

	s := analysis.BuildSnapshot(user, plays, genres, period, now)
	return report{Name: "snapshot", Label: period.Label, Doc: s, Tables: export.SnapshotTables(s), Text: s.Text()}, nil
}

func sendSnapshot(config ShareConfig, r report) error {
	subject, body := snapshotEmail(config.User, r)
	if config.DryRun {
		fmt.Printf("Would have sent email to %s: \nsubject: %s\n%s\n", config.To, subject, body)
		return nil
	}
	if config.From == "" {
		return fmt.Errorf("required flag(s) \"from\" not set")
	}
	if viper.GetString("sendgrid_api_key") == "" {
		return fmt.Errorf("required flag(s) \"sendgrid_api_key\" not set")
	}

	from := mail.NewEmail("listening-stats", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, r.Text, body)
	status, err := sendMail(message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if status/100 != 2 {
		return fmt.Errorf("sendEmail: SendGrid returned status %d", status)
	}
	fmt.Printf("Sent snapshot to %s\n", config.To)
	return nil
}

func snapshotEmail(user string, r report) (subject string, body string) {
	var out strings.Builder
	out.WriteString(`
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`)
	fmt.Fprintf(&out, "<p>%s</p>\n", html.EscapeString(r.Text))
	for _, t := range r.Tables {
		fmt.Fprintf(&out, "<h2>%s</h2>\n<table>\n<thead><tr>", html.EscapeString(t.Name))
		for _, header := range t.Header {
			fmt.Fprintf(&out, "<th>%s</th>", html.EscapeString(header))
		}
		out.WriteString("</tr></thead>\n<tbody>\n")
		for _, row := range t.Rows {
			out.WriteString("<tr>")
			for _, v := range row {
				fmt.Fprintf(&out, "<td>%s</td>", html.EscapeString(export.CellString(v)))
			}
			out.WriteString("</tr>\n")
		}
		out.WriteString("</tbody>\n</table>\n")
	}
	out.WriteString("  </body>\n</html>\n")

	subject = fmt.Sprintf("Listening snapshot for %s: %s", user, r.Label)
	return subject, out.String()
}
