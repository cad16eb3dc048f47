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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/enrich"
	"github.com/ademuri/listening-stats/internal/store"
)

var cfgFile string
var lastFmApiKey string
var lastFmSecret string
var lastFmUser string
var databasePath string

// clock is the reference "now" for relative dates and time-relative reports.
// --now pins it to the end of the given day.
var clock = time.Now

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "listening-stats",
	Short: "Analyses listening history",
	Long: `Collects listening history from last.fm and streaming history exports into
a local SQLite database, and reports on it: wrapped summaries, diversity,
listening patterns, obsessions, mood, comparisons and playlists.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		slog.SetDefault(newLogger(viper.GetBool("verbose"), viper.GetBool("log_json")))
		return setClock(viper.GetString("now"))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.listening-stats.yaml)")

	rootCmd.PersistentFlags().StringVarP(
		&lastFmApiKey, "api_key", "", "", "last.fm API key")
	viper.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api_key"))

	rootCmd.PersistentFlags().StringVarP(
		&lastFmSecret, "secret", "", "", "last.fm secret")
	viper.BindPFlag("secret", rootCmd.PersistentFlags().Lookup("secret"))

	rootCmd.PersistentFlags().StringVarP(
		&lastFmUser, "user", "u", "", "username to act on")
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))

	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./listening-stats.db", "Path to the SQLite database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	var sendgridKey string
	rootCmd.PersistentFlags().StringVar(&sendgridKey, "sendgrid_api_key", "", "SendGrid API key, for share --to")
	viper.BindPFlag("sendgrid_api_key", rootCmd.PersistentFlags().Lookup("sendgrid_api_key"))

	var from string
	rootCmd.PersistentFlags().StringVar(&from, "from", "", "From email address")
	viper.BindPFlag("from", rootCmd.PersistentFlags().Lookup("from"))

	var now string
	rootCmd.PersistentFlags().StringVar(&now, "now", "", "Treat this day, in yyyy-mm-dd format, as today")
	viper.BindPFlag("now", rootCmd.PersistentFlags().Lookup("now"))

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	var logJSON bool
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log_json", false, "Log as JSON")
	viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log_json"))
}

// initConfig reads in .env, the config file and ENV variables if set.
func initConfig() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment and config file")
	}

	viper.SetDefault("default_duration_ms", store.DefaultDurationMs)
	viper.SetDefault("heatmap_weeks", defaultHeatmapWeeks)
	viper.SetDefault("enrich_concurrency", enrich.DefaultLimit)

	viper.SetEnvPrefix("LISTENING_STATS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".listening-stats" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".listening-stats")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Reading config file:", err)
		}
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

// Diagnostics go to stderr so they never mix with report output.
func newLogger(verbose, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func setClock(day string) error {
	if day == "" {
		clock = time.Now
		return nil
	}
	d, err := time.ParseInLocation("2006-01-02", day, time.Local)
	if err != nil {
		return fmt.Errorf("--now: %w", err)
	}
	fixed := d.AddDate(0, 0, 1).Add(-time.Second)
	clock = func() time.Time { return fixed }
	return nil
}

// requireUser is the PreRunE for commands that act on one user. The user may
// come from the flag, the config file or the environment.
func requireUser(cmd *cobra.Command, args []string) error {
	if viper.GetString("user") == "" {
		return fmt.Errorf("required flag(s) \"user\" not set")
	}
	return nil
}

func currentUser() string {
	return strings.ToLower(viper.GetString("user"))
}

func openStore() (*store.Store, error) {
	db, err := store.New(viper.GetString("database"),
		store.WithDefaultDuration(viper.GetInt64("default_duration_ms")))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}
