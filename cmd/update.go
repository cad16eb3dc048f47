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
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/ademuri/listening-stats/internal/enrich"
	"github.com/ademuri/listening-stats/internal/store"
	"github.com/ademuri/lastfm-go/lastfm"
)

// maxArtistGenres is how many of an artist's top tags are kept as genres.
const maxArtistGenres = 10

type UpdateConfig struct {
	DbPath              string
	User                string
	ApiKey              string
	Secret              string
	After               string
	Force               bool
	GenreUpdateInterval time.Duration
	MinListens          int
	DurationLimit       int
	Concurrency         int
	DefaultDurationMs   int64
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetches data from last.fm",
	Long: `Stores recent listens in a local SQLite database, then looks up genres for
artists and lengths for tracks that don't have them yet.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(cmd, args); err != nil {
			return err
		}
		if viper.GetString("api_key") == "" {
			return fmt.Errorf("required flag(s) \"api_key\" not set")
		}
		if viper.GetString("secret") == "" {
			return fmt.Errorf("required flag(s) \"secret\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		intervalStr := viper.GetString("genre-update-interval")
		interval, err := time.ParseDuration(intervalStr)
		if err != nil {
			fmt.Printf("Invalid genre-update-interval: %v. Using default 1 year.\n", err)
			interval = 24 * 365 * time.Hour
		}

		config := UpdateConfig{
			DbPath:              viper.GetString("database"),
			User:                viper.GetString("user"),
			ApiKey:              viper.GetString("api_key"),
			Secret:              viper.GetString("secret"),
			After:               viper.GetString("after"),
			Force:               viper.GetBool("force"),
			GenreUpdateInterval: interval,
			MinListens:          viper.GetInt("min-listens"),
			DurationLimit:       viper.GetInt("duration-limit"),
			Concurrency:         viper.GetInt("enrich_concurrency"),
			DefaultDurationMs:   viper.GetInt64("default_duration_ms"),
		}

		err = updateDatabase(cmd.Context(), config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)

	var afterString string
	updateCmd.Flags().StringVar(&afterString, "after", "", "Only get listening data after this date, in yyyy-mm-dd format")
	viper.BindPFlag("after", updateCmd.Flags().Lookup("after"))

	var force bool
	updateCmd.Flags().BoolVarP(&force, "force", "f", false, "Get all listening data, regardless of what's already present (idempotent)")
	viper.BindPFlag("force", updateCmd.Flags().Lookup("force"))

	var genreUpdateInterval string
	updateCmd.Flags().StringVar(&genreUpdateInterval, "genre-update-interval", "8760h", "Time duration after which to re-fetch artist genres (e.g., 24h)")
	viper.BindPFlag("genre-update-interval", updateCmd.Flags().Lookup("genre-update-interval"))

	var minListens int
	updateCmd.Flags().IntVar(&minListens, "min-listens", 0, "Only fetch genres for artists with more listens than this")
	viper.BindPFlag("min-listens", updateCmd.Flags().Lookup("min-listens"))

	var durationLimit int
	updateCmd.Flags().IntVar(&durationLimit, "duration-limit", 500, "Maximum number of track lengths to look up per run")
	viper.BindPFlag("duration-limit", updateCmd.Flags().Lookup("duration-limit"))
}

func updateDatabase(ctx context.Context, config UpdateConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var after time.Time
	var err error
	if len(config.After) > 0 {
		after, err = time.Parse("2006-01-02", config.After)
		if err != nil {
			return fmt.Errorf("--after: %w", err)
		}
	}

	user := strings.ToLower(config.User)
	db, err := store.New(config.DbPath, store.WithDefaultDuration(config.DefaultDurationMs))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	lastfmClient := lastfm.New(config.ApiKey, config.Secret)
	lastfmClient.SetUserAgent("listening-stats/1.0")

	err = db.CreateUser(user)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	lastUpdated, err := db.GetLastUpdated(user)
	if err != nil {
		return err
	}
	now := time.Now()
	if !lastUpdated.IsZero() && now.Sub(lastUpdated).Hours() < 24 && !config.Force {
		fmt.Printf("User data was already updated in the past 24 hours\n")
		return nil
	}
	fmt.Printf("User data was last updated: %s\n", lastUpdated.Format("2006-01-02"))

	latestListen, err := db.GetLatestListen(user)
	if err != nil {
		return fmt.Errorf("getting latest listen: %w", err)
	}
	fmt.Printf("Latest local listening data is from: %s\n", latestListen.Format("2006-01-02"))

	fmt.Printf("Updating database for %q\n", user)
	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)
	page := 1 // First page is 1
	pages := 0
	for {
		var recentTracks lastfm.UserGetRecentTracks
		err := callLastfm(ctx, func() error {
			var err error
			recentTracks, err = lastfmClient.User.GetRecentTracks(lastfm.P{
				"limit": 200,
				"page":  page,
				"user":  user,
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("fetching recent tracks: %w", err)
		}

		if pages == 0 {
			pages = recentTracks.TotalPages
		}
		if len(recentTracks.Tracks) == 0 {
			break
		}

		tracksToImport := recentTracksToImport(recentTracks)
		err = db.AddRecentTracks(user, tracksToImport)
		if err != nil {
			return fmt.Errorf("inserting recent tracks (page %d): %w", page, err)
		}

		oldestDateUts, err := strconv.ParseInt(recentTracks.Tracks[len(recentTracks.Tracks)-1].Date.Uts, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing date: %w", err)
		}
		oldestDate := time.Unix(oldestDateUts, 0)

		fmt.Printf("Downloaded page %v of %v (oldest: %s)\n", page, pages, oldestDate.Format("2006-01-02"))
		page += 1

		if !after.IsZero() && oldestDate.Before(after) {
			break
		}
		if page > pages {
			break
		}
		if !config.Force && !latestListen.IsZero() && oldestDate.Before(latestListen.AddDate(0, 0, -7)) {
			fmt.Println("Refreshed back to existing data")
			break
		}

		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}

	fmt.Println("Updating genres...")
	if err := updateGenres(ctx, db, artistGenresFromLastfm(lastfmClient, limiter), config); err != nil {
		return err
	}

	fmt.Println("Updating track lengths...")
	if err := updateDurations(ctx, db, trackDurationFromLastfm(lastfmClient, limiter), config); err != nil {
		return err
	}

	err = db.SetLastUpdated(user, now)
	if err != nil {
		return err
	}

	return nil
}

// recentTracksToImport skips the "now playing" entry, which has no date.
func recentTracksToImport(recentTracks lastfm.UserGetRecentTracks) []store.TrackImport {
	var tracksToImport []store.TrackImport
	for _, t := range recentTracks.Tracks {
		if t.Date.Uts == "" {
			continue
		}
		tracksToImport = append(tracksToImport, store.TrackImport{
			Artist:    t.Artist.Name,
			Album:     t.Album.Name,
			TrackName: t.Name,
			DateUTS:   t.Date.Uts,
		})
	}
	return tracksToImport
}

// callLastfm retries fn while last.fm answers with a 5xx error.
func callLastfm(ctx context.Context, fn func() error) error {
	return retry.Do(fn,
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			if lerr, ok := err.(*lastfm.LastfmError); ok {
				if lerr.Code/100 == 5 {
					slog.Warn("last.fm errored, retrying", "error", lerr)
					return true
				}
			}
			return false
		}),
	)
}

// artistGenresFromLastfm uses an artist's top tags as its genres.
func artistGenresFromLastfm(client *lastfm.Api, limiter *rate.Limiter) enrich.Lookup[[]string] {
	return func(ctx context.Context, artist string) ([]string, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		var topTags lastfm.ArtistGetTopTags
		err := callLastfm(ctx, func() error {
			var err error
			topTags, err = client.Artist.GetTopTags(lastfm.P{
				"artist":      artist,
				"autocorrect": 1,
			})
			return err
		})
		if err != nil {
			return nil, err
		}

		var genres []string
		for _, t := range topTags.Tags {
			if len(genres) == maxArtistGenres {
				break
			}
			genres = append(genres, strings.ToLower(t.Name))
		}
		return genres, nil
	}
}

// durationLookup fetches a track's length in milliseconds, 0 if unknown.
type durationLookup func(ctx context.Context, track store.TrackRef) (int64, error)

func trackDurationFromLastfm(client *lastfm.Api, limiter *rate.Limiter) durationLookup {
	return func(ctx context.Context, track store.TrackRef) (int64, error) {
		if err := limiter.Wait(ctx); err != nil {
			return 0, err
		}
		var duration string
		err := callLastfm(ctx, func() error {
			info, err := client.Track.GetInfo(lastfm.P{
				"artist":      track.Artist,
				"track":       track.Name,
				"autocorrect": 1,
			})
			duration = info.Duration
			return err
		})
		if err != nil {
			return 0, err
		}
		if duration == "" {
			return 0, nil
		}
		ms, err := strconv.ParseInt(duration, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing duration %q: %w", duration, err)
		}
		return ms, nil
	}
}

func updateGenres(ctx context.Context, db *store.Store, lookup enrich.Lookup[[]string], config UpdateConfig) error {
	artists, err := db.GetArtistsNeedingGenreUpdate(config.GenreUpdateInterval, config.MinListens)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d artists needing genre updates\n", len(artists))

	results := enrich.Gather(ctx, artists, lookup,
		enrich.WithLimit(config.Concurrency), enrich.WithLabel("artist genres"))
	for artist, genres := range enrich.Succeeded(results) {
		if err := db.SaveArtistGenres(artist, genres); err != nil {
			return fmt.Errorf("saving genres for artist %s: %w", artist, err)
		}
	}
	if failed := enrich.Failed(results); failed > 0 {
		fmt.Printf("Could not fetch genres for %d of %d artists\n", failed, len(artists))
	}
	return nil
}

func updateDurations(ctx context.Context, db *store.Store, lookupDuration durationLookup, config UpdateConfig) error {
	tracks, err := db.GetTracksNeedingDuration(config.DurationLimit)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d tracks needing a length\n", len(tracks))

	keys := make([]string, len(tracks))
	byKey := make(map[string]store.TrackRef, len(tracks))
	for i, t := range tracks {
		keys[i] = strconv.FormatInt(t.ID, 10)
		byKey[keys[i]] = t
	}
	lookup := func(ctx context.Context, key string) (int64, error) {
		return lookupDuration(ctx, byKey[key])
	}

	results := enrich.Gather(ctx, keys, lookup,
		enrich.WithLimit(config.Concurrency), enrich.WithLabel("track length"))
	for key, ms := range enrich.Succeeded(results) {
		if err := db.SetTrackDuration(byKey[key].ID, ms); err != nil {
			return err
		}
	}
	if failed := enrich.Failed(results); failed > 0 {
		fmt.Printf("Could not fetch lengths for %d of %d tracks\n", failed, len(tracks))
	}
	return nil
}
