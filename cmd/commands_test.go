package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ademuri/listening-stats/internal/analysis"
	"github.com/ademuri/listening-stats/internal/export"
	"github.com/ademuri/listening-stats/internal/store"
)

const testHistory = `[
  {"ts": "2024-01-10T12:00:00Z", "ms_played": 150000, "master_metadata_track_name": "Roygbiv",
   "master_metadata_album_artist_name": "Boards of Canada", "master_metadata_album_album_name": "Music Has the Right to Children"},
  {"ts": "2024-01-11T12:00:00Z", "ms_played": 150000, "master_metadata_track_name": "Roygbiv",
   "master_metadata_album_artist_name": "Boards of Canada", "master_metadata_album_album_name": "Music Has the Right to Children"},
  {"ts": "2024-01-12T12:00:00Z", "ms_played": 150000, "master_metadata_track_name": "Roygbiv",
   "master_metadata_album_artist_name": "Boards of Canada", "master_metadata_album_album_name": "Music Has the Right to Children"},
  {"ts": "2024-01-12T13:00:00Z", "ms_played": 290000, "master_metadata_track_name": "Xtal",
   "master_metadata_album_artist_name": "Aphex Twin", "master_metadata_album_album_name": "Selected Ambient Works 85-92"},
  {"ts": "2024-01-13T08:00:00Z", "ms_played": 1800000, "master_metadata_track_name": null,
   "master_metadata_album_artist_name": null, "episode_name": "A podcast"},
  {"ts": "2024-01-13T09:00:00Z", "ms_played": 0, "master_metadata_track_name": "Skipped",
   "master_metadata_album_artist_name": "Aphex Twin", "master_metadata_album_album_name": "Drukqs"}
]`

const testPlaylist = `{
  "name": "Warp",
  "tracks": [
    {"artist": "Boards of Canada", "track": "Roygbiv", "album": "Music Has the Right to Children", "year": 1998, "duration_ms": 151000},
    {"artist": "Aphex Twin", "track": "Windowlicker", "album": "Windowlicker", "year": 1999}
  ]
}`

// setupTestDb points the commands at a fresh database for "testuser" with
// today pinned to 2024-01-31.
func setupTestDb(t *testing.T) *store.Store {
	t.Helper()
	viper.Reset()
	viper.Set("database", filepath.Join(t.TempDir(), "test.db"))
	viper.Set("user", "testuser")
	if err := setClock("2024-01-31"); err != nil {
		t.Fatalf("setClock: %v", err)
	}
	t.Cleanup(func() {
		setClock("")
		viper.Reset()
	})

	db, err := openStore()
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.CreateUser("testuser"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return db
}

func importTestHistory(t *testing.T, db *store.Store) importStats {
	t.Helper()
	stats, err := importHistoryFile(db, "testuser", strings.NewReader(testHistory))
	if err != nil {
		t.Fatalf("importHistoryFile: %v", err)
	}
	return stats
}

func TestImportHistory(t *testing.T) {
	db := setupTestDb(t)

	stats := importTestHistory(t, db)
	if stats.Imported != 4 || stats.Skipped != 2 {
		t.Errorf("Expected 4 imported and 2 skipped, got %+v", stats)
	}

	// Importing again doesn't duplicate listens.
	importTestHistory(t, db)
	plays, err := db.GetPlays("testuser", clock().AddDate(-1, 0, 0), clock())
	if err != nil {
		t.Fatalf("GetPlays: %v", err)
	}
	if len(plays) != 4 {
		t.Fatalf("Expected 4 plays, got %d", len(plays))
	}
	if plays[3].Track != "Xtal" || plays[3].DurationMs != 290000 {
		t.Errorf("Expected the exact ms_played to be kept, got %+v", plays[3])
	}
}

func TestImportHistoryRejectsNonArray(t *testing.T) {
	db := setupTestDb(t)
	if _, err := importHistoryFile(db, "testuser", strings.NewReader(`{"ts": "2024-01-10T12:00:00Z"}`)); err == nil {
		t.Error("Expected error for an object instead of an array")
	}
}

func TestDecodePlaylist(t *testing.T) {
	pl, err := decodePlaylist(strings.NewReader(testPlaylist), false)
	if err != nil {
		t.Fatalf("decodePlaylist: %v", err)
	}
	if pl.Name != "Warp" || len(pl.Tracks) != 2 || pl.Tracks[0].ReleaseYear != 1998 {
		t.Errorf("Unexpected playlist: %+v", pl)
	}

	yamlPlaylist := `
name: Warp
tracks:
  - artist: Aphex Twin
    track: Xtal
    year: 1992
`
	pl, err = decodePlaylist(strings.NewReader(yamlPlaylist), true)
	if err != nil {
		t.Fatalf("decodePlaylist(yaml): %v", err)
	}
	if len(pl.Tracks) != 1 || pl.Tracks[0].Track != "Xtal" {
		t.Errorf("Unexpected playlist: %+v", pl)
	}

	if _, err := decodePlaylist(strings.NewReader(`{"tracks": []}`), false); err == nil {
		t.Error("Expected error for a playlist without a name")
	}
	if _, err := decodePlaylist(strings.NewReader(`{"name": "x", "tracks": [{"artist": "A"}]}`), false); err == nil {
		t.Error("Expected error for a track without a name")
	}
}

func TestBuildWrapped(t *testing.T) {
	db := setupTestDb(t)
	importTestHistory(t, db)
	if err := db.SaveArtistGenres("Boards of Canada", []string{"idm", "ambient"}); err != nil {
		t.Fatalf("SaveArtistGenres: %v", err)
	}

	r, err := buildWrapped(db, "testuser", []string{"2024-01"})
	if err != nil {
		t.Fatalf("buildWrapped: %v", err)
	}
	if r.Label != "2024-01" {
		t.Errorf("Expected label 2024-01, got %q", r.Label)
	}
	wrapped := r.Doc.(analysis.WrappedReport)
	if !wrapped.HasData || wrapped.Stats.TotalPlays != 4 {
		t.Fatalf("Expected 4 plays, got %+v", wrapped)
	}
	if wrapped.Stats.TopArtists[0].Label != "Boards of Canada" {
		t.Errorf("Expected Boards of Canada on top, got %q", wrapped.Stats.TopArtists[0].Label)
	}
	if wrapped.Stats.Mood.Primary() != analysis.MoodChill {
		t.Errorf("Expected chill mood from ambient, got %q", wrapped.Stats.Mood.Primary())
	}

	r, err = buildWrapped(db, "testuser", []string{"2023"})
	if err != nil {
		t.Fatalf("buildWrapped(2023): %v", err)
	}
	if !strings.Contains(r.Text, "No listening data") {
		t.Errorf("Expected a no-data message, got %q", r.Text)
	}
}

func TestReportsWithoutDataFail(t *testing.T) {
	db := setupTestDb(t)
	for _, name := range []string{"diversity", "patterns", "mood"} {
		if _, err := reportBuilders[name](db, "testuser", nil); err == nil {
			t.Errorf("%s: Expected error without any plays", name)
		}
	}
}

func TestMoodIncludesPlayAtRelativeStart(t *testing.T) {
	db := setupTestDb(t)
	fixed := time.Date(2024, 6, 10, 12, 0, 0, 500_000_000, time.Local)
	clock = func() time.Time { return fixed }

	start := fixed.AddDate(0, 0, -30)
	err := db.AddRecentTracks("testuser", []store.TrackImport{
		{Artist: "Boards of Canada", Album: "Geogaddi", TrackName: "Julie and Candy", DateUTS: strconv.FormatInt(start.Unix(), 10)},
	})
	if err != nil {
		t.Fatalf("AddRecentTracks: %v", err)
	}
	if err := db.SaveArtistGenres("Boards of Canada", []string{"ambient"}); err != nil {
		t.Fatalf("SaveArtistGenres: %v", err)
	}

	r, err := buildMood(db, "testuser", nil)
	if err != nil {
		t.Fatalf("buildMood: %v", err)
	}
	profile, ok := r.Doc.(analysis.MoodProfile)
	if !ok {
		t.Fatalf("Expected a MoodProfile, got %T", r.Doc)
	}
	if profile.Primary() != analysis.MoodChill {
		t.Errorf("Expected chill mood, got %q", profile.Primary())
	}
}

func TestEveryReportBuilds(t *testing.T) {
	db := setupTestDb(t)
	importTestHistory(t, db)
	pl, err := decodePlaylist(strings.NewReader(testPlaylist), false)
	if err != nil {
		t.Fatalf("decodePlaylist: %v", err)
	}
	if err := db.SavePlaylist("testuser", pl); err != nil {
		t.Fatalf("SavePlaylist: %v", err)
	}

	for name, build := range reportBuilders {
		args := []string{"2024-01"}
		switch name {
		case "obsessions", "compare":
			args = nil
		case "playlist":
			args = []string{"Warp"}
		}
		r, err := build(db, "testuser", args)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if r.Name != name {
			t.Errorf("%s: report named %q", name, r.Name)
		}
		if len(r.Tables) == 0 {
			t.Errorf("%s: no tables", name)
		}
		var out bytes.Buffer
		printReport(&out, r)
		if out.Len() == 0 {
			t.Errorf("%s: printed nothing", name)
		}
	}
}

func TestBuildPlaylist(t *testing.T) {
	db := setupTestDb(t)
	importTestHistory(t, db)
	pl, _ := decodePlaylist(strings.NewReader(testPlaylist), false)
	if err := db.SavePlaylist("testuser", pl); err != nil {
		t.Fatalf("SavePlaylist: %v", err)
	}

	r, err := buildPlaylist(db, "testuser", []string{"Warp"})
	if err != nil {
		t.Fatalf("buildPlaylist: %v", err)
	}
	pr := r.Doc.(analysis.PlaylistReport)
	if pr.TotalTracks != 2 || pr.PlayedTracks != 1 || pr.CompletionRate != 50 {
		t.Errorf("Expected 1 of 2 tracks played, got %+v", pr)
	}
	if len(pr.Unplayed) != 1 || pr.Unplayed[0].Name != "Windowlicker" {
		t.Errorf("Expected Windowlicker unplayed, got %+v", pr.Unplayed)
	}

	if _, err := buildPlaylist(db, "testuser", []string{"Missing"}); err == nil {
		t.Error("Expected error for an unknown playlist")
	}
}

func TestWriteExport(t *testing.T) {
	db := setupTestDb(t)
	importTestHistory(t, db)

	var stdout bytes.Buffer
	config := ExportConfig{User: "testuser", Report: "wrapped", Args: []string{"2024-01"}, Out: "-"}
	if _, err := writeExport(db, config, export.JSON, &stdout); err != nil {
		t.Fatalf("writeExport(json): %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &decoded); err != nil {
		t.Fatalf("Decoding export: %v", err)
	}
	if decoded["has_data"] != true {
		t.Errorf("Expected has_data in export, got %v", decoded)
	}

	config.Out = filepath.Join(t.TempDir(), "wrapped.csv")
	path, err := writeExport(db, config, export.CSV, &stdout)
	if err != nil {
		t.Fatalf("writeExport(csv): %v", err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Reading export: %v", err)
	}
	if !strings.Contains(string(contents), "Boards of Canada") {
		t.Errorf("Expected top artist in CSV, got:\n%s", contents)
	}

	config.Report = "nonsense"
	if _, err := writeExport(db, config, export.CSV, &stdout); err == nil {
		t.Error("Expected error for an unknown report")
	}
}

func TestHeatmapGrid(t *testing.T) {
	var cells []analysis.HeatmapCell
	start, _ := parseSingleDatestring("2024-01-03") // a Wednesday
	for i, level := range []int{1, 1, 1, 1, 4, 1, 1} {
		cells = append(cells, analysis.HeatmapCell{Date: start.Date.AddDate(0, 0, i), Level: level})
	}

	lines := strings.Split(strings.TrimSuffix(heatmapGrid(cells), "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("Expected 7 rows, got %d", len(lines))
	}
	if lines[0] != "Sun  █" {
		t.Errorf("Expected Sunday in the second week, got %q", lines[0])
	}
	if lines[3] != "Wed ░ " {
		t.Errorf("Expected Wednesday in the first week, got %q", lines[3])
	}
	if heatmapGrid(nil) != "" {
		t.Error("Expected no grid without cells")
	}
}

func TestAnalysisString(t *testing.T) {
	table := export.Table{Name: "Top artists", Header: []string{"Name", "Plays"}}
	table.Append("Boards of Canada", 3)
	out := newAnalysis(table).String()
	if !strings.Contains(out, "Boards of Canada") || !strings.Contains(strings.ToUpper(out), "PLAYS") {
		t.Errorf("Unexpected table:\n%s", out)
	}

	empty := newAnalysis(export.Table{Name: "Nothing", Header: []string{"Name"}}).String()
	if !strings.Contains(empty, "(none)") {
		t.Errorf("Expected empty marker, got:\n%s", empty)
	}
}
