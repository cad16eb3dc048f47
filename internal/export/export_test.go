package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/listening-stats/internal/analysis"
)

func sampleTables() []Table {
	artists := Table{Name: "Top artists", Header: []string{"Name", "Plays", "Minutes"}}
	artists.Append("Boards of Canada", 12, 45.5)
	artists.Append("Autechre, etc", 3, nil)
	days := Table{Name: "Day of week", Header: []string{"Day", "Plays"}}
	days.Append(time.Saturday, 7)
	return []Table{artists, days}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": CSV, "XLSX": XLSX, " json ": JSON, "yml": YAML, "yaml": YAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "alice-wrapped-2024-01.csv", FileName("alice", "wrapped", "2024-01", CSV))
	assert.Equal(t, "bob_smith-playlist-Road_Trip_.xlsx", FileName("bob smith", "playlist", "Road/Trip!", XLSX))
	assert.Equal(t, "alice-compare.json", FileName("alice", "compare", "", JSON))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTables()))

	want := strings.Join([]string{
		"Top artists",
		"Name,Plays,Minutes",
		"Boards of Canada,12,45.5",
		`"Autechre, etc",3,`,
		"",
		"Day of week",
		"Day,Plays",
		"Saturday,7",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVSingleTableHasNoTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTables()[1:]))
	assert.Equal(t, "Day,Plays\nSaturday,7\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTables()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Top artists", "Day of week"}, f.GetSheetList())

	rows, err := f.GetRows("Top artists")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "Plays", "Minutes"}, rows[0])
	assert.Equal(t, []string{"Boards of Canada", "12", "45.5"}, rows[1])

	day, err := f.GetCellValue("Day of week", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Saturday", day)
}

func TestWriteTreeFormats(t *testing.T) {
	report := analysis.ComparisonReport{UserID: "alice", Rank: 2, TotalUsers: 4, Percentile: 50}

	var js bytes.Buffer
	require.NoError(t, Write(&js, JSON, report, nil))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "alice", decoded["user_id"])
	assert.EqualValues(t, 50, decoded["percentile"])

	var ym bytes.Buffer
	require.NoError(t, Write(&ym, YAML, report, nil))
	var back map[string]any
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &back))
	assert.Equal(t, 2, back["rank"])
}

func TestWrappedTablesWithoutData(t *testing.T) {
	r := analysis.WrappedReport{Period: analysis.MonthPeriod(2024, time.January, time.UTC)}
	tables := WrappedTables(r)
	require.Len(t, tables, 1)
	assert.Equal(t, [][]any{{"Period", "2024-01"}, {"Plays", 0}}, tables[0].Rows)
}

func TestPlaylistTablesLeaveUnknownYearBlank(t *testing.T) {
	r := analysis.PlaylistReport{
		Name: "Mix",
		Tracks: []analysis.PlaylistTrackStats{
			{PlaylistTrack: analysis.PlaylistTrack{Name: "One", Artist: "A", ReleaseYear: 1999}, PlayCount: 2},
			{PlaylistTrack: analysis.PlaylistTrack{Name: "Two", Artist: "B"}},
		},
	}
	tables := PlaylistTables(r)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tables[1:2]))
	assert.Equal(t, "Track,Artist,Album,Year,Plays,Last played,Moods\nOne,A,,1999,2,,\nTwo,B,,,0,,\n", buf.String())
}

func TestWriteXLSXDeduplicatesSheetNames(t *testing.T) {
	long := "Listening by hour of day, all users"
	tables := []Table{
		{Name: long, Header: []string{"Hour"}},
		{Name: long + " again", Header: []string{"Hour"}},
		{Name: "top artists", Header: []string{"Name"}},
		{Name: "Top Artists", Header: []string{"Name"}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, tables))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"Listening by hour of day, all u",
		"Listening by hour of day, a (2)",
		"top artists",
		"Top Artists (2)",
	}, f.GetSheetList())
}
