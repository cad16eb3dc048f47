package analysis

import (
	"math"
	"testing"
	"time"
)

func TestDiversitySingleGenre(t *testing.T) {
	genres := GenreIndex{"A": {"rock"}, "B": {"rock"}}
	plays := []Play{
		play("T1", "A", "X", base, 1000),
		play("T2", "B", "Y", base.Add(time.Hour), 3000),
	}
	r := ComputeDiversity(plays, genres)
	if r.Scores.GenreDiversity != 0 {
		t.Errorf("GenreDiversity = %f, want 0", r.Scores.GenreDiversity)
	}
	if r.TopGenreConcentration != 100 {
		t.Errorf("TopGenreConcentration = %f, want 100", r.TopGenreConcentration)
	}
	if r.Scores.NicheScore != 0 || r.Scores.MainstreamScore != 100 {
		t.Errorf("niche %f mainstream %f, want 0 and 100", r.Scores.NicheScore, r.Scores.MainstreamScore)
	}
}

func TestDiversityUniform(t *testing.T) {
	genres := GenreIndex{"A": {"g1"}, "B": {"g2"}, "C": {"g3"}, "D": {"g4"}}
	var plays []Play
	for i, a := range []string{"A", "B", "C", "D"} {
		plays = append(plays, play("T", a, "X", base.Add(time.Duration(i)*time.Hour), 1000))
	}
	r := ComputeDiversity(plays, genres)
	if math.Abs(r.Scores.GenreDiversity-100) > 1e-9 {
		t.Errorf("GenreDiversity = %f, want 100", r.Scores.GenreDiversity)
	}
	if math.Abs(r.Scores.ArtistDiversity-100) > 1e-9 {
		t.Errorf("ArtistDiversity = %f, want 100", r.Scores.ArtistDiversity)
	}
	if math.Abs(r.Scores.NicheScore-50) > 1e-9 {
		t.Errorf("NicheScore = %f, want 50", r.Scores.NicheScore)
	}
	wantExploration := 4.0 / 150 * 100
	if math.Abs(r.Scores.ExplorationScore-wantExploration) > 1e-9 {
		t.Errorf("ExplorationScore = %f, want %f", r.Scores.ExplorationScore, wantExploration)
	}
	if r.DistinctGenres != 4 || r.DistinctArtists != 4 {
		t.Errorf("distinct genres %d artists %d, want 4 and 4", r.DistinctGenres, r.DistinctArtists)
	}
}

func TestDiversityNearUniformApproaches100(t *testing.T) {
	prev := 0.0
	for _, skew := range []int64{1000, 100, 10, 1} {
		got := ShannonDiversity([]int64{1000 + skew, 1000, 1000})
		if got < prev {
			t.Errorf("skew %d: diversity %f dropped below %f", skew, got, prev)
		}
		prev = got
	}
	if prev < 99.99 {
		t.Errorf("nearly equal weights gave %f, want close to 100", prev)
	}
}

func TestDiversityOverallIsWeightedSum(t *testing.T) {
	genres := GenreIndex{"A": {"rock", "indie"}, "B": {"jazz"}, "C": {"rock"}}
	plays := []Play{
		play("T1", "A", "X", base, 5000),
		play("T2", "B", "Y", base.Add(time.Hour), 2000),
		play("T3", "C", "Z", base.Add(2*time.Hour), 700),
		play("T1", "A", "X", base.Add(3*time.Hour), 5000),
	}
	s := ComputeDiversity(plays, genres).Scores
	want := 0.35*s.GenreDiversity + 0.35*s.ArtistDiversity + 0.15*s.ExplorationScore + 0.15*s.NicheScore
	if math.Abs(s.Overall-want) > 1e-9 {
		t.Errorf("Overall = %f, want %f", s.Overall, want)
	}
	for name, v := range map[string]float64{
		"genre": s.GenreDiversity, "artist": s.ArtistDiversity, "exploration": s.ExplorationScore,
		"mainstream": s.MainstreamScore, "niche": s.NicheScore, "overall": s.Overall,
	} {
		if v < 0 || v > 100 {
			t.Errorf("%s score %f out of range", name, v)
		}
	}
}

func TestDiversityNoPlays(t *testing.T) {
	r := ComputeDiversity(nil, nil)
	if r.Scores != (DiversityScores{}) {
		t.Errorf("expected zero scores, got %+v", r.Scores)
	}
	if r.Genres == nil || len(r.Genres) != 0 || len(r.Artists) != 0 {
		t.Errorf("expected empty distributions, got %v %v", r.Genres, r.Artists)
	}
}

func TestDiversityMissingGenres(t *testing.T) {
	plays := []Play{play("T1", "A", "X", base, 1000), play("T2", "B", "X", base, 1000)}
	r := ComputeDiversity(plays, NewGenreIndex(map[string]string{"A": "not json"}))
	if r.DistinctGenres != 0 || r.Scores.GenreDiversity != 0 {
		t.Errorf("expected no genre contribution, got %+v", r)
	}
	if math.Abs(r.Scores.ArtistDiversity-100) > 1e-9 {
		t.Errorf("ArtistDiversity = %f, want 100", r.Scores.ArtistDiversity)
	}
}

func TestParseGenres(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
		ok   bool
	}{
		{`["rock", "indie"]`, []string{"rock", "indie"}, true},
		{`[" shoegaze ", ""]`, []string{"shoegaze"}, true},
		{``, nil, false},
		{`null`, nil, false},
		{`{"rock": 1}`, nil, false},
		{`[1, 2]`, nil, false},
		{`["", " "]`, nil, false},
		{`rock, indie`, nil, false},
	}
	for _, c := range cases {
		got, ok := ParseGenres(c.raw)
		if ok != c.ok {
			t.Errorf("ParseGenres(%q) ok = %v, want %v", c.raw, ok, c.ok)
			continue
		}
		if len(got) != len(c.want) {
			t.Errorf("ParseGenres(%q) = %v, want %v", c.raw, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("ParseGenres(%q) = %v, want %v", c.raw, got, c.want)
			}
		}
	}
}
