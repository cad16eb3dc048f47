package analysis

import (
	"math"
)

const (
	// Distinct genres at which a listener counts as fully exploratory.
	explorationCalibration = 150

	weightGenre       = 0.35
	weightArtist      = 0.35
	weightExploration = 0.15
	weightNiche       = 0.15
)

type DiversityScores struct {
	Overall          float64 `json:"overall" yaml:"overall"`
	GenreDiversity   float64 `json:"genre_diversity" yaml:"genre_diversity"`
	ArtistDiversity  float64 `json:"artist_diversity" yaml:"artist_diversity"`
	ExplorationScore float64 `json:"exploration_score" yaml:"exploration_score"`
	MainstreamScore  float64 `json:"mainstream_score" yaml:"mainstream_score"`
	NicheScore       float64 `json:"niche_score" yaml:"niche_score"`
}

type DiversityReport struct {
	Scores                DiversityScores `json:"scores" yaml:"scores"`
	TopGenreConcentration float64         `json:"top_genre_concentration" yaml:"top_genre_concentration"`
	DistinctGenres        int             `json:"distinct_genres" yaml:"distinct_genres"`
	DistinctArtists       int             `json:"distinct_artists" yaml:"distinct_artists"`
	Genres                []Share         `json:"genres" yaml:"genres"`
	Artists               []Share         `json:"artists" yaml:"artists"`
}

// ComputeDiversity scores how spread out listening time is across genres and
// artists. A play adds its full duration to every genre of its artist, so the
// genre distribution can sum to more than the listening time.
func ComputeDiversity(plays []Play, genres GenreIndex) DiversityReport {
	report := DiversityReport{Genres: []Share{}, Artists: []Share{}}
	if len(plays) == 0 {
		return report
	}

	byGenre := AggregateMulti(plays, genres.byGenre)
	byArtist := Aggregate(plays, ByArtist)

	genreList := TopN(byGenre, ByTime, 0)
	artistList := TopN(byArtist, ByTime, 0)

	var genreTotal int64
	genreTotals := make([]int64, 0, len(genreList))
	for _, e := range genreList {
		genreTotal += e.TotalMs
		genreTotals = append(genreTotals, e.TotalMs)
	}
	artistTotal := totalDuration(plays)
	artistTotals := make([]int64, 0, len(artistList))
	for _, e := range artistList {
		artistTotals = append(artistTotals, e.TotalMs)
	}

	report.DistinctGenres = len(genreList)
	report.DistinctArtists = len(artistList)
	report.Genres = Shares(genreList, genreTotal)
	report.Artists = Shares(artistList, artistTotal)

	if len(genreList) > 0 {
		report.TopGenreConcentration = Percentage(float64(genreList[0].TotalMs), float64(genreTotal))
	}

	s := DiversityScores{
		GenreDiversity:   clamp(ShannonDiversity(genreTotals), 0, 100),
		ArtistDiversity:  clamp(ShannonDiversity(artistTotals), 0, 100),
		ExplorationScore: clamp(math.Min(float64(len(genreList))/explorationCalibration, 1)*100, 0, 100),
	}
	if len(genreList) > 0 {
		s.NicheScore = clamp(100-report.TopGenreConcentration*2, 0, 100)
		s.MainstreamScore = clamp(report.TopGenreConcentration*2, 0, 100)
	}
	s.Overall = OverallScore(s)
	report.Scores = s
	return report
}

// OverallScore is the fixed weighted combination of the sub-scores.
func OverallScore(s DiversityScores) float64 {
	return weightGenre*s.GenreDiversity +
		weightArtist*s.ArtistDiversity +
		weightExploration*s.ExplorationScore +
		weightNiche*s.NicheScore
}

// ShannonDiversity returns the Shannon entropy of the distribution normalized
// by ln(N) and scaled to [0,100]. It is 0 for fewer than two categories or a
// zero total.
func ShannonDiversity(totals []int64) float64 {
	var grand int64
	n := 0
	for _, t := range totals {
		if t > 0 {
			grand += t
			n++
		}
	}
	if n <= 1 || grand == 0 {
		return 0
	}
	var h float64
	for _, t := range totals {
		if t <= 0 {
			continue
		}
		p := float64(t) / float64(grand)
		h -= p * math.Log(p)
	}
	return h / math.Log(float64(n)) * 100
}
