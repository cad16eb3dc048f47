package analysis

import (
	"encoding/json"
	"math"
	"strings"
)

// GenreIndex maps artist id to its ordered genre tags.
type GenreIndex map[string][]string

// ParseGenres parses a stored genre field, which should be a JSON array of
// strings. Anything else (empty, null, an object, non-string elements) reports
// false so the caller can treat the artist as having no genres.
func ParseGenres(raw string) ([]string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, false
	}
	var genres []string
	if err := json.Unmarshal([]byte(raw), &genres); err != nil {
		return nil, false
	}
	out := genres[:0]
	for _, g := range genres {
		g = strings.TrimSpace(g)
		if g != "" {
			out = append(out, g)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// NewGenreIndex builds an index from raw stored genre fields, skipping
// malformed entries.
func NewGenreIndex(raw map[string]string) GenreIndex {
	idx := make(GenreIndex, len(raw))
	for artist, field := range raw {
		if genres, ok := ParseGenres(field); ok {
			idx[artist] = genres
		}
	}
	return idx
}

// Genres returns the genres for an artist, or nil if unknown.
func (g GenreIndex) Genres(artistID string) []string {
	if g == nil {
		return nil
	}
	return g[artistID]
}

// byGenre counts a play once for every genre its artist carries.
func (g GenreIndex) byGenre(p Play) []KeyLabel {
	genres := g.Genres(p.ArtistID)
	if len(genres) == 0 {
		return nil
	}
	out := make([]KeyLabel, 0, len(genres))
	seen := make(map[string]bool, len(genres))
	for _, genre := range genres {
		key := strings.ToLower(genre)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, KeyLabel{Key: key, Label: key})
	}
	return out
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
