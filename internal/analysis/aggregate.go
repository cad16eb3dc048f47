package analysis

import (
	"sort"
)

// KeyFunc extracts the grouping key and display label for a play.
// An empty key drops the play from the aggregate.
type KeyFunc func(p Play) (key, label string)

// MultiKeyFunc is like KeyFunc but lets one play count towards several keys.
type MultiKeyFunc func(p Play) []KeyLabel

type KeyLabel struct {
	Key   string
	Label string
}

// Metric selects what TopN ranks by.
type Metric int

const (
	ByTime Metric = iota
	ByCount
)

func ByTrack(p Play) (string, string) {
	if p.Artist == "" {
		return p.TrackID, p.Track
	}
	return p.TrackID, p.Track + " - " + p.Artist
}

func ByArtist(p Play) (string, string) { return p.ArtistID, p.Artist }

func ByAlbum(p Play) (string, string) {
	if p.Album == "" {
		return "", ""
	}
	return p.AlbumID, p.Album
}

func ByUser(p Play) (string, string) { return p.UserID, p.UserID }

// Aggregate groups plays by key, summing count and duration and tracking the
// first and last play time.
func Aggregate(plays []Play, keyFn KeyFunc) map[string]*Entity {
	return AggregateMulti(plays, func(p Play) []KeyLabel {
		key, label := keyFn(p)
		if key == "" {
			return nil
		}
		return []KeyLabel{{key, label}}
	})
}

func AggregateMulti(plays []Play, keyFn MultiKeyFunc) map[string]*Entity {
	out := make(map[string]*Entity)
	for _, p := range plays {
		for _, kl := range keyFn(p) {
			e, ok := out[kl.Key]
			if !ok {
				e = &Entity{Key: kl.Key, Label: kl.Label, FirstSeen: p.PlayedAt, LastSeen: p.PlayedAt}
				out[kl.Key] = e
			}
			e.PlayCount++
			e.TotalMs += p.DurationMs
			if p.PlayedAt.Before(e.FirstSeen) {
				e.FirstSeen = p.PlayedAt
			}
			if p.PlayedAt.After(e.LastSeen) {
				e.LastSeen = p.PlayedAt
			}
		}
	}
	return out
}

// Entities flattens an aggregate in first-seen order, falling back to key
// order. For time-ordered input this is insertion order.
func Entities(m map[string]*Entity) []Entity {
	out := make([]Entity, 0, len(m))
	for _, e := range m {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FirstSeen.Equal(out[j].FirstSeen) {
			return out[i].FirstSeen.Before(out[j].FirstSeen)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// TopN returns the n largest entities by metric, descending. Ties are not
// broken by the metric: equal entities keep first-seen order (see Entities).
// n <= 0 returns everything.
func TopN(m map[string]*Entity, metric Metric, n int) []Entity {
	out := Entities(m)
	sort.SliceStable(out, func(i, j int) bool {
		if metric == ByCount {
			return out[i].PlayCount > out[j].PlayCount
		}
		return out[i].TotalMs > out[j].TotalMs
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Percentage is value/total*100, or 0 when total is 0.
func Percentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return value / total * 100
}

// Shares converts entities to percentages of total listening time.
func Shares(entities []Entity, totalMs int64) []Share {
	out := make([]Share, 0, len(entities))
	for _, e := range entities {
		out = append(out, Share{
			Name:       e.Label,
			TotalMs:    e.TotalMs,
			Percentage: roundTo(Percentage(float64(e.TotalMs), float64(totalMs)), 1),
		})
	}
	return out
}

func totalDuration(plays []Play) int64 {
	var total int64
	for _, p := range plays {
		total += p.DurationMs
	}
	return total
}
