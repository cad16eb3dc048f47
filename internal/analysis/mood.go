package analysis

import (
	"sort"
	"strings"
)

type Mood string

const (
	MoodEnergetic Mood = "energetic"
	MoodChill     Mood = "chill"
	MoodHappy     Mood = "happy"
	MoodSad       Mood = "sad"
	MoodRomantic  Mood = "romantic"
	MoodFocus     Mood = "focus"
	MoodAngry     Mood = "angry"

	// MoodVaried is reported when no genre matches any keyword.
	MoodVaried Mood = "varied"
)

type MoodKeywords struct {
	Mood     Mood
	Keywords []string
}

// Moods is the taxonomy in declaration order, which also breaks score ties.
var Moods = []MoodKeywords{
	{MoodEnergetic, []string{"workout", "gym", "power", "metal", "hardcore", "punk", "edm", "drum and bass", "dubstep", "hard rock", "trap", "hardstyle"}},
	{MoodChill, []string{"chill", "lo-fi", "lofi", "ambient", "downtempo", "trip hop", "acoustic", "bossa nova", "dream pop"}},
	{MoodHappy, []string{"pop", "dance", "disco", "funk", "happy", "summer", "reggae", "ska", "tropical"}},
	{MoodSad, []string{"sad", "emo", "blues", "melancholy", "slowcore", "ballad", "grunge", "depressive"}},
	{MoodRomantic, []string{"romantic", "love", "r&b", "rnb", "soul", "bolero", "bachata", "quiet storm"}},
	{MoodFocus, []string{"classical", "instrumental", "study", "piano", "post-rock", "minimal", "jazz", "soundtrack"}},
	{MoodAngry, []string{"death metal", "thrash", "industrial", "grindcore", "rage", "black metal", "metalcore", "nu metal"}},
}

type MoodScore struct {
	Mood  Mood `json:"mood" yaml:"mood"`
	Score int  `json:"score" yaml:"score"`
}

// MoodProfile is ranked by score, highest first.
type MoodProfile []MoodScore

// ClassifyMood scores each mood by counting (genre, keyword) pairs where the
// lower-cased genre contains the keyword. One genre can hit several keywords
// and several moods.
func ClassifyMood(genres []string) MoodProfile {
	scores := make([]int, len(Moods))
	for _, g := range genres {
		g = strings.ToLower(g)
		for i, m := range Moods {
			for _, kw := range m.Keywords {
				if strings.Contains(g, kw) {
					scores[i]++
				}
			}
		}
	}

	var profile MoodProfile
	for i, m := range Moods {
		if scores[i] > 0 {
			profile = append(profile, MoodScore{Mood: m.Mood, Score: scores[i]})
		}
	}
	if len(profile) == 0 {
		return MoodProfile{{Mood: MoodVaried, Score: 0}}
	}
	sort.SliceStable(profile, func(i, j int) bool { return profile[i].Score > profile[j].Score })
	return profile
}

func (p MoodProfile) Primary() Mood {
	if len(p) == 0 {
		return MoodVaried
	}
	return p[0].Mood
}

// Tags returns up to n moods with a positive score.
func (p MoodProfile) Tags(n int) []string {
	out := []string{}
	for _, s := range p {
		if s.Score <= 0 || len(out) == n {
			break
		}
		out = append(out, string(s.Mood))
	}
	return out
}
