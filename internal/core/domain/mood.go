package domain

import "strings"

// Mood is the label produced by the mood classifier. The six constants below
// are the recognised set; any other value is carried through unchanged.
type Mood string

const (
	MoodHappy   Mood = "Happy"
	MoodSad     Mood = "Sad"
	MoodAngry   Mood = "Angry"
	MoodAnxious Mood = "Anxious"
	MoodRelaxed Mood = "Relaxed"
	MoodNeutral Mood = "Neutral"

	DefaultMood = MoodNeutral
)

// GenericQuery is the last catalog phrase tried when every mood-specific
// phrase came up short.
const GenericQuery = "popular bollywood songs"

// Moods lists the recognised moods in display order.
var Moods = []Mood{MoodHappy, MoodSad, MoodAngry, MoodAnxious, MoodRelaxed, MoodNeutral}

var moodColors = map[Mood]string{
	MoodHappy:   "#4CAF50",
	MoodSad:     "#2196F3",
	MoodAngry:   "#F44336",
	MoodAnxious: "#FF9800",
	MoodRelaxed: "#009688",
	MoodNeutral: "#9E9E9E",
}

var supplementQueries = map[Mood][]string{
	MoodHappy:   {"popular happy songs indian", "upbeat bollywood songs", "cheerful hindi songs"},
	MoodSad:     {"emotional bollywood songs", "sad hindi songs", "melancholy indian music"},
	MoodAngry:   {"intense indian songs", "powerful bollywood tracks", "aggressive hindi music"},
	MoodAnxious: {"calming indian songs", "soothing bollywood music", "peaceful hindi tracks"},
	MoodRelaxed: {"chill bollywood songs", "relaxing indian music", "peaceful hindi songs"},
	MoodNeutral: {"popular bollywood hits", "trending indian songs", "classic hindi tracks"},
}

var directQueries = map[Mood][]string{
	MoodHappy:   {"popular happy songs indian", "upbeat bollywood hits", "cheerful hindi songs", "feel good tamil songs"},
	MoodSad:     {"emotional bollywood songs", "sad hindi hits", "melancholy indian music", "heartbreak songs tamil"},
	MoodAngry:   {"powerful bollywood tracks", "intense hindi songs", "aggressive indian music", "rap hindi songs"},
	MoodAnxious: {"calming indian songs", "soothing bollywood music", "peaceful hindi tracks", "meditation music india"},
	MoodRelaxed: {"chill bollywood songs", "relaxing indian music", "peaceful hindi songs", "soft tamil melodies"},
	MoodNeutral: {"trending bollywood songs", "top hindi hits", "popular indian songs 2024", "viral indian music"},
}

var catalogMoodQueries = map[Mood][]string{
	MoodHappy:   {"upbeat happy songs", "feel good indian songs", "cheerful bollywood hits"},
	MoodSad:     {"sad emotional songs", "heartbreak bollywood", "melancholy hindi songs"},
	MoodAngry:   {"powerful indian songs", "intense hindi tracks", "energetic bollywood"},
	MoodAnxious: {"calming indian songs", "peaceful hindi music", "soothing bollywood"},
	MoodRelaxed: {"chill relaxing songs", "peaceful indian classical", "soft bollywood melodies"},
	MoodNeutral: {"popular hindi songs", "trending indian music", "top bollywood hits"},
}

// ParseMood trims the raw classifier output. Unrecognised labels are kept
// verbatim; an empty reply maps to DefaultMood.
func ParseMood(raw string) Mood {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DefaultMood
	}
	return Mood(s)
}

// Known reports whether m is one of the recognised moods.
func (m Mood) Known() bool {
	_, ok := moodColors[m]
	return ok
}

// Color is the display colour for the mood badge.
func (m Mood) Color() string {
	if c, ok := moodColors[m]; ok {
		return c
	}
	return moodColors[DefaultMood]
}

func (m Mood) String() string { return string(m) }

// SupplementQueries returns the phrases used to top up AI-sourced results.
func SupplementQueries(m Mood) []string {
	return lookup(supplementQueries, m, []string{"popular indian songs"})
}

// DirectQueries returns the phrases used when no AI candidates are available.
func DirectQueries(m Mood) []string {
	return lookup(directQueries, m, []string{GenericQuery})
}

// CatalogMoodQueries returns the phrases behind the catalog's mood search.
// Unknown moods search for the label itself.
func CatalogMoodQueries(m Mood) []string {
	return lookup(catalogMoodQueries, m, []string{strings.ToLower(string(m)) + " songs"})
}

func lookup(table map[Mood][]string, m Mood, fallback []string) []string {
	src, ok := table[m]
	if !ok {
		src = fallback
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
