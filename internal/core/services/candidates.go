package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
	"github.com/ewilliams-labs/moodify/internal/core/ports"
	"github.com/ewilliams-labs/moodify/internal/logging"
	"github.com/ewilliams-labs/moodify/internal/metrics"
)

const candidateSystemPrompt = `You are a music expert specialising in Indian music available on JioSaavn.
Respond ONLY with a JSON array. Do not add explanations, markdown or any other text.`

// maxCandidates bounds one request so the reply fits the oracle's output
// token limit.
const maxCandidates = 24

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// CandidateGenerator asks a language model for song suggestions matching a
// mood. Results are unverified and carry no stream URL.
type CandidateGenerator struct {
	llm ports.TextGenerator
}

var _ ports.CandidateSource = (*CandidateGenerator)(nil)

func NewCandidateGenerator(llm ports.TextGenerator) *CandidateGenerator {
	return &CandidateGenerator{llm: llm}
}

// Candidates returns up to n suggestions, never more than maxCandidates.
// Any oracle or decoding failure yields an empty list.
func (g *CandidateGenerator) Candidates(ctx context.Context, mood domain.Mood, n int) []domain.Track {
	if g.llm == nil || n <= 0 {
		return nil
	}
	if n > maxCandidates {
		n = maxCandidates
	}
	log := logging.Ctx(ctx).With().Str("component", "candidates").Str("mood", mood.String()).Logger()

	raw, err := g.llm.Generate(ctx, candidateSystemPrompt, candidatePrompt(mood, n))
	metrics.RecordOracle("candidates", err)
	if err != nil {
		log.Warn().Err(err).Msg("candidate generation failed")
		return nil
	}

	wires, err := decodeCandidates(raw)
	if err != nil {
		log.Warn().Err(err).Int("raw_len", len(raw)).Msg("candidate payload not decodable")
		return nil
	}

	out := make([]domain.Track, 0, len(wires))
	for _, w := range wires {
		t := w.toDomain()
		if t.Title == "" || t.Artist == "" {
			continue
		}
		out = append(out, t)
		if len(out) == n {
			break
		}
	}
	log.Debug().Int("candidates", len(out)).Msg("candidates generated")
	return out
}

func candidatePrompt(mood domain.Mood, n int) string {
	return fmt.Sprintf(`Suggest %d popular Indian songs (Bollywood, Hindi, Tamil, Telugu, Punjabi or other regional music) for someone who is feeling %s.
Only suggest songs that are likely to be available on JioSaavn.

For each song include:
- title: the exact song title
- artist: the primary artist or singer
- language: the language of the song
- album: the album or film name
- year: the release year
- mood_match: one short sentence on why the song fits the %s mood

Respond ONLY with the JSON array in this exact format:
[{"title": "...", "artist": "...", "language": "...", "album": "...", "year": "...", "mood_match": "..."}]`, n, mood, mood)
}

type candidateWire struct {
	Title     string     `json:"title"`
	Artist    string     `json:"artist"`
	Language  string     `json:"language"`
	Album     string     `json:"album"`
	Year      looseValue `json:"year"`
	MoodMatch string     `json:"mood_match"`
}

func (w candidateWire) toDomain() domain.Track {
	return domain.Track{
		Title:     strings.TrimSpace(w.Title),
		Artist:    strings.TrimSpace(w.Artist),
		Language:  strings.TrimSpace(w.Language),
		Album:     strings.TrimSpace(w.Album),
		Year:      string(w.Year),
		MoodMatch: strings.TrimSpace(w.MoodMatch),
	}
}

// looseValue accepts a JSON string or number.
type looseValue string

func (v *looseValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = looseValue(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*v = looseValue(n.String())
		return nil
	}
	*v = ""
	return nil
}

// decodeCandidates tries a strict decode of the whole reply, then one retry
// on the outermost bracketed region. Reasoning blocks and code fences are
// removed first.
func decodeCandidates(raw string) ([]candidateWire, error) {
	text := cleanReply(raw)

	var out []candidateWire
	strictErr := json.Unmarshal([]byte(text), &out)
	if strictErr == nil {
		return out, nil
	}

	region, ok := bracketRegion(text)
	if !ok {
		return nil, fmt.Errorf("candidates: no array in reply: %w", strictErr)
	}
	out = nil
	if err := json.Unmarshal([]byte(region), &out); err != nil {
		return nil, fmt.Errorf("candidates: decode bracketed region: %w", err)
	}
	return out, nil
}

func cleanReply(raw string) string {
	s := thinkBlock.ReplaceAllString(raw, "")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// bracketRegion returns the text from the first '[' to the last ']'.
func bracketRegion(s string) (string, bool) {
	i := strings.Index(s, "[")
	j := strings.LastIndex(s, "]")
	if i < 0 || j <= i {
		return "", false
	}
	return s[i : j+1], true
}
