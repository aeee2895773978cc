package ports

import (
	"context"
	"errors"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
)

// ErrOracleUnavailable indicates the language model could not be reached or
// returned nothing usable.
var ErrOracleUnavailable = errors.New("oracle unavailable")

// TextGenerator sends one system+user prompt pair to a language model and
// returns its raw text reply.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// MoodClassifier maps a conversation transcript to a mood label. It never
// fails; callers get domain.DefaultMood when the oracle is unavailable.
type MoodClassifier interface {
	Classify(ctx context.Context, transcript string) domain.Mood
}

// CandidateSource proposes songs for a mood. Returned tracks carry no stream
// URL and must be verified against a Catalog.
type CandidateSource interface {
	Candidates(ctx context.Context, mood domain.Mood, count int) []domain.Track
}

// Responder produces the assistant's next chat reply.
type Responder interface {
	Reply(ctx context.Context, history []domain.Message, text string) string
}
