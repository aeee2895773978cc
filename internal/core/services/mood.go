package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
	"github.com/ewilliams-labs/moodify/internal/core/ports"
	"github.com/ewilliams-labs/moodify/internal/logging"
	"github.com/ewilliams-labs/moodify/internal/metrics"
)

const moodSystemPrompt = "You are an empathetic assistant that identifies a person's overall mood from a conversation."

// MoodAnalyzer classifies a conversation transcript into a mood label.
type MoodAnalyzer struct {
	llm ports.TextGenerator
}

var _ ports.MoodClassifier = (*MoodAnalyzer)(nil)

func NewMoodAnalyzer(llm ports.TextGenerator) *MoodAnalyzer {
	return &MoodAnalyzer{llm: llm}
}

// Classify returns the oracle's label verbatim, or domain.DefaultMood when
// the oracle is missing, failing or silent.
func (a *MoodAnalyzer) Classify(ctx context.Context, transcript string) domain.Mood {
	if a.llm == nil || strings.TrimSpace(transcript) == "" {
		return domain.DefaultMood
	}
	reply, err := a.llm.Generate(ctx, moodSystemPrompt, moodPrompt(transcript))
	metrics.RecordOracle("mood", err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("component", "mood").Msg("mood classification failed, using default")
		return domain.DefaultMood
	}
	mood := domain.ParseMood(firstLine(reply))
	if !mood.Known() {
		logging.Ctx(ctx).Info().Str("component", "mood").Str("mood", mood.String()).Msg("classifier returned unrecognised mood")
	}
	metrics.MoodsClassified.WithLabelValues(moodLabel(mood)).Inc()
	return mood
}

func moodPrompt(transcript string) string {
	names := make([]string, len(domain.Moods))
	for i, m := range domain.Moods {
		names[i] = m.String()
	}
	return fmt.Sprintf(`Analyze the following conversation and determine the user's overall mood.
Respond with ONLY ONE of these moods: %s.
Do not add any other words or punctuation.

Conversation:
%s`, strings.Join(names, ", "), transcript)
}

// firstLine drops reasoning blocks and keeps the first non-empty line.
func firstLine(reply string) string {
	reply = thinkBlock.ReplaceAllString(reply, "")
	for _, line := range strings.Split(reply, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return strings.Trim(s, ".\"'* ")
		}
	}
	return ""
}

// moodLabel bounds metric cardinality for free-form labels.
func moodLabel(m domain.Mood) string {
	if m.Known() {
		return m.String()
	}
	return "other"
}
