package services

import (
	"context"
	"errors"
	"sync"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
)

// --- Mocks ---

// mockCatalog serves canned results per query and records every call.
type mockCatalog struct {
	results     map[string][]domain.Track
	errs        map[string]error
	moodResults []domain.Track

	queries   []string
	limits    []int
	moodCalls int
}

func (m *mockCatalog) Search(_ context.Context, query string, limit int) ([]domain.Track, error) {
	m.queries = append(m.queries, query)
	m.limits = append(m.limits, limit)
	if err := m.errs[query]; err != nil {
		return nil, err
	}
	r := m.results[query]
	if len(r) > limit {
		r = r[:limit]
	}
	return append([]domain.Track(nil), r...), nil
}

func (m *mockCatalog) SearchMood(_ context.Context, _ domain.Mood, limit int) []domain.Track {
	m.moodCalls++
	r := m.moodResults
	if len(r) > limit {
		r = r[:limit]
	}
	return append([]domain.Track(nil), r...)
}

func (m *mockCatalog) queried(q string) bool {
	for _, got := range m.queries {
		if got == q {
			return true
		}
	}
	return false
}

// mockCandidates returns a fixed candidate list.
type mockCandidates struct {
	tracks    []domain.Track
	requested int
}

func (m *mockCandidates) Candidates(_ context.Context, _ domain.Mood, n int) []domain.Track {
	m.requested = n
	return m.tracks
}

// mockLLM returns a canned reply or error and records prompts.
type mockLLM struct {
	reply string
	err   error

	systems []string
	prompts []string
}

func (m *mockLLM) Generate(_ context.Context, system, prompt string) (string, error) {
	m.systems = append(m.systems, system)
	m.prompts = append(m.prompts, prompt)
	return m.reply, m.err
}

var errOracleDown = errors.New("oracle down")

// mockRecorder captures submitted records.
type mockRecorder struct {
	mu              sync.Mutex
	conversations   []domain.Conversation
	recommendations []domain.Recommendation
}

func (m *mockRecorder) RecordConversation(c domain.Conversation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations = append(m.conversations, c)
}

func (m *mockRecorder) RecordRecommendation(r domain.Recommendation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recommendations = append(m.recommendations, r)
}

func playable(title, artist string) domain.Track {
	return domain.Track{Title: title, Artist: artist, StreamURL: "https://cdn.example/" + title + ".mp4"}
}

func candidate(title, artist, why string) domain.Track {
	return domain.Track{Title: title, Artist: artist, MoodMatch: why}
}
