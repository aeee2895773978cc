package services

import (
	"context"
	"strings"
	"testing"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
)

func TestMoodAnalyzer_Classify(t *testing.T) {
	tests := []struct {
		name string
		llm  *mockLLM
		want domain.Mood
	}{
		{"plain label", &mockLLM{reply: "Happy"}, domain.MoodHappy},
		{"label with whitespace and period", &mockLLM{reply: "  Anxious.\n"}, domain.MoodAnxious},
		{"reasoning block", &mockLLM{reply: "<think>they sound tired</think>\nSad"}, domain.MoodSad},
		{"out of set label passes through", &mockLLM{reply: "Nostalgic"}, domain.Mood("Nostalgic")},
		{"oracle error", &mockLLM{err: errOracleDown}, domain.DefaultMood},
		{"empty reply", &mockLLM{reply: "   "}, domain.DefaultMood},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := NewMoodAnalyzer(tc.llm)
			got := a.Classify(context.Background(), "user: I had a great day")
			if got != tc.want {
				t.Fatalf("Classify() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMoodAnalyzer_Prompt(t *testing.T) {
	llm := &mockLLM{reply: "Relaxed"}
	NewMoodAnalyzer(llm).Classify(context.Background(), "user: just chilling")

	if len(llm.prompts) != 1 {
		t.Fatalf("expected one oracle call, got %d", len(llm.prompts))
	}
	p := llm.prompts[0]
	if !strings.Contains(p, "Happy, Sad, Angry, Anxious, Relaxed, Neutral") {
		t.Fatalf("prompt does not list moods: %q", p)
	}
	if !strings.HasSuffix(p, "Conversation:\nuser: just chilling") {
		t.Fatalf("prompt does not end with transcript: %q", p)
	}
}

func TestMoodAnalyzer_NoOracle(t *testing.T) {
	if got := NewMoodAnalyzer(nil).Classify(context.Background(), "user: hi"); got != domain.DefaultMood {
		t.Fatalf("expected default mood, got %q", got)
	}
}

func TestReplyGenerator_Reply(t *testing.T) {
	history := []domain.Message{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "Hello! How are you?"},
	}

	t.Run("oracle reply", func(t *testing.T) {
		llm := &mockLLM{reply: "<think>be kind</think> That sounds hard. What happened?"}
		got := NewReplyGenerator(llm).Reply(context.Background(), history, "work was rough")
		if got != "That sounds hard. What happened?" {
			t.Fatalf("unexpected reply %q", got)
		}
		want := "user: hi\nassistant: Hello! How are you?\nuser: work was rough\nassistant:"
		if llm.prompts[0] != want {
			t.Fatalf("prompt = %q, want %q", llm.prompts[0], want)
		}
	})

	t.Run("fallback on error", func(t *testing.T) {
		got := NewReplyGenerator(&mockLLM{err: errOracleDown}).Reply(context.Background(), history, "hmm")
		if got != fallbackReplies[1] {
			t.Fatalf("expected fallback %q, got %q", fallbackReplies[1], got)
		}
	})

	t.Run("fallback without oracle", func(t *testing.T) {
		got := NewReplyGenerator(nil).Reply(context.Background(), nil, "hello")
		if got != fallbackReplies[0] {
			t.Fatalf("expected fallback %q, got %q", fallbackReplies[0], got)
		}
	})
}
