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

const replySystemPrompt = `You are Moodify, an empathetic assistant chatting with someone to understand how they feel.
Reply in one to three short sentences. Be warm and curious, ask gentle follow-up questions, and never give medical advice.`

// fallbackReplies are used in rotation when the oracle cannot answer.
var fallbackReplies = []string{
	"Tell me more about how you're feeling.",
	"I see. What else is on your mind?",
	"Interesting. How does that make you feel?",
	"I'm listening. Please continue.",
	"That's good to know. What else would you like to share?",
}

// ReplyGenerator produces the assistant's chat replies.
type ReplyGenerator struct {
	llm ports.TextGenerator
}

var _ ports.Responder = (*ReplyGenerator)(nil)

func NewReplyGenerator(llm ports.TextGenerator) *ReplyGenerator {
	return &ReplyGenerator{llm: llm}
}

// Reply answers the latest user text. history excludes text.
func (g *ReplyGenerator) Reply(ctx context.Context, history []domain.Message, text string) string {
	fallback := fallbackReplies[len(history)/2%len(fallbackReplies)]
	if g.llm == nil {
		return fallback
	}
	out, err := g.llm.Generate(ctx, replySystemPrompt, replyPrompt(history, text))
	metrics.RecordOracle("reply", err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("component", "reply").Msg("reply generation failed, using fallback")
		return fallback
	}
	out = strings.TrimSpace(thinkBlock.ReplaceAllString(out, ""))
	if out == "" {
		return fallback
	}
	return out
}

func replyPrompt(history []domain.Message, text string) string {
	if len(history) == 0 {
		return fmt.Sprintf("user: %s\nassistant:", text)
	}
	return fmt.Sprintf("%s\nuser: %s\nassistant:", domain.Transcript(history), text)
}
