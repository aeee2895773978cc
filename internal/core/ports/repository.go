package ports

import (
	"context"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
)

// HistoryRepository persists finished conversations and recommendations.
// Records are append-only.
type HistoryRepository interface {
	SaveConversation(ctx context.Context, c domain.Conversation) error
	SaveRecommendation(ctx context.Context, r domain.Recommendation) error
	// GetUserHistory returns the most recent recommendations, newest first.
	GetUserHistory(ctx context.Context, userID string, limit int) ([]domain.Recommendation, error)
	// GetConversationHistory returns the most recent conversations, newest first.
	GetConversationHistory(ctx context.Context, userID string, limit int) ([]domain.Conversation, error)
}

// Recorder accepts records for asynchronous persistence. Submissions never
// block and failures are not reported to the caller.
type Recorder interface {
	RecordConversation(c domain.Conversation)
	RecordRecommendation(r domain.Recommendation)
}
