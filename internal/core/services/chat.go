package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
	"github.com/ewilliams-labs/moodify/internal/core/ports"
	"github.com/ewilliams-labs/moodify/internal/logging"
)

const (
	DefaultChatDuration        = 60 * time.Second
	DefaultRecommendationCount = 6
)

// TurnResult describes the outcome of one chat turn.
type TurnResult struct {
	Reply     string
	Analysed  bool
	Mood      domain.Mood
	Tracks    []domain.Track
	Remaining time.Duration
}

// Chat drives a timed conversation and, once time is up, classifies the
// mood and resolves recommendations.
type Chat struct {
	responder   ports.Responder
	classifier  ports.MoodClassifier
	recommender ports.Recommender
	recorder    ports.Recorder

	duration    time.Duration
	count       int
	defaultUser string
	now         func() time.Time
}

type ChatOption func(*Chat)

func WithDuration(d time.Duration) ChatOption {
	return func(c *Chat) {
		if d > 0 {
			c.duration = d
		}
	}
}

func WithRecommendationCount(n int) ChatOption {
	return func(c *Chat) {
		if n > 0 {
			c.count = n
		}
	}
}

// WithDefaultUser sets the user id given to sessions that arrive without one.
func WithDefaultUser(id string) ChatOption {
	return func(c *Chat) {
		if id = strings.TrimSpace(id); id != "" {
			c.defaultUser = id
		}
	}
}

func WithClock(now func() time.Time) ChatOption {
	return func(c *Chat) { c.now = now }
}

// NewChat constructs a Chat. recorder may be nil to skip persistence.
func NewChat(responder ports.Responder, classifier ports.MoodClassifier, recommender ports.Recommender, recorder ports.Recorder, opts ...ChatOption) *Chat {
	c := &Chat{
		responder:   responder,
		classifier:  classifier,
		recommender: recommender,
		recorder:    recorder,
		duration:    DefaultChatDuration,
		count:       DefaultRecommendationCount,
		defaultUser: domain.DefaultUserID,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Chat) Duration() time.Duration { return c.duration }

// NewSession starts an empty session for userID, falling back to the
// configured default user.
func (c *Chat) NewSession(userID string) domain.ChatSession {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = c.defaultUser
	}
	return domain.NewChatSession(uuid.NewString(), userID)
}

// ProcessTurn appends the user's text and the assistant's reply to a copy of
// session and returns it. When the chat has run for its full duration the
// returned session is analysed and marked done.
func (c *Chat) ProcessTurn(ctx context.Context, session domain.ChatSession, text string) (domain.ChatSession, TurnResult, error) {
	if session.Done {
		return session, TurnResult{}, domain.ErrSessionComplete
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return session, TurnResult{}, domain.ErrEmptyMessage
	}

	next := session.Clone()
	if next.UserID == "" {
		next.UserID = c.defaultUser
	}
	now := c.now()
	if next.StartedAt == nil {
		next.StartedAt = &now
	}

	reply := c.responder.Reply(ctx, next.Messages, text)
	next.Messages = append(next.Messages,
		domain.Message{Role: domain.RoleUser, Content: text},
		domain.Message{Role: domain.RoleAssistant, Content: reply},
	)

	res := TurnResult{Reply: reply}
	if next.Expired(now, c.duration) {
		next = c.analyse(ctx, next, now)
		res.Analysed = true
		res.Mood = next.Mood
		res.Tracks = next.Tracks
	}
	res.Remaining = next.Remaining(now, c.duration)
	return next, res, nil
}

// Finish analyses the session immediately, regardless of elapsed time.
func (c *Chat) Finish(ctx context.Context, session domain.ChatSession) (domain.ChatSession, TurnResult, error) {
	if session.Done {
		return session, TurnResult{}, domain.ErrSessionComplete
	}
	if len(session.Messages) == 0 {
		return session, TurnResult{}, domain.ErrEmptyMessage
	}
	next := c.analyse(ctx, session.Clone(), c.now())
	return next, TurnResult{Analysed: true, Mood: next.Mood, Tracks: next.Tracks}, nil
}

func (c *Chat) analyse(ctx context.Context, s domain.ChatSession, now time.Time) domain.ChatSession {
	mood := c.classifier.Classify(ctx, domain.Transcript(s.Messages))
	tracks := c.recommender.Resolve(ctx, mood, c.count)

	s.Mood = mood
	s.Tracks = tracks
	s.Done = true

	logging.Ctx(ctx).Info().
		Str("component", "chat").
		Str("session", s.ID).
		Str("user", s.UserID).
		Str("mood", mood.String()).
		Int("tracks", len(tracks)).
		Msg("chat session analysed")

	if c.recorder != nil {
		c.recorder.RecordConversation(domain.Conversation{
			ID:        uuid.NewString(),
			SessionID: s.ID,
			UserID:    s.UserID,
			Messages:  append([]domain.Message(nil), s.Messages...),
			CreatedAt: now,
		})
		c.recorder.RecordRecommendation(domain.Recommendation{
			ID:        uuid.NewString(),
			SessionID: s.ID,
			UserID:    s.UserID,
			Mood:      mood,
			Tracks:    append([]domain.Track{}, tracks...),
			CreatedAt: now,
		})
	}
	return s
}
