package domain

import (
	"errors"
	"time"
)

const DefaultUserID = "default_user"

var (
	ErrSessionComplete = errors.New("domain: chat session already complete")
	ErrEmptyMessage    = errors.New("domain: empty message")
)

// ChatSession is the state of one chat. Services treat it as a value: each
// turn takes a session and returns the next one.
type ChatSession struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Messages  []Message  `json:"messages"`
	Done      bool       `json:"done"`
	Mood      Mood       `json:"mood,omitempty"`
	Tracks    []Track    `json:"tracks,omitempty"`
}

func NewChatSession(id, userID string) ChatSession {
	if userID == "" {
		userID = DefaultUserID
	}
	return ChatSession{ID: id, UserID: userID, Messages: []Message{}}
}

// Elapsed is the time since the first user message, zero before it.
func (s ChatSession) Elapsed(now time.Time) time.Duration {
	if s.StartedAt == nil {
		return 0
	}
	return now.Sub(*s.StartedAt)
}

// Remaining is the time left before the session should be analysed.
func (s ChatSession) Remaining(now time.Time, limit time.Duration) time.Duration {
	left := limit - s.Elapsed(now)
	if left < 0 {
		return 0
	}
	return left
}

// Expired reports whether the chat has run for at least limit.
func (s ChatSession) Expired(now time.Time, limit time.Duration) bool {
	return s.StartedAt != nil && s.Elapsed(now) >= limit
}

// Clone returns a copy that shares no slices with s.
func (s ChatSession) Clone() ChatSession {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	if s.Tracks != nil {
		out.Tracks = append([]Track(nil), s.Tracks...)
	}
	if s.StartedAt != nil {
		t := *s.StartedAt
		out.StartedAt = &t
	}
	return out
}
