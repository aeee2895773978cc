package domain

import (
	"errors"
	"time"
)

var (
	ErrDuplicateTrack = errors.New("domain: duplicate track")
	ErrUnplayable     = errors.New("domain: track has no stream url")
)

// Recommendation is a resolved set of playable tracks for a mood. Once
// persisted it is never modified. SessionID links it to the chat that
// produced it and is empty for direct requests.
type Recommendation struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	UserID    string    `json:"user_id"`
	Mood      Mood      `json:"mood"`
	Tracks    []Track   `json:"tracks"`
	CreatedAt time.Time `json:"created_at"`
}

func NewRecommendation(id, userID string, mood Mood, createdAt time.Time) (*Recommendation, error) {
	if id == "" || userID == "" {
		return nil, errors.New("domain: invalid argument")
	}
	return &Recommendation{
		ID:        id,
		UserID:    userID,
		Mood:      mood,
		Tracks:    []Track{},
		CreatedAt: createdAt,
	}, nil
}

// AddTrack appends a playable track whose key is not yet present.
func (r *Recommendation) AddTrack(t Track) error {
	if !t.Playable() {
		return ErrUnplayable
	}
	if r.Contains(t.Key()) {
		return ErrDuplicateTrack
	}
	r.Tracks = append(r.Tracks, t)
	return nil
}

// Contains reports whether a track with the given key was already added.
func (r *Recommendation) Contains(key string) bool {
	for _, ex := range r.Tracks {
		if ex.Key() == key {
			return true
		}
	}
	return false
}

func (r *Recommendation) Len() int { return len(r.Tracks) }
