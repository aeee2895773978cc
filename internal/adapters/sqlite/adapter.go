// Package sqlite provides a SQLite-backed implementation of the history
// repository port.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/moodify/internal/core/domain"
	"github.com/ewilliams-labs/moodify/internal/core/ports"
	"github.com/ewilliams-labs/moodify/internal/logging"
)

const (
	DefaultHistoryLimit      = 5
	DefaultConversationLimit = 1
)

// Adapter implements the history repository port for SQLite
type Adapter struct {
	db *sql.DB
}

var _ ports.HistoryRepository = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// one connection keeps ":memory:" databases shared and serialises writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}

	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// SaveConversation appends a finished conversation. A second conversation
// for an already stored session is dropped.
func (a *Adapter) SaveConversation(ctx context.Context, c domain.Conversation) error {
	msgs := c.Messages
	if msgs == nil {
		msgs = []domain.Message{}
	}
	payload, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}
	res, err := a.db.ExecContext(ctx, `
		INSERT INTO conversations (id, session_id, user_id, messages, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) WHERE session_id <> '' DO NOTHING
	`, c.ID, c.SessionID, c.UserID, string(payload), timestamp(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		logging.Ctx(ctx).Info().
			Str("component", "sqlite").
			Str("session", c.SessionID).
			Str("conversation", c.ID).
			Msg("conversation already stored for session, skipping")
	}
	return nil
}

// SaveRecommendation appends a recommendation and its tracks in one
// transaction. A second recommendation for an already stored session is
// dropped.
func (a *Adapter) SaveRecommendation(ctx context.Context, r domain.Recommendation) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO recommendations (id, session_id, user_id, mood, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) WHERE session_id <> '' DO NOTHING
	`, r.ID, r.SessionID, r.UserID, string(r.Mood), timestamp(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save recommendation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		logging.Ctx(ctx).Info().
			Str("component", "sqlite").
			Str("session", r.SessionID).
			Str("recommendation", r.ID).
			Msg("recommendation already stored for session, skipping")
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recommendation_tracks (
			recommendation_id, position, catalog_id, title, artist, album, language, year,
			image_url, page_url, stream_url, quality, duration_seconds, mood_match
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare track insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range r.Tracks {
		if _, err := stmt.ExecContext(ctx,
			r.ID, i, t.ID, t.Title, t.Artist, t.Album, t.Language, t.Year,
			t.ImageURL, t.PageURL, t.StreamURL, t.Quality, t.DurationSeconds, t.MoodMatch,
		); err != nil {
			return fmt.Errorf("failed to save track %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

// GetUserHistory returns up to limit recommendations for userID, newest
// first. A non-positive limit selects DefaultHistoryLimit.
func (a *Adapter) GetUserHistory(ctx context.Context, userID string, limit int) ([]domain.Recommendation, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, session_id, user_id, mood, created_at
		FROM recommendations
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	out := []domain.Recommendation{}
	for rows.Next() {
		var r domain.Recommendation
		var mood string
		var created int64
		if err := rows.Scan(&r.ID, &r.SessionID, &r.UserID, &mood, &created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		r.Mood = domain.Mood(mood)
		r.CreatedAt = fromTimestamp(created)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	rows.Close()

	for i := range out {
		tracks, err := a.loadTracks(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Tracks = tracks
	}
	return out, nil
}

func (a *Adapter) loadTracks(ctx context.Context, recommendationID string) ([]domain.Track, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT catalog_id, title, artist, album, language, year, image_url, page_url,
			stream_url, IFNULL(quality, ''), duration_seconds, mood_match
		FROM recommendation_tracks
		WHERE recommendation_id = ?
		ORDER BY position ASC
	`, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendation tracks: %w", err)
	}
	defer rows.Close()

	tracks := []domain.Track{}
	for rows.Next() {
		var t domain.Track
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Artist, &t.Album, &t.Language, &t.Year, &t.ImageURL, &t.PageURL,
			&t.StreamURL, &t.Quality, &t.DurationSeconds, &t.MoodMatch,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation track: %w", err)
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommendation tracks: %w", err)
	}
	return tracks, nil
}

// GetConversationHistory returns up to limit conversations for userID,
// newest first. A non-positive limit selects DefaultConversationLimit.
func (a *Adapter) GetConversationHistory(ctx context.Context, userID string, limit int) ([]domain.Conversation, error) {
	if limit <= 0 {
		limit = DefaultConversationLimit
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, session_id, user_id, messages, created_at
		FROM conversations
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversations: %w", err)
	}
	defer rows.Close()

	out := []domain.Conversation{}
	for rows.Next() {
		var c domain.Conversation
		var payload string
		var created int64
		if err := rows.Scan(&c.ID, &c.SessionID, &c.UserID, &payload, &created); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &c.Messages); err != nil {
			return nil, fmt.Errorf("failed to decode messages for %s: %w", c.ID, err)
		}
		c.CreatedAt = fromTimestamp(created)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}
	return out, nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		messages TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, created_at);

	CREATE TABLE IF NOT EXISTS recommendations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		mood TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_recommendations_user ON recommendations(user_id, created_at);

	CREATE TABLE IF NOT EXISTS recommendation_tracks (
		recommendation_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		catalog_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		album TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT '',
		year TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		page_url TEXT NOT NULL DEFAULT '',
		stream_url TEXT NOT NULL,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		mood_match TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (recommendation_id, position),
		FOREIGN KEY(recommendation_id) REFERENCES recommendations(id)
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	alters := []string{
		"ALTER TABLE recommendation_tracks ADD COLUMN quality TEXT",
		"ALTER TABLE conversations ADD COLUMN session_id TEXT NOT NULL DEFAULT ''",
		"ALTER TABLE recommendations ADD COLUMN session_id TEXT NOT NULL DEFAULT ''",
	}
	for _, stmt := range alters {
		if _, err := a.db.Exec(stmt); err != nil {
			if !isDuplicateColumnError(err) {
				return err
			}
		}
	}

	// one stored conversation and one recommendation per chat session;
	// direct recommendations carry no session and are not constrained
	indexes := `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_conversations_session ON conversations(session_id) WHERE session_id <> '';
	CREATE UNIQUE INDEX IF NOT EXISTS idx_recommendations_session ON recommendations(session_id) WHERE session_id <> '';
	`
	if _, err := a.db.Exec(indexes); err != nil {
		return err
	}

	return nil
}

func timestamp(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().UnixNano()
}

func fromTimestamp(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}
