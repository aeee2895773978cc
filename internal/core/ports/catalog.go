package ports

import (
	"context"
	"errors"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
)

// ErrCatalogUnavailable indicates the catalog search failed for a query.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Catalog resolves free-text queries to tracks.
type Catalog interface {
	// Search issues one query and returns up to limit tracks in provider
	// order. Tracks may lack a stream URL; callers filter.
	Search(ctx context.Context, query string, limit int) ([]domain.Track, error)
	// SearchMood runs the catalog's own mood phrases followed by a generic
	// query and returns up to limit playable tracks.
	SearchMood(ctx context.Context, mood domain.Mood, limit int) []domain.Track
}

// Recommender resolves a mood into playable tracks.
type Recommender interface {
	Resolve(ctx context.Context, mood domain.Mood, count int) []domain.Track
}
