package saavn

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
	"github.com/ewilliams-labs/moodify/internal/core/ports"
	"github.com/ewilliams-labs/moodify/internal/logging"
)

// Search issues one search request and returns up to limit tracks in
// provider order. Results without a stream URL get one detail fetch; a
// failed detail fetch leaves StreamURL empty.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	if limit <= 0 {
		return []domain.Track{}, nil
	}

	searchURL, err := url.Parse(c.baseURL + "/search/songs")
	if err != nil {
		return []domain.Track{}, fmt.Errorf("saavn adapter: invalid search url: %w", err)
	}
	q := searchURL.Query()
	q.Set("query", query)
	q.Set("limit", strconv.Itoa(limit))
	searchURL.RawQuery = q.Encode()

	var body searchResponse
	if err := c.getJSON(ctx, "search", searchURL.String(), &body); err != nil {
		return []domain.Track{}, fmt.Errorf("saavn adapter: search %q: %w: %w", query, ports.ErrCatalogUnavailable, err)
	}
	if !body.Success {
		return []domain.Track{}, fmt.Errorf("saavn adapter: search %q: %w: unsuccessful response", query, ports.ErrCatalogUnavailable)
	}

	results := body.Data.Results
	if len(results) > limit {
		results = results[:limit]
	}

	log := logging.Ctx(ctx).With().Str("component", "saavn").Logger()
	tracks := make([]domain.Track, 0, len(results))
	for _, s := range results {
		t := mapSongToDomain(s)
		if t.StreamURL == "" && s.ID != "" {
			stream, quality, err := c.fetchStream(ctx, s.ID)
			if err != nil {
				log.Debug().Err(err).Str("song_id", s.ID).Msg("detail fetch failed")
			}
			t.StreamURL, t.Quality = stream, quality
		}
		tracks = append(tracks, t)
	}
	log.Debug().Str("query", query).Int("results", len(tracks)).Msg("catalog search")
	return tracks, nil
}

// fetchStream looks up the download variants for one song.
func (c *Client) fetchStream(ctx context.Context, id string) (string, string, error) {
	var body detailResponse
	if err := c.getJSON(ctx, "song", c.baseURL+"/songs/"+url.PathEscape(id), &body); err != nil {
		return "", "", fmt.Errorf("saavn adapter: song %s: %w", id, err)
	}
	if !body.Success {
		return "", "", fmt.Errorf("saavn adapter: song %s: unsuccessful response", id)
	}
	songs, err := body.songs()
	if err != nil {
		return "", "", fmt.Errorf("saavn adapter: song %s: decode data: %w", id, err)
	}
	for _, s := range songs {
		if stream, quality := selectLink(s.DownloadURL, preferredStream); stream != "" {
			return stream, quality, nil
		}
	}
	return "", "", nil
}

// SearchMood runs the catalog mood phrases and then the generic query,
// keeping playable tracks with distinct keys until limit is reached.
func (c *Client) SearchMood(ctx context.Context, mood domain.Mood, limit int) []domain.Track {
	out := []domain.Track{}
	if limit <= 0 {
		return out
	}
	seen := make(map[string]bool)
	collect := func(query string) {
		tracks, err := c.Search(ctx, query, limit*2)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("component", "saavn").Msg("mood search failed")
			return
		}
		for _, t := range tracks {
			if len(out) >= limit {
				return
			}
			if !t.Playable() || seen[t.Key()] {
				continue
			}
			seen[t.Key()] = true
			out = append(out, t)
		}
	}

	for _, q := range domain.CatalogMoodQueries(mood) {
		if len(out) >= limit {
			break
		}
		collect(q)
	}
	if len(out) < limit {
		collect(domain.GenericQuery)
	}
	return out
}
