package rest

import (
	"time"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
)

type trackLinks struct {
	YouTubeSearch string `json:"youtube_search"`
	YouTubeEmbed  string `json:"youtube_embed"`
	SaavnSearch   string `json:"saavn_search"`
}

type trackResponse struct {
	domain.Track
	Links trackLinks `json:"links"`
}

func newTrackResponses(tracks []domain.Track) []trackResponse {
	out := make([]trackResponse, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, trackResponse{
			Track: t,
			Links: trackLinks{
				YouTubeSearch: t.YouTubeSearchURL(),
				YouTubeEmbed:  t.YouTubeEmbedURL(),
				SaavnSearch:   t.CatalogSearchURL(),
			},
		})
	}
	return out
}

type moodResponse struct {
	Name  domain.Mood `json:"name"`
	Color string      `json:"color"`
}

type recommendationResponse struct {
	ID        string          `json:"id,omitempty"`
	Mood      domain.Mood     `json:"mood"`
	Color     string          `json:"color"`
	Tracks    []trackResponse `json:"tracks"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
}

func newRecommendationResponse(mood domain.Mood, tracks []domain.Track) recommendationResponse {
	return recommendationResponse{
		Mood:   mood,
		Color:  mood.Color(),
		Tracks: newTrackResponses(tracks),
	}
}

func fromRecommendation(r domain.Recommendation) recommendationResponse {
	resp := newRecommendationResponse(r.Mood, r.Tracks)
	resp.ID = r.ID
	created := r.CreatedAt
	resp.CreatedAt = &created
	return resp
}
