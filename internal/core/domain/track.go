package domain

import (
	"net/url"
	"strings"
)

const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
)

// Track represents a song in the domain layer. Only tracks with a StreamURL
// are playable; ID is informational and never used for identity.
type Track struct {
	ID              string `json:"id,omitempty"`
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Album           string `json:"album,omitempty"`
	Language        string `json:"language,omitempty"`
	Year            string `json:"year,omitempty"`
	ImageURL        string `json:"image_url,omitempty"`
	PageURL         string `json:"page_url,omitempty"`
	StreamURL       string `json:"stream_url,omitempty"`
	Quality         string `json:"quality,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	MoodMatch       string `json:"mood_match,omitempty"`
}

// Key is the identity used for deduplication: lower-cased "title artist".
func (t Track) Key() string {
	return TrackKey(t.Title, t.Artist)
}

// TrackKey builds the deduplication key for a title and artist pair.
func TrackKey(title, artist string) string {
	return strings.ToLower(title + " " + artist)
}

// Playable reports whether the track carries a stream URL.
func (t Track) Playable() bool {
	return t.StreamURL != ""
}

// Query is the free-text search phrase used to look the track up in a catalog.
func (t Track) Query() string {
	return strings.TrimSpace(t.Title + " " + t.Artist)
}

// YouTubeSearchURL links to a YouTube search for the track.
func (t Track) YouTubeSearchURL() string {
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(t.Query())
}

// YouTubeEmbedURL is an embeddable player that searches for the official audio.
func (t Track) YouTubeEmbedURL() string {
	return "https://www.youtube.com/embed?listType=search&list=" + url.QueryEscape(t.Query()+" official audio")
}

// CatalogSearchURL links to the catalog's own web search for the track.
func (t Track) CatalogSearchURL() string {
	return "https://www.jiosaavn.com/search/" + url.PathEscape(t.Query())
}
