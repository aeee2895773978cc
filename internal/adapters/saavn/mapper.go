package saavn

import "github.com/ewilliams-labs/moodify/internal/core/domain"

const (
	preferredImage  = "500x500"
	preferredStream = "320kbps"
)

// mapSongToDomain converts a raw catalog song into a domain track. The
// stream URL is left empty when the payload carries no download variants.
func mapSongToDomain(s songWire) domain.Track {
	image, _ := selectLink(s.Image, preferredImage)
	stream, quality := selectLink(s.DownloadURL, preferredStream)

	return domain.Track{
		ID:              s.ID,
		Title:           fallbackIfEmpty(cleanText(s.Name), domain.UnknownTitle),
		Artist:          fallbackIfEmpty(joinArtistNames(s.Artists.Primary), domain.UnknownArtist),
		Album:           cleanText(s.Album.Name),
		Language:        s.Language,
		Year:            string(s.Year),
		ImageURL:        image,
		PageURL:         s.URL,
		StreamURL:       stream,
		Quality:         quality,
		DurationSeconds: s.Duration.Int(),
	}
}

// selectLink returns the variant with the preferred quality, else the first
// variant that has a URL.
func selectLink(links []linkWire, preferred string) (url, quality string) {
	for _, l := range links {
		if l.Quality == preferred && l.URL != "" {
			return l.URL, l.Quality
		}
	}
	for _, l := range links {
		if l.URL != "" {
			return l.URL, l.Quality
		}
	}
	return "", ""
}
