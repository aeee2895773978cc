package saavn

import (
	"html"
	"strings"
)

// cleanText decodes HTML entities the catalog leaves in names and collapses
// whitespace.
func cleanText(input string) string {
	if input == "" {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(input)), " ")
}

func joinArtistNames(artists []artistWire) string {
	if len(artists) == 0 {
		return ""
	}
	parts := make([]string, 0, len(artists))
	for _, a := range artists {
		if name := cleanText(a.Name); name != "" {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}

func fallbackIfEmpty(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}
