package domain

import "strings"

const (
	UnknownTitle  = "Unknown Track"
	UnknownArtist = "Unknown Artist"
)

// Track represents a recommended musical track in the domain layer.
// (Title, Artist) is the natural key used for de-duplication.
type Track struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Genre       string `json:"genre"`
	Source      string `json:"source"`
	URL         string `json:"url"`        // optional external link
	Description string `json:"description"`
}

// SameAs reports whether both tracks share the same (title, artist) pair.
func (t Track) SameAs(other Track) bool {
	return t.Title == other.Title && t.Artist == other.Artist
}

// WithURL returns a copy of the track pointing at url.
func (t Track) WithURL(url string) Track {
	t.URL = url
	return t
}

// NormalizeTrack turns a loosely-typed record into a well-formed Track.
// It accepts decoded JSON/YAML objects as well as Track values; anything
// else yields a track carrying only the title and artist defaults.
func NormalizeTrack(raw any) Track {
	switch v := raw.(type) {
	case Track:
		return normalizeFields(v.Title, v.Artist, v.Genre, v.Source, v.URL, v.Description)
	case *Track:
		if v == nil {
			return normalizeFields(nil, nil, nil, nil, nil, nil)
		}
		return normalizeFields(v.Title, v.Artist, v.Genre, v.Source, v.URL, v.Description)
	case map[string]any:
		return normalizeFields(v["title"], v["artist"], v["genre"], v["source"], v["url"], v["description"])
	case map[any]any:
		return normalizeFields(v["title"], v["artist"], v["genre"], v["source"], v["url"], v["description"])
	default:
		return normalizeFields(nil, nil, nil, nil, nil, nil)
	}
}

func normalizeFields(title, artist, genre, source, url, description any) Track {
	return Track{
		Title:       stringOr(title, UnknownTitle),
		Artist:      stringOr(artist, UnknownArtist),
		Genre:       stringOr(genre, ""),
		Source:      stringOr(source, ""),
		URL:         stringOr(url, ""),
		Description: stringOr(description, ""),
	}
}

func stringOr(v any, fallback string) string {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}
