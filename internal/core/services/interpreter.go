package services

import (
	"strings"

	"github.com/ewilliams-labs/musicmate/internal/core/domain"
)

// DefaultMessage is shown when neither the agent nor its envelope supplied any text.
const DefaultMessage = "Here are my recommendations."

// Interpretation is the best-effort structured reading of one agent reply.
type Interpretation struct {
	Message string
	Tracks  []domain.Track
	Action  *domain.PlaylistAction
	// Structured reports whether a JSON payload was recovered at all.
	Structured bool
}

// Interpret extracts a display message, validated tracks and an optional
// playlist action from raw agent output. It never fails: input that cannot
// be read as a structured payload degrades to plain text with no tracks and
// no action, and the returned message is never empty.
func Interpret(raw any, fallbackMessage string) (out Interpretation) {
	rawText, _ := asText(raw)

	defer func() {
		if r := recover(); r != nil {
			out = Interpretation{
				Message: firstNonBlank(rawText, fallbackMessage, DefaultMessage),
				Tracks:  []domain.Track{},
			}
		}
	}()

	p, ok := extractPayload(raw)
	if !ok {
		return Interpretation{
			Message: firstNonBlank(rawText, fallbackMessage, DefaultMessage),
			Tracks:  []domain.Track{},
		}
	}

	message, _ := p.fields["message"].(string)
	action, _ := domain.ParseAction(p.fields["playlist_action"])

	return Interpretation{
		Message:    firstNonBlank(message, fallbackMessage, p.prose, rawText, DefaultMessage),
		Tracks:     extractTracks(p.fields["tracks"]),
		Action:     action,
		Structured: true,
	}
}

func extractTracks(raw any) []domain.Track {
	switch list := raw.(type) {
	case []any:
		tracks := make([]domain.Track, 0, len(list))
		for _, item := range list {
			tracks = append(tracks, domain.NormalizeTrack(item))
		}
		return tracks
	case []map[string]any:
		tracks := make([]domain.Track, 0, len(list))
		for _, item := range list {
			tracks = append(tracks, domain.NormalizeTrack(item))
		}
		return tracks
	case []domain.Track:
		tracks := make([]domain.Track, 0, len(list))
		for _, item := range list {
			tracks = append(tracks, domain.NormalizeTrack(item))
		}
		return tracks
	default:
		return []domain.Track{}
	}
}

func firstNonBlank(candidates ...string) string {
	for _, c := range candidates {
		if s := strings.TrimSpace(c); s != "" {
			return s
		}
	}
	return DefaultMessage
}
