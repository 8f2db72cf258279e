package ports

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoConfidentMatch indicates search results did not meet the confidence threshold.
var ErrNoConfidentMatch = errors.New("no confident match")

// NoConfidentMatchError provides context for a failed track match.
type NoConfidentMatchError struct {
	Title  string
	Artist string
}

func (e NoConfidentMatchError) Error() string {
	if e.Title == "" && e.Artist == "" {
		return ErrNoConfidentMatch.Error()
	}
	return fmt.Sprintf("no confident match found for title %q artist %q", e.Title, e.Artist)
}

func (e NoConfidentMatchError) Is(target error) bool {
	return target == ErrNoConfidentMatch
}

// LinkResolver finds a listenable link for a track the agent recommended
// without one.
type LinkResolver interface {
	ResolveLink(ctx context.Context, title, artist string) (string, error)
}
