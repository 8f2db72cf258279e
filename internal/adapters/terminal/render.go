package terminal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/ewilliams-labs/musicmate/internal/core/domain"
)

const defaultWidth = 80

// Renderer formats domain values as terminal text. Assistant messages are
// rendered as markdown unless the renderer is plain.
type Renderer struct {
	md     *glamour.TermRenderer
	styles styles
}

// NewRenderer builds a renderer wrapping at width columns. plain disables
// markdown rendering, for pipes and tests.
func NewRenderer(width int, plain bool) (*Renderer, error) {
	if width <= 0 {
		width = defaultWidth
	}
	r := &Renderer{styles: defaultStyles()}
	if plain {
		return r, nil
	}

	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("terminal: markdown renderer: %w", err)
	}
	r.md = md
	return r, nil
}

// Turn renders one conversation turn with its recommended tracks.
func (r *Renderer) Turn(turn domain.ChatTurn) string {
	var sb strings.Builder
	if turn.Role == domain.RoleUser {
		sb.WriteString(r.styles.User.Render("You"))
	} else {
		sb.WriteString(r.styles.Assistant.Render("♪ MusicMate"))
	}
	sb.WriteString("\n")
	sb.WriteString(r.markdown(turn.Content))
	sb.WriteString("\n")

	if len(turn.Tracks) > 0 {
		sb.WriteString("\n")
		sb.WriteString(r.Tracks(turn.Tracks))
	}
	return sb.String()
}

// Tracks renders tracks as numbered cards. The numbers are the 1-based
// positions the agent refers to.
func (r *Renderer) Tracks(tracks []domain.Track) string {
	var sb strings.Builder
	for i, t := range tracks {
		sb.WriteString(r.track(i+1, t))
	}
	return sb.String()
}

func (r *Renderer) track(n int, t domain.Track) string {
	lines := []string{
		fmt.Sprintf("%d. %s", n, r.styles.Title.Render(t.Title)) + " by " + t.Artist,
	}
	if meta := joinNonEmpty(" · ", t.Genre, t.Source); meta != "" {
		lines = append(lines, r.styles.Meta.Render(meta))
	}
	if t.Description != "" {
		lines = append(lines, t.Description)
	}
	if t.URL != "" {
		lines = append(lines, r.styles.Link.Render(t.URL))
	}
	return r.styles.Card.Render(strings.Join(lines, "\n")) + "\n"
}

// Playlists renders a one-line summary per playlist.
func (r *Renderer) Playlists(playlists []domain.Playlist) string {
	if len(playlists) == 0 {
		return r.styles.Meta.Render("No playlists yet.") + "\n"
	}
	var sb strings.Builder
	for _, p := range playlists {
		fmt.Fprintf(&sb, "%s  %s %s\n",
			r.styles.Title.Render(p.Name),
			r.styles.Meta.Render(trackCount(len(p.Tracks))),
			r.styles.Meta.Render("("+p.ID+")"),
		)
	}
	return sb.String()
}

// Playlist renders a playlist header followed by its tracks.
func (r *Renderer) Playlist(p domain.Playlist) string {
	var sb strings.Builder
	sb.WriteString(r.styles.Header.Render(p.Name))
	sb.WriteString("\n")
	if len(p.Tracks) == 0 {
		sb.WriteString(r.styles.Meta.Render("This playlist is empty."))
		sb.WriteString("\n")
		return sb.String()
	}
	sb.WriteString(r.Tracks(p.Tracks))
	return sb.String()
}

func (r *Renderer) Notice(msg string) string {
	return r.styles.Notice.Render(msg) + "\n"
}

func (r *Renderer) Error(msg string) string {
	return r.styles.Error.Render("Error: "+msg) + "\n"
}

func (r *Renderer) markdown(content string) string {
	if r.md == nil {
		return content
	}
	out, err := r.md.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

func trackCount(n int) string {
	if n == 1 {
		return "1 track"
	}
	return fmt.Sprintf("%d tracks", n)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
