package domain

import (
	"strings"
	"time"
)

// Playlist is an ordered, user-owned collection of tracks. Insertion order
// is display order.
type Playlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tracks    []Track   `json:"tracks"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewPlaylist(id, name string, createdAt time.Time) (*Playlist, error) {
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return nil, ErrInvalidArgument
	}
	return &Playlist{
		ID:        id,
		Name:      name,
		Tracks:    []Track{},
		CreatedAt: createdAt,
	}, nil
}

// Contains reports whether a track with the same (title, artist) is present.
func (p *Playlist) Contains(t Track) bool {
	for _, ex := range p.Tracks {
		if ex.SameAs(t) {
			return true
		}
	}
	return false
}

// AddTrack appends a track to the playlist while preventing duplicate
// (title, artist) pairs. A duplicate leaves the playlist untouched and
// returns ErrDuplicateTrack.
func (p *Playlist) AddTrack(t Track) error {
	if p.Contains(t) {
		return ErrDuplicateTrack
	}
	p.Tracks = append(p.Tracks, t)
	return nil
}

// RemoveAt removes the track at the 0-based display index.
func (p *Playlist) RemoveAt(index int) error {
	if index < 0 || index >= len(p.Tracks) {
		return ErrIndexOutOfRange
	}
	tracks := make([]Track, 0, len(p.Tracks)-1)
	tracks = append(tracks, p.Tracks[:index]...)
	p.Tracks = append(tracks, p.Tracks[index+1:]...)
	return nil
}

// RemovePositions drops every track whose 1-based position, taken from the
// ordering before any removal, appears in positions. It returns the number
// of tracks removed.
func (p *Playlist) RemovePositions(positions []int) int {
	drop := make(map[int]struct{}, len(positions))
	for _, pos := range positions {
		drop[pos] = struct{}{}
	}
	kept := make([]Track, 0, len(p.Tracks))
	for i, t := range p.Tracks {
		if _, ok := drop[i+1]; ok {
			continue
		}
		kept = append(kept, t)
	}
	removed := len(p.Tracks) - len(kept)
	p.Tracks = kept
	return removed
}

// MatchesName compares names case-insensitively.
func (p *Playlist) MatchesName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name))
}

// Clone returns a copy that shares no slice storage with p.
func (p Playlist) Clone() Playlist {
	tracks := make([]Track, len(p.Tracks))
	copy(tracks, p.Tracks)
	p.Tracks = tracks
	return p
}

// ClonePlaylists deep-copies a playlist collection.
func ClonePlaylists(in []Playlist) []Playlist {
	out := make([]Playlist, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

// FindByName returns the index of the first playlist whose name matches
// case-insensitively, or -1.
func FindByName(playlists []Playlist, name string) int {
	for i := range playlists {
		if playlists[i].MatchesName(name) {
			return i
		}
	}
	return -1
}

// FindByID returns the index of the playlist with the given id, or -1.
func FindByID(playlists []Playlist, id string) int {
	for i := range playlists {
		if playlists[i].ID == id {
			return i
		}
	}
	return -1
}
