package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one entry of the append-only conversation log. The attached
// PlaylistAction is kept for traceability and is never re-applied.
type ChatTurn struct {
	ID             string          `json:"id"`
	Role           Role            `json:"role"`
	Content        string          `json:"content"`
	Tracks         []Track         `json:"tracks,omitempty"`
	PlaylistAction *PlaylistAction `json:"playlistAction,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// Clone returns a copy that shares no slice or pointer storage with t.
func (t ChatTurn) Clone() ChatTurn {
	if t.Tracks != nil {
		tracks := make([]Track, len(t.Tracks))
		copy(tracks, t.Tracks)
		t.Tracks = tracks
	}
	if t.PlaylistAction != nil {
		action := *t.PlaylistAction
		action.TrackIndices = append([]int(nil), t.PlaylistAction.TrackIndices...)
		t.PlaylistAction = &action
	}
	return t
}

func CloneTurns(in []ChatTurn) []ChatTurn {
	out := make([]ChatTurn, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

// LastTracks returns the tracks of the most recent turn that carried any.
func LastTracks(turns []ChatTurn) []Track {
	for i := len(turns) - 1; i >= 0; i-- {
		if len(turns[i].Tracks) > 0 {
			out := make([]Track, len(turns[i].Tracks))
			copy(out, turns[i].Tracks)
			return out
		}
	}
	return nil
}
