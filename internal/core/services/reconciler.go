package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/ewilliams-labs/musicmate/internal/core/domain"
)

// Reconciler applies agent playlist actions to a playlist snapshot. It holds
// no state between calls; the identifier source and clock are injected so
// results are reproducible in tests.
type Reconciler struct {
	newID func() string
	now   func() time.Time
}

func NewReconciler() *Reconciler {
	return &Reconciler{newID: uuid.NewString, now: time.Now}
}

// Outcome describes what one action did.
type Outcome struct {
	Playlists []domain.Playlist
	// Target is a copy of the playlist the action created or matched, nil
	// when the action was a no-op before any lookup or nothing matched.
	Target  *domain.Playlist
	Added   int
	Removed int
}

// Apply returns the playlist snapshot that results from action. The input
// slice and its playlists are never modified.
func (r *Reconciler) Apply(action *domain.PlaylistAction, turnTracks, lastKnown []domain.Track, playlists []domain.Playlist) []domain.Playlist {
	return r.Reconcile(action, turnTracks, lastKnown, playlists).Playlists
}

// Reconcile is Apply with a report of the effect, for callers that
// acknowledge actions to the user.
func (r *Reconciler) Reconcile(action *domain.PlaylistAction, turnTracks, lastKnown []domain.Track, playlists []domain.Playlist) Outcome {
	next := domain.ClonePlaylists(playlists)
	if action == nil || action.PlaylistName == "" {
		return Outcome{Playlists: next}
	}

	source := turnTracks
	if len(source) == 0 {
		source = lastKnown
	}

	switch action.Kind {
	case domain.ActionCreate:
		p, err := domain.NewPlaylist(r.id(), action.PlaylistName, r.clock())
		if err != nil {
			// whitespace-only name
			return Outcome{Playlists: next}
		}
		added := appendResolved(p, source, action.TrackIndices)
		next = append(next, *p)
		target := p.Clone()
		return Outcome{Playlists: next, Target: &target, Added: added}

	case domain.ActionAdd:
		i := domain.FindByName(next, action.PlaylistName)
		if i < 0 {
			return Outcome{Playlists: next}
		}
		added := appendResolved(&next[i], source, action.TrackIndices)
		target := next[i].Clone()
		return Outcome{Playlists: next, Target: &target, Added: added}

	case domain.ActionRemove:
		i := domain.FindByName(next, action.PlaylistName)
		if i < 0 {
			return Outcome{Playlists: next}
		}
		removed := next[i].RemovePositions(action.TrackIndices)
		target := next[i].Clone()
		return Outcome{Playlists: next, Target: &target, Removed: removed}

	case domain.ActionRename, domain.ActionList:
		// no new-name field exists on the wire; rename only locates its target
		i := domain.FindByName(next, action.PlaylistName)
		if i < 0 {
			return Outcome{Playlists: next}
		}
		target := next[i].Clone()
		return Outcome{Playlists: next, Target: &target}

	default:
		return Outcome{Playlists: next}
	}
}

// appendResolved resolves 1-based indices against source and adds each
// track not already in p. Unresolvable indices are skipped.
func appendResolved(p *domain.Playlist, source []domain.Track, indices []int) int {
	added := 0
	for _, idx := range indices {
		if idx < 1 || idx > len(source) {
			continue
		}
		if err := p.AddTrack(source[idx-1]); err == nil {
			added++
		}
	}
	return added
}

func (r *Reconciler) id() string {
	if r.newID == nil {
		return uuid.NewString()
	}
	return r.newID()
}

func (r *Reconciler) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}
