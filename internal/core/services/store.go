package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/musicmate/internal/core/domain"
	"github.com/ewilliams-labs/musicmate/internal/core/ports"
)

// Durable storage keys.
const (
	KeyPlaylists = "musicmate_playlists"
	KeyMessages  = "musicmate_messages"
	KeySession   = "musicmate_session"
)

// dataset is one complete set of conversation state. The store keeps a live
// dataset and, while sample mode is on, a throwaway demonstration one.
type dataset struct {
	turns     []domain.ChatTurn
	playlists []domain.Playlist
	// lastKnown is the track list of the most recent turn that had tracks.
	lastKnown []domain.Track
}

// Store owns the conversation log and the playlist collection. Every
// mutation is written through to the KV store unless sample mode is active.
type Store struct {
	mu         sync.Mutex
	kv         ports.KVStore
	logger     *zap.Logger
	reconciler *Reconciler
	newID      func() string
	now        func() time.Time

	live      dataset
	sample    *dataset
	sessionID string
}

func NewStore(kv ports.KVStore, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		kv:         kv,
		logger:     logger,
		reconciler: NewReconciler(),
		newID:      uuid.NewString,
		now:        time.Now,
		live:       dataset{turns: []domain.ChatTurn{}, playlists: []domain.Playlist{}},
	}
}

// Load replaces the live state with what is persisted. Values that cannot
// be decoded are discarded and logged; only read failures are returned.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlists, err := readKey[[]domain.Playlist](ctx, s, KeyPlaylists)
	if err != nil {
		return err
	}
	turns, err := readKey[[]domain.ChatTurn](ctx, s, KeyMessages)
	if err != nil {
		return err
	}
	session, err := readKey[string](ctx, s, KeySession)
	if err != nil {
		return err
	}

	s.live = dataset{
		turns:     sanitizeTurns(turns),
		playlists: sanitizePlaylists(playlists),
	}
	s.live.lastKnown = domain.LastTracks(s.live.turns)
	s.sessionID = session

	s.logger.Info("store: loaded",
		zap.Int("playlists", len(s.live.playlists)),
		zap.Int("turns", len(s.live.turns)),
		zap.Bool("has_session", session != ""),
	)
	return nil
}

// SessionID returns the session token, generating and persisting one on
// first use.
func (s *Store) SessionID(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessionID == "" {
		s.sessionID = s.newID()
		s.persist(ctx, KeySession, s.sessionID)
	}
	return s.sessionID
}

// AppendTurn adds a turn to the end of the log.
func (s *Store) AppendTurn(ctx context.Context, turn domain.ChatTurn) domain.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn = s.stamp(turn)
	s.appendLocked(ctx, turn)
	return turn.Clone()
}

// CommitAssistantTurn applies the turn's playlist action using the turn's
// tracks (or the last known tracks) and then appends the turn, so the log
// never shows a reply before its playlist changes.
func (s *Store) CommitAssistantTurn(ctx context.Context, turn domain.ChatTurn) (domain.ChatTurn, Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn = s.stamp(turn)
	d := s.active()

	out := s.reconciler.Reconcile(turn.PlaylistAction, turn.Tracks, d.lastKnown, d.playlists)
	d.playlists = out.Playlists
	if turn.PlaylistAction != nil {
		s.persistPlaylists(ctx)
	}

	s.appendLocked(ctx, turn)
	return turn.Clone(), Outcome{
		Playlists: domain.ClonePlaylists(out.Playlists),
		Target:    out.Target,
		Added:     out.Added,
		Removed:   out.Removed,
	}
}

// CreatePlaylist adds an empty playlist with the given name.
func (s *Store) CreatePlaylist(ctx context.Context, name string) (domain.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := domain.NewPlaylist(s.newID(), name, s.now())
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("store: create playlist: %w", err)
	}

	d := s.active()
	d.playlists = append(d.playlists, *p)
	s.persistPlaylists(ctx)
	return p.Clone(), nil
}

func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.active()
	i := domain.FindByID(d.playlists, id)
	if i < 0 {
		return fmt.Errorf("store: delete playlist %q: %w", id, domain.ErrNotFound)
	}

	next := make([]domain.Playlist, 0, len(d.playlists)-1)
	next = append(next, d.playlists[:i]...)
	d.playlists = append(next, d.playlists[i+1:]...)
	s.persistPlaylists(ctx)
	return nil
}

// AddTrackManually appends a track chosen by the user. A track whose
// (title, artist) is already present is rejected with ErrDuplicateTrack.
func (s *Store) AddTrackManually(ctx context.Context, playlistID string, track domain.Track) (domain.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.active()
	i := domain.FindByID(d.playlists, playlistID)
	if i < 0 {
		return domain.Playlist{}, fmt.Errorf("store: add track to %q: %w", playlistID, domain.ErrNotFound)
	}

	updated := d.playlists[i].Clone()
	if err := updated.AddTrack(domain.NormalizeTrack(track)); err != nil {
		return domain.Playlist{}, fmt.Errorf("store: add track to %q: %w", playlistID, err)
	}
	d.playlists = replaceAt(d.playlists, i, updated)
	s.persistPlaylists(ctx)
	return updated.Clone(), nil
}

// RemoveTrackManually removes the track at a 0-based display index.
func (s *Store) RemoveTrackManually(ctx context.Context, playlistID string, index int) (domain.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.active()
	i := domain.FindByID(d.playlists, playlistID)
	if i < 0 {
		return domain.Playlist{}, fmt.Errorf("store: remove track from %q: %w", playlistID, domain.ErrNotFound)
	}

	updated := d.playlists[i].Clone()
	if err := updated.RemoveAt(index); err != nil {
		return domain.Playlist{}, fmt.Errorf("store: remove track %d from %q: %w", index, playlistID, err)
	}
	d.playlists = replaceAt(d.playlists, i, updated)
	s.persistPlaylists(ctx)
	return updated.Clone(), nil
}

func (s *Store) Turns() []domain.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneTurns(s.active().turns)
}

func (s *Store) Playlists() []domain.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ClonePlaylists(s.active().playlists)
}

func (s *Store) Playlist(id string) (domain.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.active()
	i := domain.FindByID(d.playlists, id)
	if i < 0 {
		return domain.Playlist{}, fmt.Errorf("store: playlist %q: %w", id, domain.ErrNotFound)
	}
	return d.playlists[i].Clone(), nil
}

// LastKnownTracks returns the source list used when a turn carries an
// action but no tracks of its own.
func (s *Store) LastKnownTracks() []domain.Track {
	s.mu.Lock()
	defer s.mu.Unlock()

	lk := s.active().lastKnown
	out := make([]domain.Track, len(lk))
	copy(out, lk)
	return out
}

// SetSampleMode switches reads and writes to a fresh demonstration dataset.
// Turning it off discards that dataset; the live state is never touched.
func (s *Store) SetSampleMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case on && s.sample == nil:
		now := s.now()
		turns := domain.SampleTurns(now)
		s.sample = &dataset{
			turns:     turns,
			playlists: domain.SamplePlaylists(now),
			lastKnown: domain.LastTracks(turns),
		}
		s.logger.Info("store: sample mode enabled")
	case !on && s.sample != nil:
		s.sample = nil
		s.logger.Info("store: sample mode disabled")
	}
}

func (s *Store) SampleMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sample != nil
}

func (s *Store) active() *dataset {
	if s.sample != nil {
		return s.sample
	}
	return &s.live
}

func (s *Store) stamp(turn domain.ChatTurn) domain.ChatTurn {
	turn = turn.Clone()
	if turn.ID == "" {
		turn.ID = s.newID()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = s.now()
	}
	return turn
}

func (s *Store) appendLocked(ctx context.Context, turn domain.ChatTurn) {
	d := s.active()
	d.turns = append(d.turns, turn)
	if len(turn.Tracks) > 0 {
		d.lastKnown = make([]domain.Track, len(turn.Tracks))
		copy(d.lastKnown, turn.Tracks)
	}
	s.persist(ctx, KeyMessages, d.turns)
}

func (s *Store) persistPlaylists(ctx context.Context) {
	s.persist(ctx, KeyPlaylists, s.active().playlists)
}

// persist writes v under key. Failures are logged, never returned: the
// in-memory state stays authoritative and the next mutation rewrites the key.
func (s *Store) persist(ctx context.Context, key string, v any) {
	if s.sample != nil || s.kv == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("store: encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.kv.Write(ctx, key, data); err != nil {
		s.logger.Warn("store: write failed", zap.String("key", key), zap.Error(err))
	}
}

// readKey decodes the value stored under key. Absent and undecodable values
// both yield the zero value.
func readKey[T any](ctx context.Context, s *Store, key string) (T, error) {
	var zero T
	if s.kv == nil {
		return zero, nil
	}
	data, ok, err := s.kv.Read(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("store: read %s: %w", key, err)
	}
	if !ok || len(data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Warn("store: discarding corrupt value", zap.String("key", key), zap.Error(err))
		return zero, nil
	}
	return v, nil
}

// sanitizePlaylists drops records without an identity and fills nil slices
// left by hand-edited or older data.
func sanitizePlaylists(in []domain.Playlist) []domain.Playlist {
	out := make([]domain.Playlist, 0, len(in))
	for _, p := range in {
		if p.ID == "" {
			continue
		}
		if p.Tracks == nil {
			p.Tracks = []domain.Track{}
		}
		out = append(out, p)
	}
	return out
}

func sanitizeTurns(in []domain.ChatTurn) []domain.ChatTurn {
	out := make([]domain.ChatTurn, 0, len(in))
	for _, t := range in {
		if t.Role != domain.RoleUser && t.Role != domain.RoleAssistant {
			continue
		}
		out = append(out, t)
	}
	return out
}

func replaceAt(playlists []domain.Playlist, i int, p domain.Playlist) []domain.Playlist {
	next := make([]domain.Playlist, len(playlists))
	copy(next, playlists)
	next[i] = p
	return next
}
