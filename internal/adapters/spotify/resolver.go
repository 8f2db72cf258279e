// Package spotify finds Spotify links for recommended tracks that arrive
// without one.
package spotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/musicmate/internal/config"
	"github.com/ewilliams-labs/musicmate/internal/core/ports"
)

const searchLimit = 5

// searcher is the part of *spotify.Client the resolver uses.
type searcher interface {
	Search(ctx context.Context, query string, t spotify.SearchType, opts ...spotify.RequestOption) (*spotify.SearchResult, error)
}

type Resolver struct {
	client   searcher
	limiter  *rate.Limiter
	market   string
	minScore float64
	logger   *zap.Logger
}

// compile-time interface assertion
var _ ports.LinkResolver = (*Resolver)(nil)

// NewResolver authenticates with the client credentials flow.
func NewResolver(ctx context.Context, cfg config.SpotifyConfig, logger *zap.Logger) (*Resolver, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("spotify adapter: client id and secret are required")
	}
	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	if _, err := creds.Token(ctx); err != nil {
		return nil, fmt.Errorf("spotify adapter: authenticate: %w", err)
	}
	client := spotify.New(creds.Client(context.Background()))
	return newResolver(client, cfg, logger), nil
}

func newResolver(client searcher, cfg config.SpotifyConfig, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	minScore := cfg.MinScore
	if minScore <= 0 {
		minScore = defaultMinScore
	}
	return &Resolver{
		client:   client,
		limiter:  rate.NewLimiter(limit, 1),
		market:   cfg.Market,
		minScore: minScore,
		logger:   logger,
	}
}

// ResolveLink returns the open.spotify.com URL of the best confident match.
// It returns a ports.NoConfidentMatchError when nothing scores high enough.
func (r *Resolver) ResolveLink(ctx context.Context, title, artist string) (string, error) {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	normTitle, normArtist, ok := searchPair(title, artist)
	if !ok {
		return "", ports.NoConfidentMatchError{Title: title, Artist: artist}
	}

	queries := []string{
		fmt.Sprintf("track:%s artist:%s", title, artist),
		normArtist + " " + normTitle,
	}

	for _, query := range queries {
		tracks, err := r.search(ctx, query)
		if err != nil {
			return "", err
		}
		if url, ok := r.bestMatch(title, artist, tracks); ok {
			return url, nil
		}
	}

	return "", ports.NoConfidentMatchError{Title: title, Artist: artist}
}

func (r *Resolver) search(ctx context.Context, query string) ([]spotify.FullTrack, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("spotify adapter: rate limit wait: %w", err)
	}

	opts := []spotify.RequestOption{spotify.Limit(searchLimit)}
	if r.market != "" {
		opts = append(opts, spotify.Market(r.market))
	}

	result, err := r.client.Search(ctx, query, spotify.SearchTypeTrack, opts...)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: search %q: %w", query, err)
	}
	if result == nil || result.Tracks == nil {
		return nil, nil
	}
	return result.Tracks.Tracks, nil
}

func (r *Resolver) bestMatch(title, artist string, tracks []spotify.FullTrack) (string, bool) {
	var (
		best      spotify.FullTrack
		bestScore float64
		found     bool
	)
	for _, candidate := range tracks {
		score, ok := trackMatchScore(title, artist, candidate, r.minScore)
		if !ok || score <= bestScore {
			continue
		}
		best, bestScore, found = candidate, score, true
	}
	if !found {
		return "", false
	}

	r.logger.Debug("spotify adapter: matched track",
		zap.String("title", title),
		zap.String("artist", artist),
		zap.String("spotify_id", string(best.ID)),
		zap.Float64("score", bestScore))
	return trackURL(best), true
}

func trackURL(track spotify.FullTrack) string {
	if url := track.ExternalURLs["spotify"]; url != "" {
		return url
	}
	return fmt.Sprintf("https://open.spotify.com/track/%s", track.ID)
}
