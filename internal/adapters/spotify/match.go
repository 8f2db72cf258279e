package spotify

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/zmb3/spotify/v2"
)

const (
	minTitleSimilarity  = 0.80
	minArtistSimilarity = 0.70
	defaultMinScore     = 0.85
)

// trackMatchScore compares a requested title and artist with a search
// result. The title carries most of the weight.
func trackMatchScore(requestTitle, requestArtist string, candidate spotify.FullTrack, minScore float64) (float64, bool) {
	normalizedTitle, normalizedArtist, ok := searchPair(requestTitle, requestArtist)
	if !ok {
		return 0, false
	}
	candidateTitle := searchKey(candidate.Name)
	if candidateTitle == "" || searchKey(joinArtistNames(candidate)) == "" {
		return 0, false
	}

	titleSim := similarity(normalizedTitle, candidateTitle)
	artistSim := bestArtistSimilarity(normalizedArtist, candidate)
	score := 0.7*titleSim + 0.3*artistSim

	if titleSim < minTitleSimilarity || artistSim < minArtistSimilarity || score < minScore {
		return score, false
	}

	return score, true
}

// bestArtistSimilarity scores against the full credit and each credited
// artist, so a request naming only the lead artist still matches.
func bestArtistSimilarity(requestArtist string, candidate spotify.FullTrack) float64 {
	best := similarity(requestArtist, searchKey(joinArtistNames(candidate)))
	for _, artist := range candidate.Artists {
		if s := similarity(requestArtist, searchKey(artist.Name)); s > best {
			best = s
		}
	}
	return best
}

func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	return strutil.Similarity(a, b, metrics.NewJaroWinkler())
}

func joinArtistNames(track spotify.FullTrack) string {
	if len(track.Artists) == 0 {
		return ""
	}
	parts := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		parts = append(parts, artist.Name)
	}
	return strings.Join(parts, " ")
}
