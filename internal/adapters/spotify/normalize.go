package spotify

import (
	"strings"
	"unicode"

	"github.com/ewilliams-labs/musicmate/internal/core/domain"
)

// releaseNoise marks words that name a release variant rather than the song.
var releaseNoise = map[string]struct{}{
	"clean":      {},
	"deluxe":     {},
	"edit":       {},
	"edition":    {},
	"explicit":   {},
	"feat":       {},
	"featuring":  {},
	"ft":         {},
	"live":       {},
	"mix":        {},
	"mono":       {},
	"radio":      {},
	"remaster":   {},
	"remastered": {},
	"stereo":     {},
	"version":    {},
}

// searchKey reduces a title or artist to lowercase words. Bracketed
// segments, punctuation and release-variant words are dropped.
func searchKey(value string) string {
	var (
		words []string
		word  strings.Builder
		depth int
	)

	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := word.String()
		word.Reset()
		if _, noise := releaseNoise[w]; !noise {
			words = append(words, w)
		}
	}

	for _, r := range strings.ToLower(value) {
		switch {
		case r == '(' || r == '[':
			flush()
			depth++
		case r == ')' || r == ']':
			flush()
			if depth > 0 {
				depth--
			}
		case depth > 0:
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(r)
		default:
			flush()
		}
	}
	flush()

	return strings.Join(words, " ")
}

// searchPair normalises a requested title and artist. ok is false when
// either side has nothing to search for, including the placeholders the
// track validator fills in for missing fields.
func searchPair(title, artist string) (normTitle, normArtist string, ok bool) {
	if isPlaceholder(title, domain.UnknownTitle) || isPlaceholder(artist, domain.UnknownArtist) {
		return "", "", false
	}
	normTitle, normArtist = searchKey(title), searchKey(artist)
	return normTitle, normArtist, normTitle != "" && normArtist != ""
}

func isPlaceholder(value, placeholder string) bool {
	return strings.EqualFold(strings.TrimSpace(value), placeholder)
}
