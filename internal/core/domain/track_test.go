package domain

import (
	"encoding/json"
	"testing"
)

func TestNormalizeTrack(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Track
	}{
		{
			name: "complete record",
			raw: map[string]any{
				"title": "Celestial Drift", "artist": "Luna Wave", "genre": "Ambient",
				"source": "FMA", "url": "https://example.com/1", "description": "calm",
			},
			want: Track{Title: "Celestial Drift", Artist: "Luna Wave", Genre: "Ambient", Source: "FMA", URL: "https://example.com/1", Description: "calm"},
		},
		{
			name: "missing title and artist",
			raw:  map[string]any{"genre": "Jazz"},
			want: Track{Title: UnknownTitle, Artist: UnknownArtist, Genre: "Jazz"},
		},
		{
			name: "blank title",
			raw:  map[string]any{"title": "   ", "artist": "Someone"},
			want: Track{Title: UnknownTitle, Artist: "Someone"},
		},
		{
			name: "wrong field types",
			raw: map[string]any{
				"title": 42.0, "artist": []any{"a"}, "genre": true,
				"source": nil, "url": map[string]any{}, "description": 3,
			},
			want: Track{Title: UnknownTitle, Artist: UnknownArtist},
		},
		{
			name: "surrounding whitespace trimmed",
			raw:  map[string]any{"title": "  Song ", "artist": "\tBand\n"},
			want: Track{Title: "Song", Artist: "Band"},
		},
		{
			name: "yaml style keys",
			raw:  map[any]any{"title": "Song", "artist": "Band", 7: "ignored"},
			want: Track{Title: "Song", Artist: "Band"},
		},
		{
			name: "typed track passes through",
			raw:  Track{Title: "Song", Artist: ""},
			want: Track{Title: "Song", Artist: UnknownArtist},
		},
		{
			name: "nil pointer",
			raw:  (*Track)(nil),
			want: Track{Title: UnknownTitle, Artist: UnknownArtist},
		},
		{name: "nil", raw: nil, want: Track{Title: UnknownTitle, Artist: UnknownArtist}},
		{name: "number", raw: 12.5, want: Track{Title: UnknownTitle, Artist: UnknownArtist}},
		{name: "string", raw: "just text", want: Track{Title: UnknownTitle, Artist: UnknownArtist}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTrack(tt.raw)
			if got != tt.want {
				t.Fatalf("NormalizeTrack: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func FuzzNormalizeTrack(f *testing.F) {
	f.Add(`{"title":"a","artist":"b"}`)
	f.Add(`{"title":1,"artist":null,"url":[]}`)
	f.Add(`[]`)
	f.Add(`"x"`)

	f.Fuzz(func(t *testing.T, input string) {
		var raw any
		_ = json.Unmarshal([]byte(input), &raw)
		got := NormalizeTrack(raw)
		if got.Title == "" || got.Artist == "" {
			t.Fatalf("title and artist must always be populated: %+v", got)
		}
	})
}
