package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		want   *PlaylistAction
		wantOK bool
	}{
		{
			name:   "well formed",
			raw:    map[string]any{"action": "add", "playlist_name": "Chill", "track_indices": []any{1.0, 2.0}},
			want:   &PlaylistAction{Kind: ActionAdd, PlaylistName: "Chill", TrackIndices: []int{1, 2}},
			wantOK: true,
		},
		{
			name:   "missing name and indices default to empty",
			raw:    map[string]any{"action": "list"},
			want:   &PlaylistAction{Kind: ActionList, PlaylistName: "", TrackIndices: []int{}},
			wantOK: true,
		},
		{
			name:   "numeric name coerced to string",
			raw:    map[string]any{"action": "create", "playlist_name": 2024.0},
			want:   &PlaylistAction{Kind: ActionCreate, PlaylistName: "2024", TrackIndices: []int{}},
			wantOK: true,
		},
		{
			name:   "mixed index types",
			raw:    map[string]any{"action": "remove", "playlist_name": "X", "track_indices": []any{"3", 1.0, 2.5, "two", nil, 4}},
			want:   &PlaylistAction{Kind: ActionRemove, PlaylistName: "X", TrackIndices: []int{3, 1, 4}},
			wantOK: true,
		},
		{
			name:   "scalar index",
			raw:    map[string]any{"action": "add", "playlist_name": "X", "track_indices": 2.0},
			want:   &PlaylistAction{Kind: ActionAdd, PlaylistName: "X", TrackIndices: []int{2}},
			wantOK: true,
		},
		{
			name:   "json.Number index",
			raw:    map[string]any{"action": "add", "playlist_name": "X", "track_indices": []any{json.Number("5")}},
			want:   &PlaylistAction{Kind: ActionAdd, PlaylistName: "X", TrackIndices: []int{5}},
			wantOK: true,
		},
		{
			name:   "yaml mapping",
			raw:    map[any]any{"action": "rename", "playlist_name": "X"},
			want:   &PlaylistAction{Kind: ActionRename, PlaylistName: "X", TrackIndices: []int{}},
			wantOK: true,
		},
		{name: "unknown verb", raw: map[string]any{"action": "shuffle", "playlist_name": "X"}},
		{name: "verb is case-sensitive", raw: map[string]any{"action": "Create", "playlist_name": "X"}},
		{name: "missing verb", raw: map[string]any{"playlist_name": "X"}},
		{name: "non-string verb", raw: map[string]any{"action": 1.0}},
		{name: "not an object", raw: []any{"create"}},
		{name: "nil", raw: nil},
		{
			name:   "typed action",
			raw:    PlaylistAction{Kind: ActionAdd, PlaylistName: " Mix ", TrackIndices: []int{1}},
			want:   &PlaylistAction{Kind: ActionAdd, PlaylistName: "Mix", TrackIndices: []int{1}},
			wantOK: true,
		},
		{name: "typed action with bad kind", raw: &PlaylistAction{Kind: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAction(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if !tt.wantOK {
				if got != nil {
					t.Fatalf("expected nil action, got %+v", got)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("action: got %+v, want %+v", got, tt.want)
			}
		})
	}
}
