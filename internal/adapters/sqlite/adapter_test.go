package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestAdapter_ReadWrite(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T, a *Adapter)
		key       string
		wantFound bool
		wantValue string
	}{
		{
			name:  "missing key",
			setup: func(t *testing.T, a *Adapter) {},
			key:   "musicmate_playlists",
		},
		{
			name: "returns stored value",
			setup: func(t *testing.T, a *Adapter) {
				if err := a.Write(context.Background(), "musicmate_playlists", []byte(`[{"id":"pl-1"}]`)); err != nil {
					t.Fatalf("write: %v", err)
				}
			},
			key:       "musicmate_playlists",
			wantFound: true,
			wantValue: `[{"id":"pl-1"}]`,
		},
		{
			name: "last write wins",
			setup: func(t *testing.T, a *Adapter) {
				ctx := context.Background()
				for _, v := range []string{`"first"`, `"second"`} {
					if err := a.Write(ctx, "musicmate_session", []byte(v)); err != nil {
						t.Fatalf("write: %v", err)
					}
				}
			},
			key:       "musicmate_session",
			wantFound: true,
			wantValue: `"second"`,
		},
		{
			name: "deleted key is absent",
			setup: func(t *testing.T, a *Adapter) {
				ctx := context.Background()
				if err := a.Write(ctx, "k", []byte("v")); err != nil {
					t.Fatalf("write: %v", err)
				}
				if err := a.Delete(ctx, "k"); err != nil {
					t.Fatalf("delete: %v", err)
				}
			},
			key: "k",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAdapter(":memory:")
			if err != nil {
				t.Fatalf("new adapter: %v", err)
			}
			defer a.Close()

			tt.setup(t, a)

			got, found, err := a.Read(context.Background(), tt.key)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if found != tt.wantFound {
				t.Fatalf("found: got %v, want %v", found, tt.wantFound)
			}
			if string(got) != tt.wantValue {
				t.Fatalf("value: got %q, want %q", got, tt.wantValue)
			}
		})
	}
}

func TestAdapter_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "musicmate.db")
	ctx := context.Background()

	a, err := NewAdapter(path)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	if err := a.Write(ctx, "musicmate_messages", []byte(`[]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// reopening runs the migration again against the existing schema
	b, err := NewAdapter(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()

	got, found, err := b.Read(ctx, "musicmate_messages")
	if err != nil || !found || string(got) != `[]` {
		t.Fatalf("after reopen: got %q found=%v err=%v", got, found, err)
	}
}
