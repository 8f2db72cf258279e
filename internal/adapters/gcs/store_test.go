package gcs

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	data     map[string][]byte
	readErr  error
	writeErr error
}

func (f *fakeObjects) read(_ context.Context, name string) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	v, ok := f.data[name]
	if !ok {
		return nil, storage.ErrObjectNotExist
	}
	return v, nil
}

func (f *fakeObjects) write(_ context.Context, name string, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.data[name] = data
	return nil
}

func newTestStore(prefix string) (*Store, *fakeObjects) {
	objs := &fakeObjects{data: map[string][]byte{}}
	return &Store{bucket: objs, prefix: prefix, timeout: time.Second}, objs
}

func TestStore_ObjectNames(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{prefix: "", want: "musicmate_playlists.json"},
		{prefix: "users/demo", want: "users/demo/musicmate_playlists.json"},
		{prefix: "users/demo/", want: "users/demo/musicmate_playlists.json"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			s, objs := newTestStore(tt.prefix)
			require.NoError(t, s.Write(context.Background(), "musicmate_playlists", []byte(`[]`)))
			assert.Contains(t, objs.data, tt.want)
		})
	}
}

func TestStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore("p")

	_, found, err := s.Read(ctx, "musicmate_session")
	require.NoError(t, err)
	assert.False(t, found, "a missing object reads as absent")

	require.NoError(t, s.Write(ctx, "musicmate_session", []byte(`"abc"`)))
	got, found, err := s.Read(ctx, "musicmate_session")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `"abc"`, string(got))
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s, objs := newTestStore("")
	objs.readErr = errors.New("permission denied")
	objs.writeErr = errors.New("bucket gone")

	_, _, err := s.Read(ctx, "k")
	assert.ErrorContains(t, err, "permission denied")
	assert.ErrorContains(t, s.Write(ctx, "k", nil), "bucket gone")
}

// TestStore_Integration runs against a real bucket and is skipped unless
// MUSICMATE_GCS_TEST_BUCKET is set.
func TestStore_Integration(t *testing.T) {
	bucket := os.Getenv("MUSICMATE_GCS_TEST_BUCKET")
	if bucket == "" {
		t.Skip("Skipping GCS test (set MUSICMATE_GCS_TEST_BUCKET to enable)")
	}

	ctx := context.Background()
	s, err := NewStore(ctx, bucket, "musicmate-test", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	require.NoError(t, err)
	defer s.Close()

	key := "integration_" + time.Now().Format("20060102150405")
	require.NoError(t, s.Write(ctx, key, []byte(`{"ok":true}`)))

	got, found, err := s.Read(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"ok":true}`, string(got))
}
