package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recordingKV records every write in order. When gate is non-nil each
// write waits for a token from it.
type recordingKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes []string
	gate   chan struct{}
	err    error
}

func newRecordingKV() *recordingKV {
	return &recordingKV{data: map[string][]byte{}}
}

func (r *recordingKV) Read(_ context.Context, key string) ([]byte, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[key]
	return v, ok, nil
}

func (r *recordingKV) Write(_ context.Context, key string, value []byte) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.data[key] = append([]byte(nil), value...)
	r.writes = append(r.writes, key+"="+string(value))
	return nil
}

func (r *recordingKV) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.writes...)
}

func TestPool_FlushesOnStop(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingKV()
	p := NewPool(kv, 8, nil)
	p.Start()

	require.NoError(t, p.Write(ctx, "musicmate_playlists", []byte(`[1]`)))
	require.NoError(t, p.Write(ctx, "musicmate_messages", []byte(`[2]`)))
	require.NoError(t, p.Stop(ctx))

	assert.Equal(t, 0, p.Pending())
	got, found, err := kv.Read(ctx, "musicmate_playlists")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[1]`, string(got))
	assert.Len(t, kv.snapshot(), 2)
}

func TestPool_ReadSeesPendingWrites(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingKV()
	kv.gate = make(chan struct{})
	p := NewPool(kv, 8, nil)
	p.Start()

	require.NoError(t, p.Write(ctx, "k", []byte("v1")))

	got, found, err := p.Read(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v1", string(got))

	_, found, err = kv.Read(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found, "backing store should not have the value yet")

	close(kv.gate)
	require.NoError(t, p.Stop(ctx))

	got, found, err = p.Read(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v1", string(got))
}

func TestPool_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingKV()
	kv.gate = make(chan struct{}, 16)
	p := NewPool(kv, 1, nil)
	p.Start()

	for _, v := range []string{"a", "b", "c", "d"} {
		require.NoError(t, p.Write(ctx, "k", []byte(v)))
	}
	for i := 0; i < 16; i++ {
		kv.gate <- struct{}{}
	}
	require.NoError(t, p.Stop(ctx))

	writes := kv.snapshot()
	require.NotEmpty(t, writes)
	assert.LessOrEqual(t, len(writes), 2, "queued writes to one key collapse")
	assert.Equal(t, "k=d", writes[len(writes)-1])
}

func TestPool_WriteAfterStopIsSynchronous(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingKV()
	p := NewPool(kv, 1, nil)
	p.Start()
	require.NoError(t, p.Stop(ctx))
	require.NoError(t, p.Stop(ctx), "stop is idempotent")

	require.NoError(t, p.Write(ctx, "k", []byte("late")))
	assert.Equal(t, []string{"k=late"}, kv.snapshot())
}

func TestPool_WriteErrorsAreLoggedNotReturned(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingKV()
	kv.err = errors.New("disk full")
	p := NewPool(kv, 4, nil)
	p.Start()

	assert.NoError(t, p.Write(ctx, "k", []byte("v")))
	assert.NoError(t, p.Stop(ctx))
	assert.Equal(t, 0, p.Pending())
}

func TestPool_CancelledEnqueueIsFlushedOnStop(t *testing.T) {
	kv := newRecordingKV()
	kv.gate = make(chan struct{})
	p := NewPool(kv, 1, nil)
	p.Start()

	bg := context.Background()
	// first job occupies the worker, second fills the queue
	require.NoError(t, p.Write(bg, "a", []byte("1")))
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return !p.pending["a"].queued
	}, time.Second, time.Millisecond)
	require.NoError(t, p.Write(bg, "b", []byte("2")))

	ctx, cancel := context.WithCancel(bg)
	cancel()
	err := p.Write(ctx, "c", []byte("3"))
	assert.ErrorIs(t, err, context.Canceled)

	got, found, err := p.Read(bg, "c")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "3", string(got))

	close(kv.gate)
	require.NoError(t, p.Stop(bg))
	assert.ElementsMatch(t, []string{"a=1", "b=2", "c=3"}, kv.snapshot())
}
