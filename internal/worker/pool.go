// Package worker provides background persistence for the conversation store.
package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/musicmate/internal/core/ports"
)

const writeTimeout = 30 * time.Second

// Job asks the worker to flush the latest pending value of Key.
type Job struct {
	Key string
}

type entry struct {
	value  []byte
	seq    uint64
	queued bool
}

// Pool is a write-behind ports.KVStore. Writes return as soon as they are
// queued; reads see queued values before they reach the backing store.
// Repeated writes to a key that is still queued collapse into one job.
type Pool struct {
	store  ports.KVStore
	logger *zap.Logger
	jobs   chan Job
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[string]*entry
	seq     uint64

	// sendMu guards jobs against being closed during a send.
	sendMu sync.RWMutex
	closed bool
}

// NewPool wraps store with a queue of the given size.
func NewPool(store ports.KVStore, queueSize int, logger *zap.Logger) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		store:   store,
		logger:  logger,
		jobs:    make(chan Job, queueSize),
		pending: make(map[string]*entry),
	}
}

// Start launches the worker goroutine. A single worker keeps writes to the
// backing store in submission order.
func (p *Pool) Start() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for job := range p.jobs {
			p.processJob(job)
		}
	}()
}

// Stop drains the queue and waits for the worker, or until ctx is done.
func (p *Pool) Stop(ctx context.Context) error {
	p.sendMu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.sendMu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return p.flushRemaining(ctx)
	case <-ctx.Done():
		p.logger.Warn("worker: stop timed out with writes pending", zap.Int("pending", p.Pending()))
		return ctx.Err()
	}
}

func (p *Pool) Read(ctx context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	e, ok := p.pending[key]
	if ok {
		v := append([]byte(nil), e.value...)
		p.mu.Unlock()
		return v, true, nil
	}
	p.mu.Unlock()

	return p.store.Read(ctx, key)
}

// Write queues value for key. After Stop it writes through synchronously.
func (p *Pool) Write(ctx context.Context, key string, value []byte) error {
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()

	if p.closed {
		return p.store.Write(ctx, key, value)
	}

	p.mu.Lock()
	p.seq++
	e, ok := p.pending[key]
	if !ok {
		e = &entry{}
		p.pending[key] = e
	}
	e.value = append([]byte(nil), value...)
	e.seq = p.seq
	enqueue := !e.queued
	e.queued = true
	p.mu.Unlock()

	if !enqueue {
		return nil
	}

	select {
	case p.jobs <- Job{Key: key}:
		return nil
	case <-ctx.Done():
		// leave the value pending; the next write to key enqueues it again
		p.mu.Lock()
		if cur, ok := p.pending[key]; ok {
			cur.queued = false
		}
		p.mu.Unlock()
		return ctx.Err()
	}
}

// flushRemaining writes values whose enqueue was abandoned by a cancelled
// Write. It runs after the worker has exited.
func (p *Pool) flushRemaining(ctx context.Context) error {
	p.mu.Lock()
	left := make(map[string][]byte, len(p.pending))
	for k, e := range p.pending {
		left[k] = e.value
	}
	p.pending = make(map[string]*entry)
	p.mu.Unlock()

	var firstErr error
	for k, v := range left {
		if err := p.store.Write(ctx, k, v); err != nil {
			p.logger.Warn("worker: final flush failed", zap.String("key", k), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Pending reports how many keys have values not yet written.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

func (p *Pool) processJob(job Job) {
	p.mu.Lock()
	e, ok := p.pending[job.Key]
	if !ok {
		p.mu.Unlock()
		return
	}
	value := e.value
	seq := e.seq
	e.queued = false
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	err := p.store.Write(ctx, job.Key, value)
	cancel()

	if err != nil {
		p.logger.Warn("worker: write failed", zap.String("key", job.Key), zap.Error(err))
	} else {
		p.logger.Debug("worker: flushed", zap.String("key", job.Key), zap.Int("bytes", len(value)))
	}

	p.mu.Lock()
	if cur, ok := p.pending[job.Key]; ok && cur.seq == seq {
		delete(p.pending, job.Key)
	}
	p.mu.Unlock()
}
