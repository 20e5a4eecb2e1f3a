// Package icons downloads achievement icons, one at a time, fanning each
// result out to every view record waiting on the same icon key.
package icons

import (
	"bytes"
	"context"
	"image"

	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
)

// FallbackIndex is the cache index assigned when a fetch or decode fails.
// The presentation layer maps it to its built-in placeholder image.
const FallbackIndex = 0

// Fetcher retrieves the raw bytes of one icon.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

type fetchResult struct {
	token uuid.UUID
	key   string
	data  []byte
	err   error
}

// Queue holds distinct icon keys awaiting download. At most one fetch is in
// flight; completions land on an internal channel and are applied by Poll
// from the owning cooperative thread. Queue itself is not safe for
// concurrent use.
type Queue struct {
	fetcher Fetcher

	pending []string
	waiting map[string][]func(int)
	cache   map[string]int
	images  []image.Image

	inflight uuid.UUID
	cancel   context.CancelFunc
	results  chan fetchResult
}

// NewQueue creates an empty queue backed by fetcher. Cache index 0 is
// reserved for the fallback image.
func NewQueue(fetcher Fetcher) *Queue {
	return &Queue{
		fetcher: fetcher,
		waiting: make(map[string][]func(int)),
		cache:   make(map[string]int),
		images:  make([]image.Image, 1),
		results: make(chan fetchResult, 1),
	}
}

// Enqueue registers interest in an icon. A resolved key assigns its cache
// index immediately; a pending key adds one more waiter; a new key joins
// the FIFO and starts the pump.
func (q *Queue) Enqueue(key string, assign func(index int)) {
	if idx, ok := q.cache[key]; ok {
		assign(idx)
		return
	}
	if _, ok := q.waiting[key]; ok {
		q.waiting[key] = append(q.waiting[key], assign)
		return
	}

	q.waiting[key] = []func(int){assign}
	q.pending = append(q.pending, key)
	q.pump()
}

// pump issues the next fetch unless one is already in flight. Keys whose
// waiters vanished (resolved by a reset race) are skipped.
func (q *Queue) pump() {
	for q.inflight == uuid.Nil && len(q.pending) > 0 {
		key := q.pending[0]
		q.pending = q.pending[1:]

		if len(q.waiting[key]) == 0 {
			delete(q.waiting, key)
			continue
		}

		token := uuid.New()
		q.inflight = token

		ctx, cancel := context.WithCancel(context.Background())
		q.cancel = cancel

		go func() {
			data, err := q.fetcher.Fetch(ctx, key)
			q.results <- fetchResult{token: token, key: key, data: data, err: err}
		}()
		return
	}
}

// Poll applies at most one completed fetch. It must be called from the
// owning cooperative thread. Completions issued before the last Reset carry
// a stale token and are dropped without touching any consumer. Returns true
// when a completion was consumed.
func (q *Queue) Poll() bool {
	var res fetchResult
	select {
	case res = <-q.results:
	default:
		return false
	}

	if res.token != q.inflight {
		return true
	}

	q.inflight = uuid.Nil
	q.cancel = nil

	idx := FallbackIndex
	if res.err == nil {
		if img, _, err := image.Decode(bytes.NewReader(res.data)); err == nil {
			q.images = append(q.images, img)
			idx = len(q.images) - 1
		}
	}
	q.cache[res.key] = idx

	for _, assign := range q.waiting[res.key] {
		assign(idx)
	}
	delete(q.waiting, res.key)

	q.pump()
	return true
}

// Reset cancels any in-flight fetch and discards the FIFO, all waiters and
// the resolved cache. Discarded waiters are never notified, and a late
// completion from before the reset is ignored.
func (q *Queue) Reset() {
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	q.inflight = uuid.Nil
	q.pending = nil
	q.waiting = make(map[string][]func(int))
	q.cache = make(map[string]int)
	q.images = q.images[:1]

	// Free the result buffer so the next fetch is never blocked behind a
	// stale completion.
	select {
	case <-q.results:
	default:
	}
}

// Remaining counts keys still awaiting resolution, including the in-flight
// one.
func (q *Queue) Remaining() int {
	n := len(q.pending)
	if q.inflight != uuid.Nil {
		n++
	}
	return n
}

// Image returns the decoded image at a cache index, nil for the fallback.
func (q *Queue) Image(index int) image.Image {
	if index < 0 || index >= len(q.images) {
		return nil
	}
	return q.images[index]
}
