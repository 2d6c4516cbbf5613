// Package queue defines the contract for feeding games into the
// segmentation worker pool.
//
// Implementations may use channels or more advanced structures; the
// harness uses an in-memory bounded queue.
package queue

import (
	"context"
	"sync"

	"github.com/okian/storyarc/internal/domain/game"
	"github.com/okian/storyarc/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10000
	defaultBufferSize    = 10000
)

// Game is the payload type flowing through the queue.
type Game = game.Game

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a game to the queue.
	// Returns false if the queue is full and the game was not enqueued.
	Enqueue(ctx context.Context, g Game) bool

	// Dequeue returns a channel that will receive games as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Game

	// Len returns the current number of queued games.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new games
	// can be enqueued and the dequeue channel is closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	games      chan Game
	capacity   int
	bufferSize int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.games = make(chan Game, q.bufferSize)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a game to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, g Game) bool { //nolint:gocritic // hugeParam: payload is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueFullDrop()
		return false
	}

	if len(q.games) >= q.capacity {
		metrics.RecordQueueFullDrop()
		return false
	}

	select {
	case q.games <- g:
		metrics.RecordQueueEnqueue()
		currentSize := len(q.games)
		metrics.UpdateQueueSize(currentSize)
		metrics.UpdateQueueUtilization(float64(currentSize) / float64(q.capacity))
		return true
	case <-ctx.Done():
		return false
	default:
		metrics.RecordQueueFullDrop()
		return false
	}
}

// Dequeue returns a channel that will receive games as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Game {
	out := make(chan Game)
	go func() {
		defer close(out)
		for g := range q.games {
			select {
			case out <- g:
				metrics.RecordQueueDequeue()
				currentSize := len(q.games)
				metrics.UpdateQueueSize(currentSize)
				metrics.UpdateQueueUtilization(float64(currentSize) / float64(q.capacity))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued games.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.games)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.games)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
