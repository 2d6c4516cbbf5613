package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/okian/storyarc/internal/domain/game"
)

func testGame(id string) Game {
	return Game{GameID: id, League: game.LeagueNBA}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, testGame("game1")) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	gameChan := q.Dequeue(ctx)
	g := <-gameChan
	if g.GameID != "game1" {
		t.Errorf("expected game1, got %v", g.GameID)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, testGame("game1")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, testGame("game2")) {
		t.Error("expected enqueue to succeed")
	}

	// Enqueue when full must be rejected, not block.
	if q.Enqueue(ctx, testGame("game3")) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()
	numGoroutines := 10
	numGames := 100

	done := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			for j := 0; j < numGames; j++ {
				g := testGame(fmt.Sprintf("game%d_%d", id, j))
				for !q.Enqueue(ctx, g) {
					time.Sleep(time.Millisecond)
				}
			}
			done <- true
		}(i)
	}

	consumed := make(chan string, numGoroutines*numGames)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			for g := range q.Dequeue(ctx) {
				consumed <- g.GameID
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	time.Sleep(100 * time.Millisecond)

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected final length 0, got %d", l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, testGame("game1")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, testGame("game2")) {
		t.Error("expected enqueue to succeed")
	}

	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}

	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}

	if q.Enqueue(ctx, testGame("game3")) {
		t.Error("expected enqueue to fail after closing")
	}

	// Drain: the dequeue channel must deliver the buffered games and then
	// close.
	gameChan := q.Dequeue(ctx)
	timeout := time.After(100 * time.Millisecond)
	received := 0
	for {
		select {
		case _, ok := <-gameChan:
			if !ok {
				if received != 2 {
					t.Errorf("expected 2 buffered games before close, got %d", received)
				}
				goto channelClosed
			}
			received++
		case <-timeout:
			t.Error("expected dequeue channel to be closed within timeout")
			return
		}
	}
channelClosed:

	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
