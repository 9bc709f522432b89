// Package queue limits how many scenes are generated at once. Clients beyond
// the limit wait in line and, when they have a connection, receive position
// updates.
package queue

import (
	"context"
	"sync"
)

// DefaultSlots is the number of concurrent generations when none is given.
const DefaultSlots = 4

// MessageQueue is the type of position update messages.
const MessageQueue = "queue"

// Conn receives position updates. A nil Conn waits silently.
type Conn interface {
	WriteJSON(v interface{}) error
}

// Waiter represents a client in the waiting queue.
type Waiter struct {
	ID    string
	Conn  Conn
	ready chan struct{}
}

// WaitingQueue hands out a fixed number of generation slots in arrival
// order.
type WaitingQueue struct {
	waiters []*Waiter
	mu      sync.Mutex
	slots   int
	running int
}

// NewWaitingQueue creates a queue with the given number of slots. A value
// below 1 uses DefaultSlots.
func NewWaitingQueue(slots int) *WaitingQueue {
	if slots < 1 {
		slots = DefaultSlots
	}
	return &WaitingQueue{
		waiters: make([]*Waiter, 0),
		slots:   slots,
	}
}

// Acquire blocks until a slot is free or ctx is done. The returned release
// function frees the slot and may be called more than once.
func (q *WaitingQueue) Acquire(ctx context.Context, id string, conn Conn) (func(), error) {
	q.mu.Lock()
	if q.running < q.slots && len(q.waiters) == 0 {
		q.running++
		q.mu.Unlock()
		return q.releaser(), nil
	}

	w := &Waiter{ID: id, Conn: conn, ready: make(chan struct{})}
	q.waiters = append(q.waiters, w)
	q.broadcastLocked()
	q.mu.Unlock()

	select {
	case <-w.ready:
		return q.releaser(), nil
	case <-ctx.Done():
		q.mu.Lock()
		if q.removeLocked(w) {
			q.broadcastLocked()
			q.mu.Unlock()
			return nil, ctx.Err()
		}
		q.mu.Unlock()
		// the slot was granted while ctx finished
		q.releaser()()
		return nil, ctx.Err()
	}
}

func (q *WaitingQueue) releaser() func() {
	var once sync.Once
	return func() {
		once.Do(q.release)
	}
}

func (q *WaitingQueue) release() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.running--
	if len(q.waiters) == 0 {
		return
	}

	next := q.waiters[0]
	q.waiters = q.waiters[1:]
	q.running++
	close(next.ready)
	q.broadcastLocked()
}

func (q *WaitingQueue) removeLocked(w *Waiter) bool {
	for i, u := range q.waiters {
		if u == w {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			return true
		}
	}
	return false
}

// GetPosition returns the position of a waiter in the queue (1-indexed).
// Returns 0 and false if the waiter is not found.
func (q *WaitingQueue) GetPosition(id string) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, u := range q.waiters {
		if u.ID == id {
			return i + 1, true
		}
	}
	return 0, false
}

// Len returns the number of waiting clients.
func (q *WaitingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}

// Running returns the number of slots in use.
func (q *WaitingQueue) Running() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// BroadcastPositions sends position updates to all waiters.
func (q *WaitingQueue) BroadcastPositions() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.broadcastLocked()
}

func (q *WaitingQueue) broadcastLocked() {
	total := len(q.waiters)
	for i, w := range q.waiters {
		if w.Conn != nil {
			_ = w.Conn.WriteJSON(map[string]interface{}{
				"type":     MessageQueue,
				"position": i + 1,
				"total":    total,
			})
		}
	}
}
