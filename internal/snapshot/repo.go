// Package snapshot keeps the recent analysis history of every livestream room.
package snapshot

import (
	"sync"
	"time"

	"livescore/internal/analysis"
	"livescore/internal/utils"
)

// NotFoundError is returned when a room has no stored snapshots.
type NotFoundError struct {
	message string
}

// Error returns the error text.
func (e *NotFoundError) Error() string {
	return e.message
}

// NewNotFoundError creates a NotFoundError for room.
func NewNotFoundError(room string) *NotFoundError {
	return &NotFoundError{message: "snapshot not found: " + room}
}

// Repository is a thread-safe store of analysis snapshots with expiry of idle rooms.
// Every room owns a ring buffer of fixed length, so only the most recent snapshots
// are retained. Rooms that received no snapshot for longer than ttl are removed by
// the background sweeper started with Serve.
//
//	repo := snapshot.NewRepository(10, 30*time.Minute)
//	go repo.Serve()
//	defer repo.Stop()
//	repo.Append("room-42", snap)
type Repository struct {
	length int           // snapshots kept per room
	ttl    time.Duration // idle time after which a room is dropped; 0 keeps rooms forever

	rooms   map[string]*utils.RingBuffer[*analysis.Snapshot]
	updates map[string]time.Time // last append per room
	mu      sync.RWMutex

	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
}

// NewRepository creates a repository keeping length snapshots per room.
func NewRepository(length int, ttl time.Duration) *Repository {
	return &Repository{
		length:        length,
		ttl:           ttl,
		rooms:         make(map[string]*utils.RingBuffer[*analysis.Snapshot]),
		updates:       make(map[string]time.Time),
		sweepInterval: time.Minute,
		stop:          make(chan struct{}),
	}
}

// Append stores snap as the newest snapshot of room and refreshes the room's idle timer.
// Lookup, push and timestamp update form one critical section with sweep.
func (r *Repository) Append(room string, snap *analysis.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	buffer, found := r.rooms[room]
	if !found {
		buffer = utils.NewRingBuffer[*analysis.Snapshot](r.length)
		r.rooms[room] = buffer
	}
	buffer.Push(snap)
	r.updates[room] = time.Now()
}

// Latest returns the newest snapshot of room.
func (r *Repository) Latest(room string) (*analysis.Snapshot, error) {
	r.mu.RLock()
	buffer, found := r.rooms[room]
	r.mu.RUnlock()
	if !found {
		return nil, NewNotFoundError(room)
	}

	snap, ok := buffer.Last()
	if !ok {
		return nil, NewNotFoundError(room)
	}
	return snap, nil
}

// History returns the retained snapshots of room from oldest to newest.
func (r *Repository) History(room string) ([]*analysis.Snapshot, error) {
	r.mu.RLock()
	buffer, found := r.rooms[room]
	r.mu.RUnlock()
	if !found {
		return nil, NewNotFoundError(room)
	}
	return buffer.ToSlice(), nil
}

// Rooms returns the number of rooms currently held.
func (r *Repository) Rooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Serve periodically removes idle rooms until Stop is called. It blocks and is
// meant to run in its own goroutine.
func (r *Repository) Serve() {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.sweep(now)
		}
	}
}

// Stop terminates Serve. It is safe to call more than once, and before Serve.
func (r *Repository) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// sweep drops rooms idle for longer than ttl at the given moment.
func (r *Repository) sweep(now time.Time) {
	if r.ttl <= 0 {
		return
	}

	var outdated []string

	r.mu.RLock()
	for room, ts := range r.updates {
		if now.Sub(ts) > r.ttl {
			outdated = append(outdated, room)
		}
	}
	r.mu.RUnlock()

	if len(outdated) == 0 {
		return
	}

	r.mu.Lock()
	for _, room := range outdated {
		// the room may have been refreshed between the two locks
		if now.Sub(r.updates[room]) > r.ttl {
			delete(r.rooms, room)
			delete(r.updates, room)
		}
	}
	r.mu.Unlock()
}
