package snapshot

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"livescore/internal/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(id string) *analysis.Snapshot {
	return &analysis.Snapshot{ID: id}
}

func TestNewRepository(t *testing.T) {
	repo := NewRepository(5, 10*time.Minute)

	assert.Equal(t, 5, repo.length)
	assert.Equal(t, 10*time.Minute, repo.ttl)
	assert.Equal(t, 0, repo.Rooms())
}

func TestRepository_AppendAndLatest(t *testing.T) {
	repo := NewRepository(2, 0)

	repo.Append("room1", snap("s1"))
	repo.Append("room1", snap("s2"))

	latest, err := repo.Latest("room1")
	require.NoError(t, err)
	assert.Equal(t, "s2", latest.ID)

	history, err := repo.History("room1")
	require.NoError(t, err)
	assert.Equal(t, []*analysis.Snapshot{snap("s1"), snap("s2")}, history)

	// a third snapshot evicts the first one
	repo.Append("room1", snap("s3"))
	history, _ = repo.History("room1")
	assert.Equal(t, []*analysis.Snapshot{snap("s2"), snap("s3")}, history)
}

func TestRepository_NotFound(t *testing.T) {
	repo := NewRepository(2, 0)

	_, err := repo.Latest("unknown")
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "snapshot not found: unknown")

	_, err = repo.History("unknown")
	assert.ErrorAs(t, err, &notFound)
}

func TestRepository_RoomsAreIndependent(t *testing.T) {
	repo := NewRepository(2, 0)

	repo.Append("room1", snap("a1"))
	repo.Append("room1", snap("a2"))
	repo.Append("room1", snap("a3"))
	repo.Append("room2", snap("b1"))

	h1, _ := repo.History("room1")
	h2, _ := repo.History("room2")
	assert.Len(t, h1, 2)
	assert.Len(t, h2, 1)
	assert.Equal(t, 2, repo.Rooms())
}

func TestRepository_Sweep(t *testing.T) {
	repo := NewRepository(2, time.Minute)
	repo.Append("stale", snap("s"))
	repo.Append("fresh", snap("f"))

	repo.mu.Lock()
	repo.updates["stale"] = time.Now().Add(-2 * time.Minute)
	repo.mu.Unlock()

	repo.sweep(time.Now())

	_, err := repo.Latest("stale")
	assert.Error(t, err)
	_, err = repo.Latest("fresh")
	assert.NoError(t, err)
}

func TestRepository_SweepDisabledWithoutTTL(t *testing.T) {
	repo := NewRepository(2, 0)
	repo.Append("room", snap("s"))

	repo.sweep(time.Now().Add(24 * time.Hour))

	assert.Equal(t, 1, repo.Rooms())
}

func TestRepository_ServeAndStop(t *testing.T) {
	repo := NewRepository(2, time.Millisecond)
	repo.sweepInterval = 5 * time.Millisecond
	repo.Append("room", snap("s"))

	done := make(chan struct{})
	go func() {
		repo.Serve()
		close(done)
	}()

	assert.Eventually(t, func() bool { return repo.Rooms() == 0 }, time.Second, 5*time.Millisecond)

	repo.Stop()
	repo.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after Stop")
	}
}

func TestRepository_ConcurrentAppend(t *testing.T) {
	repo := NewRepository(100, 0)
	iterations := 500

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(room string) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				repo.Append(room, snap(fmt.Sprintf("%s-%d", room, j)))
			}
		}(fmt.Sprintf("room-%d", i))
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		room := fmt.Sprintf("room-%d", i)
		latest, err := repo.Latest(room)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%s-%d", room, iterations-1), latest.ID)
	}
}

func TestRepository_AppendRacingSweep(t *testing.T) {
	repo := NewRepository(4, time.Nanosecond)
	future := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			repo.Append(fmt.Sprintf("room-%d", i%5), snap(fmt.Sprintf("s-%d", i)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			repo.sweep(future)
		}
	}()
	wg.Wait()

	// every timestamped room must own the buffer its snapshots went into
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	assert.Len(t, repo.rooms, len(repo.updates))
	for room := range repo.updates {
		assert.Contains(t, repo.rooms, room)
	}
}

func TestRepository_AppendAfterSweepIsVisible(t *testing.T) {
	repo := NewRepository(2, time.Minute)
	repo.Append("room", snap("old"))
	repo.sweep(time.Now().Add(time.Hour))
	require.Equal(t, 0, repo.Rooms())

	repo.Append("room", snap("new"))

	latest, err := repo.Latest("room")
	require.NoError(t, err)
	assert.Equal(t, "new", latest.ID)
}
