package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*MemoryStore
	calls atomic.Int32
	err   error
}

func (c *countingStore) DeleteExpired(ctx context.Context) (int, error) {
	c.calls.Add(1)
	if c.err != nil {
		return 0, c.err
	}
	return c.MemoryStore.DeleteExpired(ctx)
}

func TestSweeper_Sweep(t *testing.T) {
	t.Parallel()
	mem := NewMemory(time.Minute)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mem.now = func() time.Time { return now }
	require.NoError(t, mem.Put(context.Background(), "a", testSnapshot("a", 1)))
	now = now.Add(2 * time.Minute)

	assert.Equal(t, 1, NewSweeper(mem, time.Second).Sweep(context.Background()))
}

func TestSweeper_SweepError(t *testing.T) {
	t.Parallel()
	cs := &countingStore{MemoryStore: NewMemory(time.Minute), err: errors.New("boom")}

	assert.Equal(t, 0, NewSweeper(cs, time.Second).Sweep(context.Background()))
	assert.Equal(t, int32(1), cs.calls.Load())
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	t.Parallel()
	cs := &countingStore{MemoryStore: NewMemory(time.Minute)}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		NewSweeper(cs, 5*time.Millisecond).Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return cs.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestNewSweeper_DefaultInterval(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 5*time.Minute, NewSweeper(NewMemory(0), 0).interval)
}
