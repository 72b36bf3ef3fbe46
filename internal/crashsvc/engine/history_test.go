package engine

import (
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHistoryBuffer_PushFrontOrdersNewestFirst(t *testing.T) {
	h := NewHistoryBuffer(10)

	h.PushFront(dec("1.10"))
	h.PushFront(dec("2.50"))
	h.PushFront(dec("1.75"))

	snap := h.Snapshot()
	assert.Len(t, snap, 3)
	assert.True(t, snap[0].Equal(dec("1.75")))
	assert.True(t, snap[1].Equal(dec("2.50")))
	assert.True(t, snap[2].Equal(dec("1.10")))
}

func TestHistoryBuffer_EvictsOldestBeyondCapacity(t *testing.T) {
	h := NewHistoryBuffer(10)

	for i := 1; i <= 15; i++ {
		h.PushFront(decimal.NewFromInt(int64(i)))
	}

	snap := h.Snapshot()
	assert.Len(t, snap, 10)
	// 10 most recent pushes, most-recent-first: 15, 14, ..., 6
	for i, v := range snap {
		assert.True(t, v.Equal(decimal.NewFromInt(int64(15-i))), "index %d: %s", i, v)
	}
}

func TestHistoryBuffer_SnapshotIsACopy(t *testing.T) {
	h := NewHistoryBuffer(10)
	h.PushFront(dec("1.50"))

	snap := h.Snapshot()
	snap[0] = dec("9.99")

	assert.True(t, h.Snapshot()[0].Equal(dec("1.50")))
}

func TestHistoryBuffer_ConcurrentPushAndSnapshot(t *testing.T) {
	h := NewHistoryBuffer(10)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			h.PushFront(decimal.NewFromInt(int64(i)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			snap := h.Snapshot()
			if len(snap) > 10 {
				t.Errorf("snapshot holds %d elements", len(snap))
				return
			}
		}
	}()
	wg.Wait()

	assert.Equal(t, 10, h.Len())
}

func TestHistoryBuffer_ZeroSizeFallsBackToDefault(t *testing.T) {
	h := NewHistoryBuffer(0)
	for i := 0; i < 20; i++ {
		h.PushFront(decimal.NewFromInt(int64(i)))
	}
	assert.Equal(t, defaultHistorySize, h.Len(), fmt.Sprintf("want default capacity %d", defaultHistorySize))
}
