package engine

import (
	"sync"

	"github.com/shopspring/decimal"
)

const defaultHistorySize = 10

// HistoryBuffer keeps the most recent crash multipliers, newest first,
// bounded to a fixed capacity. PushFront evicts the oldest entry on
// overflow.
type HistoryBuffer struct {
	mu   sync.RWMutex
	vals []decimal.Decimal
	size int
}

func NewHistoryBuffer(size int) *HistoryBuffer {
	if size <= 0 {
		size = defaultHistorySize
	}
	return &HistoryBuffer{size: size}
}

func (h *HistoryBuffer) PushFront(v decimal.Decimal) {
	h.mu.Lock()
	defer h.mu.Unlock()

	vals := make([]decimal.Decimal, 0, h.size)
	vals = append(vals, v)
	vals = append(vals, h.vals...)
	if len(vals) > h.size {
		vals = vals[:h.size]
	}
	h.vals = vals
}

// Snapshot returns the buffered multipliers most-recent-first.
func (h *HistoryBuffer) Snapshot() []decimal.Decimal {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]decimal.Decimal(nil), h.vals...)
}

func (h *HistoryBuffer) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.vals)
}
