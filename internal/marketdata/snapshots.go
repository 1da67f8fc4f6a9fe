package marketdata

import (
	"fmt"
	"sync"
)

// snapshotCapacity bounds the per-market history; only the most recent
// captures are kept.
const snapshotCapacity = 10

// SnapshotHistory is a bounded ring of order book snapshots keyed by
// exchange+symbol. Safe for concurrent use.
type SnapshotHistory struct {
	mu       sync.RWMutex
	capacity int
	buffers  map[string][]Snapshot
}

// NewSnapshotHistory creates an empty history with the default capacity.
func NewSnapshotHistory() *SnapshotHistory {
	return &SnapshotHistory{
		capacity: snapshotCapacity,
		buffers:  make(map[string][]Snapshot),
	}
}

func snapshotKey(exchange, symbol string) string {
	return fmt.Sprintf("%s_%s", exchange, symbol)
}

// Append records a snapshot for the market, evicting the oldest entry
// once the ring is full.
func (h *SnapshotHistory) Append(exchange, symbol string, snap Snapshot) {
	key := snapshotKey(exchange, symbol)

	h.mu.Lock()
	defer h.mu.Unlock()
	buf := append(h.buffers[key], snap)
	if len(buf) > h.capacity {
		buf = buf[len(buf)-h.capacity:]
	}
	h.buffers[key] = buf
}

// Recent returns the stored snapshots for the market, oldest first.
// An unknown market yields an empty slice, never nil.
func (h *SnapshotHistory) Recent(exchange, symbol string) []Snapshot {
	key := snapshotKey(exchange, symbol)

	h.mu.RLock()
	defer h.mu.RUnlock()
	buf := h.buffers[key]
	out := make([]Snapshot, len(buf))
	copy(out, buf)
	return out
}
