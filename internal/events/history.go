package events

import "sync"

// history is a bounded FIFO of published events. When full, the oldest
// entry is overwritten.
type history struct {
	mu       sync.RWMutex
	events   []Event
	head     int
	count    int
	capacity int
}

func newHistory(capacity int) *history {
	return &history{
		events:   make([]Event, capacity),
		capacity: capacity,
	}
}

func (h *history) Add(evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == h.capacity {
		h.events[h.head] = evt
		h.head = (h.head + 1) % h.capacity
		return
	}
	h.events[(h.head+h.count)%h.capacity] = evt
	h.count++
}

// Recent returns up to limit of the most recent events whose type
// matches pattern (empty pattern means no filter), oldest first.
func (h *history) Recent(pattern string, limit int) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.count == 0 || limit <= 0 {
		return nil
	}
	var picked []Event
	for i := h.count - 1; i >= 0 && len(picked) < limit; i-- {
		evt := h.events[(h.head+i)%h.capacity]
		if pattern != "" && !Match(pattern, evt.EventType) {
			continue
		}
		picked = append(picked, evt)
	}
	// collected newest-first; flip back to chronological order
	for i, j := 0, len(picked)-1; i < j; i, j = i+1, j-1 {
		picked[i], picked[j] = picked[j], picked[i]
	}
	return picked
}

func (h *history) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
