package monitor

import "sync"

// DefaultHistorySize is one minute of samples at the default interval
const DefaultHistorySize = 60

// History is a fixed-capacity ring buffer of percentages.
// Once full, each Append evicts the oldest value.
type History struct {
	mu    sync.Mutex
	buf   []float64
	start int
	size  int
}

// NewHistory creates a buffer holding at most capacity values
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{buf: make([]float64, capacity)}
}

// Append adds v as the newest value
func (h *History) Append(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = v
		h.size++
		return
	}
	h.buf[h.start] = v
	h.start = (h.start + 1) % len(h.buf)
}

// Snapshot returns a copy of the contents, oldest first
func (h *History) Snapshot() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]float64, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of stored values
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}

// Cap returns the capacity
func (h *History) Cap() int {
	return len(h.buf)
}
