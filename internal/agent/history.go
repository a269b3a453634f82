package agent

import "github.com/slugpilot/slugpilot/internal/domain"

// historyCapacity bounds the per-user action history.
const historyCapacity = 100

// actionHistory is a fixed-capacity ring buffer of cycle actions. Once
// full, the oldest entry is overwritten first.
type actionHistory struct {
	buf   []domain.CycleAction
	start int // index of the oldest entry
	size  int
}

func newActionHistory(capacity int) *actionHistory {
	if capacity <= 0 {
		capacity = historyCapacity
	}
	return &actionHistory{buf: make([]domain.CycleAction, capacity)}
}

// Add appends an action, evicting the oldest when full.
func (h *actionHistory) Add(a domain.CycleAction) {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = a
		h.size++
		return
	}
	h.buf[h.start] = a
	h.start = (h.start + 1) % len(h.buf)
}

// Len returns the number of recorded actions.
func (h *actionHistory) Len() int { return h.size }

// Recent returns up to limit most recent actions, oldest first. limit <= 0
// returns everything recorded.
func (h *actionHistory) Recent(limit int) []domain.CycleAction {
	n := h.size
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.CycleAction, 0, n)
	for i := h.size - n; i < h.size; i++ {
		out = append(out, h.buf[(h.start+i)%len(h.buf)])
	}
	return out
}
