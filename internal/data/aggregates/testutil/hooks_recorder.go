package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/atlas-backend/internal/data/aggregates"
)

// HooksRecorder keeps every write signal in arrival order.
type HooksRecorder struct {
	mu sync.Mutex

	Writes    []WriteEvent
	Conflicts []string
	Retries   []string
	Rollups   []RollupEvent
}

type WriteEvent struct {
	Op       string
	Status   string
	Duration time.Duration
}

type RollupEvent struct {
	Op        string
	Countries int
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveWrite(op, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Writes = append(h.Writes, WriteEvent{Op: op, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(op string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, op)
}

func (h *HooksRecorder) IncRetry(op string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, op)
}

func (h *HooksRecorder) ObserveRollup(op string, countries int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Rollups = append(h.Rollups, RollupEvent{Op: op, Countries: countries})
}

// Statuses lists the result codes recorded for op.
func (h *HooksRecorder) Statuses(op string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, w := range h.Writes {
		if w.Op == op {
			out = append(out, w.Status)
		}
	}
	return out
}

// RolledUp lists how many countries each committed op refreshed.
func (h *HooksRecorder) RolledUp(op string) []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []int
	for _, r := range h.Rollups {
		if r.Op == op {
			out = append(out, r.Countries)
		}
	}
	return out
}
