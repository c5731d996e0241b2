// Package lifecycle tracks the append-only milestone history of one session.
package lifecycle

import (
	"fmt"
	"sync"
)

type Milestone string

const (
	MilestoneProcessing Milestone = "processing"
	MilestoneJoined     Milestone = "joined"
	MilestoneFinished   Milestone = "finished"
	MilestoneFailed     Milestone = "failed"
)

// Terminal reports whether a milestone ends the session history.
func (m Milestone) Terminal() bool {
	return m == MilestoneFinished || m == MilestoneFailed
}

// Valid reports whether m is one of the known milestones.
func (m Milestone) Valid() bool {
	switch m {
	case MilestoneProcessing, MilestoneJoined, MilestoneFinished, MilestoneFailed:
		return true
	}
	return false
}

// History is the ordered milestone sequence reported externally for a session.
// Milestones are only appended; the single permitted rewrite is
// DowngradeFinished, which turns a terminal "finished" into "failed" after an
// unsuccessful final upload.
type History struct {
	mu         sync.Mutex
	milestones []Milestone
}

// Append records a milestone. It returns an error for unknown milestones or
// appends after a terminal milestone has been recorded.
func (h *History) Append(m Milestone) error {
	if !m.Valid() {
		return fmt.Errorf("unknown milestone %q", m)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.milestones); n > 0 && h.milestones[n-1].Terminal() {
		return fmt.Errorf("cannot append %q after terminal %q", m, h.milestones[n-1])
	}
	h.milestones = append(h.milestones, m)
	return nil
}

// Contains reports whether m appears anywhere in the history.
func (h *History) Contains(m Milestone) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, have := range h.milestones {
		if have == m {
			return true
		}
	}
	return false
}

// Latest returns the most recent milestone, or "" for an empty history.
func (h *History) Latest() Milestone {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.milestones) == 0 {
		return ""
	}
	return h.milestones[len(h.milestones)-1]
}

// DowngradeFinished rewrites a terminal "finished" to "failed" in place and
// reports whether a rewrite happened. This is the only retroactive mutation
// the history permits.
func (h *History) DowngradeFinished() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.milestones)
	if n == 0 || h.milestones[n-1] != MilestoneFinished {
		return false
	}
	h.milestones[n-1] = MilestoneFailed
	return true
}

// Snapshot returns a copy of the milestone sequence.
func (h *History) Snapshot() []Milestone {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Milestone, len(h.milestones))
	copy(out, h.milestones)
	return out
}
