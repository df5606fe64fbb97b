// Package session implements Engram's per-conversation bounded working
// memory (spec.md §4.8): a capacity- and decay-windowed set of active
// memory ids, and the overlap-based gate that decides whether a recall
// needs to go to the store at all.
package session

import (
	"sync"
	"time"
)

// WM is a single session's working-memory set.
type WM struct {
	mu       sync.Mutex
	active   map[string]time.Time
	capacity int
	decay    time.Duration
}

// NewWM creates a working-memory set with the given capacity (Miller's
// number, default 7) and decay window (default 300s).
func NewWM(capacity int, decay time.Duration) *WM {
	if capacity <= 0 {
		capacity = 7
	}
	return &WM{active: map[string]time.Time{}, capacity: capacity, decay: decay}
}

// Activate timestamps each id at now, then prunes (spec.md §4.8): drop
// items older than the decay window, then keep only the capacity most
// recent.
func (w *WM) Activate(ids []string, now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, id := range ids {
		w.active[id] = now
	}
	w.pruneLocked(now)
}

// Prune removes decayed and over-capacity entries without activating
// anything new.
func (w *WM) Prune(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(now)
}

func (w *WM) pruneLocked(now time.Time) {
	if w.decay > 0 {
		for id, t := range w.active {
			if now.Sub(t) >= w.decay {
				delete(w.active, id)
			}
		}
	}
	if len(w.active) <= w.capacity {
		return
	}
	type pair struct {
		id string
		t  time.Time
	}
	pairs := make([]pair, 0, len(w.active))
	for id, t := range w.active {
		pairs = append(pairs, pair{id, t})
	}
	// Selection by partial sort: keep the capacity most-recent.
	for len(pairs) > w.capacity {
		oldestIdx := 0
		for i := 1; i < len(pairs); i++ {
			if pairs[i].t.Before(pairs[oldestIdx].t) {
				oldestIdx = i
			}
		}
		delete(w.active, pairs[oldestIdx].id)
		pairs = append(pairs[:oldestIdx], pairs[oldestIdx+1:]...)
	}
}

// IDs returns the currently active ids after an implicit prune.
func (w *WM) IDs(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(now)
	out := make([]string, 0, len(w.active))
	for id := range w.active {
		out = append(out, id)
	}
	return out
}

// Len reports the current size after an implicit prune.
func (w *WM) Len(now time.Time) int {
	return len(w.IDs(now))
}

// Registry holds one WM per session id, owned by the façade (spec.md §9:
// "express as a registry owned by the Memory façade").
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*WM
	capacity int
	decay    time.Duration
}

// NewRegistry creates an empty session registry with default WM
// parameters applied to sessions created on first use.
func NewRegistry(capacity int, decay time.Duration) *Registry {
	return &Registry{sessions: map[string]*WM{}, capacity: capacity, decay: decay}
}

// Get returns the WM for sessionID, creating it if necessary.
func (r *Registry) Get(sessionID string) *WM {
	r.mu.Lock()
	defer r.mu.Unlock()
	wm, ok := r.sessions[sessionID]
	if !ok {
		wm = NewWM(r.capacity, r.decay)
		r.sessions[sessionID] = wm
	}
	return wm
}

// ClearSession removes a session's working memory entirely.
func (r *Registry) ClearSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// ListSessions returns all known session ids.
func (r *Registry) ListSessions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		out = append(out, id)
	}
	return out
}

// GateReason explains why NeedsRecall decided as it did.
type GateReason string

const (
	EmptyWM         GateReason = "empty_wm"
	TopicChange     GateReason = "topic_change"
	TopicContinuous GateReason = "topic_continuous"
)

// ProbeFunc runs a cheap recall (limit=3, graph_expand=false) and returns
// the resulting memory ids, without touching access logs or WM state.
type ProbeFunc func(query string) ([]string, error)

// NeighborFunc returns a memory's Hebbian neighbor ids.
type NeighborFunc func(id string) []string

// NeedsRecall implements the gate (spec.md §4.8). It activates nothing in
// wm (reading its ids prunes decayed entries, as IDs does); the caller
// decides what to activate based on the outcome.
func NeedsRecall(wm *WM, now time.Time, query string, probe ProbeFunc, neighborsOf NeighborFunc, overlapMin float64) (bool, GateReason, []string, error) {
	current := wm.IDs(now)
	if len(current) == 0 {
		return true, EmptyWM, nil, nil
	}

	universe := map[string]bool{}
	for _, id := range current {
		universe[id] = true
		for _, n := range neighborsOf(id) {
			universe[n] = true
		}
	}

	probeResults, err := probe(query)
	if err != nil {
		return true, TopicChange, nil, err
	}
	if len(probeResults) == 0 {
		return true, EmptyWM, probeResults, nil
	}

	matches := 0
	for _, id := range probeResults {
		if universe[id] {
			matches++
		}
	}
	overlap := float64(matches) / float64(len(probeResults))

	if overlap < overlapMin {
		return true, TopicChange, probeResults, nil
	}
	return false, TopicContinuous, probeResults, nil
}
