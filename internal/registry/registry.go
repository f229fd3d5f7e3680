// Package registry tracks live experiments for process-exit finalization.
//
// It is the engine's process-wide registry of not-yet-finalized
// experiments (spec.md §5's "Live registry"): an ordered collection drained
// in LIFO order so that an inner, more-recently-created experiment always
// finalizes before the outer experiment that was live when it was created.
package registry

import "sync"

type entry struct {
	id       uint64
	finalize func(forced bool)
}

// Registry is a mutex-guarded, insertion-ordered list of live experiments.
// It is not safe for concurrent registration/deregistration from multiple
// goroutines racing on the *same* entry, matching spec.md §5's single-thread
// engine assumption; the mutex only protects the registry's own bookkeeping.
type Registry struct {
	mu      sync.Mutex
	entries []*entry
	seq     uint64
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Handle identifies one registration. Deregister is idempotent: calling it
// more than once, or after DrainLIFO has already consumed the entry, is a
// no-op.
type Handle struct {
	registry *Registry
	id       uint64
}

// Register adds finalize to the registry and returns a handle that removes
// it again. finalize is invoked with forced=true when the registry is
// drained from a process-exit or panic path, forced=false for a normal
// return. finalize must be idempotent on its own terms if it can also be
// reached through an explicit Finish call racing the exit path.
func (r *Registry) Register(finalize func(forced bool)) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.entries = append(r.entries, &entry{id: r.seq, finalize: finalize})
	return &Handle{registry: r, id: r.seq}
}

// Deregister removes the handle's entry. Safe to call more than once.
func (h *Handle) Deregister() {
	r := h.registry
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.id == h.id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// Len reports the number of currently live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// DrainLIFO finalizes every entry still registered, most-recently-registered
// first, then forgets them. finalize callbacks run outside the registry's
// lock (each may itself call Deregister), so a finalize callback spawned
// concurrently with DrainLIFO is not observed twice: DrainLIFO takes a
// snapshot first, and Deregister's removal-by-id makes a late Deregister
// call from that same entry's finalize path harmless.
func (r *Registry) DrainLIFO(forced bool) {
	r.mu.Lock()
	snapshot := make([]*entry, len(r.entries))
	copy(snapshot, r.entries)
	r.entries = nil
	r.mu.Unlock()

	for i := len(snapshot) - 1; i >= 0; i-- {
		snapshot[i].finalize(forced)
	}
}
