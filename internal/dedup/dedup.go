// Package dedup tracks facility fingerprints seen during a single run so the
// same real-world facility surfaced by overlapping location queries is loaded
// only once. First seen wins; later sightings are dropped regardless of
// completeness.
package dedup

import "sync"

// Tracker is a run-scoped fingerprint set. Safe for concurrent use by the
// run workers. State is not persisted: a new run starts empty, and cross-run
// dedup falls out of the stable ID upsert instead.
type Tracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]struct{})}
}

// Check records the fingerprint and reports whether it was already present.
// The check and insert are a single atomic step so two workers racing on the
// same facility cannot both pass.
func (t *Tracker) Check(fingerprint string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[fingerprint]; ok {
		return true
	}
	t.seen[fingerprint] = struct{}{}
	return false
}

// Len reports how many distinct fingerprints have been seen.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
