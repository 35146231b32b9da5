package router

import "sync"

// keyedMutex serializes message handling per phone identifier so two
// near-simultaneous webhook deliveries from the same user cannot interleave
// session writes. Cross-process deliveries still race (last writer wins).
//
// Entries are never evicted: the map holds one mutex per distinct phone seen
// by this process, bounded by the user population. A few dozen bytes per
// user; revisit with an LRU only if the user table outgrows process memory.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[string]*sync.Mutex)
	}
	m, ok := k.entries[key]
	if !ok {
		m = &sync.Mutex{}
		k.entries[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
