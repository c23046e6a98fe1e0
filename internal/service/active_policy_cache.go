package service

import (
	"sync"

	"github.com/authzgate/authzgate/internal/domain/policy"
)

// ActivePolicyCache is a process-wide single-slot holder for the active
// policy. It is populated lazily by DecisionService on a cache miss and
// replaced by PolicyRegistry.Activate, which is the sole writer allowed to
// unconditionally overwrite the slot.
//
// The lazy-load path races with Activate: it reads the Store's current
// active policy, which may be stale by the time it is ready to populate
// the cache (a concurrent Activate may have already run and installed a
// newer policy). Epoch is a generation counter bumped only by Activate;
// the lazy-load path snapshots the epoch before its Store read and only
// installs its result via CompareAndSet if the epoch has not moved,
// guaranteeing it never clobbers a newer activation.
type ActivePolicyCache struct {
	mu     sync.RWMutex
	active *policy.Policy
	epoch  int64
}

// NewActivePolicyCache creates an empty cache.
func NewActivePolicyCache() *ActivePolicyCache {
	return &ActivePolicyCache{}
}

// Get returns the cached policy, or nil if the slot is empty.
func (c *ActivePolicyCache) Get() *policy.Policy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Epoch returns the current generation counter. Callers populating the
// cache on a miss should read Epoch before querying the Store and pass it
// to CompareAndSet afterward.
func (c *ActivePolicyCache) Epoch() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// Set unconditionally replaces the slot and bumps the epoch. Used by
// PolicyRegistry.Activate, whose result is always authoritative.
func (c *ActivePolicyCache) Set(p *policy.Policy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = p
	c.epoch++
}

// CompareAndSet installs p only if the epoch has not advanced past
// expectedEpoch, i.e. no Activate ran concurrently with the caller's Store
// read. Returns true if the slot was updated.
func (c *ActivePolicyCache) CompareAndSet(expectedEpoch int64, p *policy.Policy) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != expectedEpoch {
		return false
	}
	c.active = p
	return true
}
