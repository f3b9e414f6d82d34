package engine

import (
	"fmt"
	"sort"
	"sync"
)

// keyedMutex provides one mutual-exclusion domain per string key.
// Schedule keys guard a schedule's inventory and its bookings; bus and
// driver keys serialize the overlap-check-then-write sequence for that
// resource.  Mutexes are created on first use and kept for the life of
// the process.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	m := k.get(key)
	m.Lock()
	return m.Unlock
}

// LockAll acquires every key in sorted order, which keeps multi-key
// acquisition deadlock-free, and returns a single unlock for all of
// them.  Duplicate keys are collapsed.
func (k *keyedMutex) LockAll(keys ...string) func() {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			uniq = append(uniq, key)
		}
	}
	sort.Strings(uniq)
	unlocks := make([]func(), 0, len(uniq))
	for _, key := range uniq {
		unlocks = append(unlocks, k.Lock(key))
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

func scheduleKey(id int64) string { return fmt.Sprintf("schedule:%d", id) }
func bookingKey(id int64) string  { return fmt.Sprintf("booking:%d", id) }
func busKey(id int64) string      { return fmt.Sprintf("bus:%d", id) }
func driverKey(id int64) string   { return fmt.Sprintf("driver:%d", id) }
