package cache

import "sync"

// Store is a thread-safe cache keyed by structural equality with an
// optional soft limit.
type Store[K any, V any] struct {
	mu        sync.Mutex
	buckets   map[uint64][]*entry[K, V]
	hash      func(K) uint64
	equal     func(a, b K) bool
	onEvict   func(K, V)
	softLimit int
	tick      int64 // Monotonic access counter
	n         int

	hits       uint64
	misses     uint64
	collisions uint64
	evictions  uint64
}

// entry holds a cached value with its access time.
type entry[K any, V any] struct {
	key   K
	value V
	atime int64
}

// New creates a store. A softLimit of 0 means unlimited.
func New[K any, V any](hash func(K) uint64, equal func(a, b K) bool, softLimit int) *Store[K, V] {
	return &Store[K, V]{
		buckets:   make(map[uint64][]*entry[K, V]),
		hash:      hash,
		equal:     equal,
		softLimit: softLimit,
	}
}

// OnEvict registers fn to be called for every value dropped by the soft
// limit. It is not called by Delete or Clear.
func (s *Store[K, V]) OnEvict(fn func(K, V)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvict = fn
}

// find returns the entry equal to key, or nil. Caller must hold s.mu.
func (s *Store[K, V]) find(h uint64, key K) *entry[K, V] {
	bucket := s.buckets[h]
	for _, e := range bucket {
		if s.equal(e.key, key) {
			return e
		}
	}
	if len(bucket) > 0 {
		s.collisions++
	}
	return nil
}

// Get retrieves the value stored under a key equal to key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	h := s.hash(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.find(h, key); e != nil {
		s.tick++
		e.atime = s.tick
		s.hits++
		return e.value, true
	}
	s.misses++
	var zero V
	return zero, false
}

// GetOrCreate returns the cached value for key or creates it.
// create is called under the lock so concurrent callers never build the
// same value twice, and it must not call back into s. A create error is
// returned and nothing is stored.
func (s *Store[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	h := s.hash(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.find(h, key); e != nil {
		s.tick++
		e.atime = s.tick
		s.hits++
		return e.value, nil
	}
	s.misses++

	value, err := create()
	if err != nil {
		var zero V
		return zero, err
	}

	s.tick++
	s.buckets[h] = append(s.buckets[h], &entry[K, V]{key: key, value: value, atime: s.tick})
	s.n++

	if s.softLimit > 0 && s.n > s.softLimit {
		s.evictOldest()
	}
	return value, nil
}

// Delete removes the entry equal to key.
// Returns true if the entry was found and removed.
func (s *Store[K, V]) Delete(key K) bool {
	h := s.hash(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.buckets[h]
	for i, e := range bucket {
		if s.equal(e.key, key) {
			s.removeAt(h, i)
			return true
		}
	}
	return false
}

// Range calls fn for every entry until fn returns false.
// fn must not call back into the store.
func (s *Store[K, V]) Range(fn func(K, V) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, bucket := range s.buckets {
		for _, e := range bucket {
			if !fn(e.key, e.value) {
				return
			}
		}
	}
}

// Clear removes all entries. Statistics are kept.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buckets = make(map[uint64][]*entry[K, V])
	s.n = 0
	s.tick = 0
}

// Len returns the number of entries.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// Stats returns store statistics.
func (s *Store[K, V]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Len:        s.n,
		Capacity:   s.softLimit,
		Hits:       s.hits,
		Misses:     s.misses,
		Collisions: s.collisions,
		Evictions:  s.evictions,
	}
	if total := s.hits + s.misses; total > 0 {
		st.HitRate = float64(s.hits) / float64(total)
	}
	return st
}

// removeAt deletes bucket entry i. Caller must hold s.mu.
func (s *Store[K, V]) removeAt(h uint64, i int) {
	bucket := s.buckets[h]
	bucket[i] = bucket[len(bucket)-1]
	bucket[len(bucket)-1] = nil
	bucket = bucket[:len(bucket)-1]
	if len(bucket) == 0 {
		delete(s.buckets, h)
	} else {
		s.buckets[h] = bucket
	}
	s.n--
}

// evictOldest removes the least recently used entries until the store is
// at three quarters of its soft limit. Caller must hold s.mu.
func (s *Store[K, V]) evictOldest() {
	targetSize := s.softLimit * 3 / 4
	if targetSize < 1 {
		targetSize = 1
	}
	for s.n > targetSize {
		var (
			oldH   uint64
			oldIdx = -1
			oldest int64
		)
		for h, bucket := range s.buckets {
			for i, e := range bucket {
				if oldIdx < 0 || e.atime < oldest {
					oldH, oldIdx, oldest = h, i, e.atime
				}
			}
		}
		if oldIdx < 0 {
			return
		}
		e := s.buckets[oldH][oldIdx]
		s.removeAt(oldH, oldIdx)
		s.evictions++
		if s.onEvict != nil {
			s.onEvict(e.key, e.value)
		}
	}
}

// Stats contains store statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the soft limit (0 = unlimited).
	Capacity int
	// Hits is the number of lookups that found an equal key.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
	// Collisions counts lookups whose hash matched only unequal keys.
	Collisions uint64
	// Evictions is the number of entries dropped by the soft limit.
	Evictions uint64
}
