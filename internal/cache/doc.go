// Package cache provides a generic structural-key store.
//
// Keys of any type are located through a 64-bit structural hash and then
// confirmed with an equality function, so two separately-built but equal
// descriptors resolve to the same cached value while hash collisions stay
// correct.
//
//	s := cache.New[Desc, *Pipeline](hashDesc, equalDesc, 0)
//	p, err := s.GetOrCreate(desc, func() (*Pipeline, error) {
//	    return build(desc)
//	})
//
// A soft limit of 0 disables eviction. With a positive soft limit the
// least recently used quarter is dropped when the limit is exceeded, and
// the eviction callback is invoked for every dropped value.
//
// # Thread Safety
//
// Store is safe for concurrent use. It must not be copied after creation.
package cache
