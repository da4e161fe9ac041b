package cmdbuf

// Pool is a LIFO free list of reusable objects.
//
// Unlike sync.Pool, objects are never dropped: Get returns the most
// recently Put object when one is available and only calls newFn when the
// pool is empty. Pool is not safe for concurrent use.
type Pool[T any] struct {
	free  []T
	newFn func() T
	made  int
}

// NewPool creates a pool that allocates with newFn.
func NewPool[T any](newFn func() T) *Pool[T] {
	return &Pool[T]{newFn: newFn}
}

// Get takes an object from the pool or allocates a new one.
func (p *Pool[T]) Get() T {
	if n := len(p.free); n > 0 {
		v := p.free[n-1]
		var zero T
		p.free[n-1] = zero
		p.free = p.free[:n-1]
		return v
	}
	p.made++
	return p.newFn()
}

// Put returns an object to the pool. The caller must have reset it.
func (p *Pool[T]) Put(v T) { p.free = append(p.free, v) }

// Warm pre-allocates objects until at least n are idle.
func (p *Pool[T]) Warm(n int) {
	for len(p.free) < n {
		p.made++
		p.free = append(p.free, p.newFn())
	}
}

// Len returns the number of idle objects.
func (p *Pool[T]) Len() int { return len(p.free) }

// Allocated returns how many objects the pool has created.
func (p *Pool[T]) Allocated() int { return p.made }
