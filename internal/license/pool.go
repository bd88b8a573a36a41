package license

import "sync"

// Pool hands out collection sessions. A session is checked out for exactly
// one document, then reset and returned.
type Pool struct {
	factory func() (*Collection, error)

	mu   sync.Mutex
	free []*Collection
}

// NewPool builds sessions with factory on demand.
func NewPool(factory func() (*Collection, error)) *Pool {
	return &Pool{factory: factory}
}

// Get checks out a reset session.
func (p *Pool) Get() (*Collection, error) {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		c := p.free[n-1]
		p.free = p.free[:n-1]
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()
	return p.factory()
}

// Put resets c and makes it available again.
func (p *Pool) Put(c *Collection) {
	if c == nil {
		return
	}
	c.Reset()
	p.mu.Lock()
	p.free = append(p.free, c)
	p.mu.Unlock()
}

// Idle returns the number of sessions waiting to be checked out.
func (p *Pool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
