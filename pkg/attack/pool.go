package attack

import "sync"

type size struct {
	rows int
	cols int
}

// Pool recycles descriptors by dimensions.
type Pool struct {
	lock  sync.Mutex
	pools map[size]*sync.Pool
}

func NewPool() *Pool {
	return &Pool{
		pools: make(map[size]*sync.Pool),
	}
}

func (p *Pool) pool(rows, cols int) *sync.Pool {
	p.lock.Lock()
	defer p.lock.Unlock()
	key := size{rows: rows, cols: cols}
	pool, ok := p.pools[key]
	if !ok {
		pool = &sync.Pool{
			New: func() any {
				return New(rows, cols)
			},
		}
		p.pools[key] = pool
	}
	return pool
}

// Get returns an empty descriptor of the given size.
func (p *Pool) Get(rows, cols int) *Descriptor {
	d := p.pool(rows, cols).Get().(*Descriptor)
	d.MakeEmpty()
	return d
}

// Put returns d to the pool. d must not be used afterwards.
func (p *Pool) Put(d *Descriptor) {
	if d == nil {
		return
	}
	d.MakeEmpty()
	p.pool(d.rows, d.cols).Put(d)
}
