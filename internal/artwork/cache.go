package artwork

import "sync"

// cache remembers the outcome of a lookup for the life of the process.
// An empty value records a failed lookup.
type cache[K comparable] struct {
	mu sync.Mutex
	m  map[K]string
}

func newCache[K comparable]() *cache[K] {
	return &cache[K]{m: make(map[K]string)}
}

// get returns the stored outcome and whether one exists.
func (c *cache[K]) get(k K) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[k]
	return v, ok
}

func (c *cache[K]) put(k K, v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[k] = v
}

func (c *cache[K]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// searchKey identifies an image search. Kind keeps a song and a film with
// the same title apart.
type searchKey struct {
	Kind      string
	Title     string
	Secondary string
}
