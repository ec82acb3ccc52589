package scoring

import (
	"container/list"
	"sync"
)

// EmbeddingCache holds per-process term embeddings. It is injected
// into the engine so tests can substitute a deterministic fake.
type EmbeddingCache interface {
	Get(text string) ([]float32, bool)
	Add(text string, vec []float32)
}

// lruCache is a mutex-guarded LRU over term texts.
type lruCache struct {
	mu      sync.Mutex
	cap     int
	order   *list.List // front = most recent
	entries map[string]*list.Element
}

type lruEntry struct {
	text string
	vec  []float32
}

// NewLRUCache returns an EmbeddingCache bounded to cap entries.
func NewLRUCache(cap int) EmbeddingCache {
	if cap <= 0 {
		cap = 100
	}
	return &lruCache{
		cap:     cap,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

func (c *lruCache) Get(text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[text]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).vec, true
}

func (c *lruCache) Add(text string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[text]; ok {
		el.Value.(*lruEntry).vec = vec
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.cap {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*lruEntry).text)
		}
	}
	c.entries[text] = c.order.PushFront(&lruEntry{text: text, vec: vec})
}
