package cache

import (
	"bytes"
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"linediff/logger"
	"linediff/text"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 128

// Cache is an LRU of diff results keyed by their inputs. Entries are held
// brotli compressed, so large documents with small diffs stay cheap.
// Concurrent Do calls for the same key compute once.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
	group    singleflight.Group
}

type entry struct {
	key  string
	data []byte
}

func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

type keyPayload struct {
	Original []string     `json:"o"`
	Modified []string     `json:"m"`
	Options  text.Options `json:"opts"`
}

// Key identifies a diff request. Every option that changes the result takes
// part, including the time budget.
func Key(original, modified []string, opts text.Options) string {
	data, err := json.Marshal(keyPayload{original, modified, opts})
	if err != nil {
		// Options and string slices always marshal.
		panic(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached result for key and marks it recently used.
func (c *Cache) Get(key string) (*text.DiffResult, bool) {
	c.mu.Lock()
	var data []byte
	el, ok := c.items[key]
	if ok {
		c.ll.MoveToFront(el)
		data = el.Value.(*entry).data
	}
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	result, err := decode(data)
	if err != nil {
		logger.Warn("cache: dropping corrupt entry %.8s: %v", key, err)
		c.remove(key)
		return nil, false
	}
	return result, true
}

// Put stores result under key, evicting the least recently used entry when
// full.
func (c *Cache) Put(key string, result *text.DiffResult) error {
	data, err := encode(result)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).data = data
		c.ll.MoveToFront(el)
		return nil
	}
	c.items[key] = c.ll.PushFront(&entry{key: key, data: data})
	for c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
	return nil
}

// Do returns the cached result for key, or runs compute and caches what it
// returns. Results that hit the time budget are handed back but not stored;
// a later request may have more time. hit reports whether compute was
// skipped.
func (c *Cache) Do(key string, compute func() *text.DiffResult) (result *text.DiffResult, hit bool, err error) {
	if result, ok := c.Get(key); ok {
		return result, true, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		result := compute()
		if !result.HitTimeout {
			if err := c.Put(key, result); err != nil {
				logger.Warn("cache: store failed: %v", err)
			}
		}
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*text.DiffResult), false, nil
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element)
}

func (c *Cache) remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

func encode(result *text.DiffResult) ([]byte, error) {
	jsonData, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, "marshal result")
	}

	// Quality 1 favours speed; results are small and short lived.
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, 1)
	if _, err := w.Write(jsonData); err != nil {
		return nil, errors.Wrap(err, "compress result")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "close brotli writer")
	}
	return buf.Bytes(), nil
}

func decode(data []byte) (*text.DiffResult, error) {
	jsonData, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, errors.Wrap(err, "decompress result")
	}
	var result text.DiffResult
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return nil, errors.Wrap(err, "unmarshal result")
	}
	return &result, nil
}
