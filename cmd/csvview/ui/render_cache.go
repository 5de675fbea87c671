package ui

import (
	"encoding/binary"
	"hash/fnv"
	"sync"
)

// RenderCache memoizes expensive renders (glamour markdown, wide grids)
// keyed by a hash of their inputs. Entries are evicted oldest first once
// maxSize is reached.
type RenderCache struct {
	mu      sync.Mutex
	entries map[uint64]string
	order   []uint64
	maxSize int
}

// NewRenderCache creates a cache holding at most maxSize renders.
func NewRenderCache(maxSize int) *RenderCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &RenderCache{
		entries: make(map[uint64]string, maxSize),
		maxSize: maxSize,
	}
}

// ComputeKey hashes strings, ints and bools with FNV-1a. Other types are ignored.
func ComputeKey(inputs ...interface{}) uint64 {
	h := fnv.New64a()
	var b [8]byte
	for _, input := range inputs {
		switch v := input.(type) {
		case string:
			h.Write([]byte(v))
			h.Write([]byte{0})
		case int:
			binary.LittleEndian.PutUint64(b[:], uint64(v))
			h.Write(b[:])
		case bool:
			if v {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
		}
	}
	return h.Sum64()
}

// Get retrieves cached content if available.
func (rc *RenderCache) Get(key uint64) (string, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	s, ok := rc.entries[key]
	return s, ok
}

// Set stores rendered content in the cache.
func (rc *RenderCache) Set(key uint64, content string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if _, ok := rc.entries[key]; !ok {
		if len(rc.order) >= rc.maxSize {
			oldest := rc.order[0]
			rc.order = rc.order[1:]
			delete(rc.entries, oldest)
		}
		rc.order = append(rc.order, key)
	}
	rc.entries[key] = content
}

// Len returns the number of cached renders.
func (rc *RenderCache) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.entries)
}

// GetOrCompute retrieves from cache or computes if missing.
// Failed computations are not cached.
func (rc *RenderCache) GetOrCompute(key uint64, compute func() (string, error)) (string, error) {
	if content, ok := rc.Get(key); ok {
		return content, nil
	}
	content, err := compute()
	if err != nil {
		return "", err
	}
	rc.Set(key, content)
	return content, nil
}
