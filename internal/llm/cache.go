package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// verdictCache remembers verdicts by the hash of the text that was sent.
type verdictCache struct {
	lru *expirable.LRU[string, Verdict]
}

// newVerdictCache returns nil when size is not positive.
func newVerdictCache(size int, ttl time.Duration) *verdictCache {
	if size <= 0 {
		return nil
	}
	return &verdictCache{lru: expirable.NewLRU[string, Verdict](size, nil, ttl)}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (c *verdictCache) get(text string) (*Verdict, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.lru.Get(cacheKey(text))
	if !ok {
		return nil, false
	}
	return v.clone(), true
}

func (c *verdictCache) put(text string, v *Verdict) {
	if c == nil || v == nil {
		return
	}
	c.lru.Add(cacheKey(text), *v.clone())
}

func (c *verdictCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
