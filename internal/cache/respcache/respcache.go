// Package respcache keeps recent AWIC service bodies in process memory.
package respcache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mohammed-shakir/awic-downloader/internal/core/observability"
)

type Cache struct {
	lru *expirable.LRU[string, []byte]
}

// New returns a cache holding at most size bodies for ttl each.
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 256
	}
	return &Cache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *Cache) Get(key string) ([]byte, bool) {
	b, ok := c.lru.Get(key)
	if ok {
		observability.IncCache("hit")
	} else {
		observability.IncCache("miss")
	}
	return b, ok
}

func (c *Cache) Add(key string, body []byte) {
	c.lru.Add(key, body)
}

func (c *Cache) Len() int { return c.lru.Len() }

func (c *Cache) Purge() { c.lru.Purge() }
