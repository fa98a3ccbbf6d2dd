package pattern

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

type cacheKey struct {
	id            uuid.UUID
	caseSensitive bool
}

type compiled struct {
	source string
	re     *regexp.Regexp
}

// Cache holds compiled regexes keyed by (pattern, case sensitivity). An
// entry whose source no longer matches the pattern is recompiled, so edits
// made by another process are picked up before the TTL runs out.
type Cache struct {
	lru *expirable.LRU[cacheKey, compiled]
}

func NewCache(size int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[cacheKey, compiled](size, nil, ttl)}
}

func (c *Cache) Get(p Pattern) (*regexp.Regexp, error) {
	key := cacheKey{id: p.ID, caseSensitive: p.CaseSensitive}

	if hit, ok := c.lru.Get(key); ok && hit.source == p.Regex {
		return hit.re, nil
	}

	re, err := Compile(p.Regex, p.CaseSensitive)
	if err != nil {
		return nil, err
	}

	c.lru.Add(key, compiled{source: p.Regex, re: re})

	return re, nil
}

// Invalidate drops both case variants of a pattern.
func (c *Cache) Invalidate(id uuid.UUID) {
	c.lru.Remove(cacheKey{id: id, caseSensitive: true})
	c.lru.Remove(cacheKey{id: id, caseSensitive: false})
}

func (c *Cache) Len() int {
	return c.lru.Len()
}

// Compile builds a pattern's regex, case-insensitive unless asked otherwise.
func Compile(expr string, caseSensitive bool) (*regexp.Regexp, error) {
	if !caseSensitive {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern: %w", err)
	}

	return re, nil
}
