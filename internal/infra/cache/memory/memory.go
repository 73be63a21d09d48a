// Package memory — LRU-слой в памяти процесса перед любым другим кешем артефактов.
package memory

import (
	"context"
	"fmt"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/EgorLis/my-qrcodes/internal/domain"
)

const DefaultSize = 1024

type Cache struct {
	lru    *lru.Cache[domain.CacheKey, domain.CacheEntry]
	next   domain.ArtifactCache
	logger *log.Logger
}

var (
	_ domain.ArtifactCache = (*Cache)(nil)
	_ domain.Pinger        = (*Cache)(nil)
)

// New оборачивает next. size <= 0 — DefaultSize.
func New(size int, next domain.ArtifactCache, logger *log.Logger) (*Cache, error) {
	if next == nil {
		return nil, fmt.Errorf("%w: memory cache requires next layer", domain.ErrConfiguration)
	}
	if size <= 0 {
		size = DefaultSize
	}
	l, err := lru.New[domain.CacheKey, domain.CacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("%w: lru: %w", domain.ErrConfiguration, err)
	}
	return &Cache{lru: l, next: next, logger: logger}, nil
}

func (c *Cache) Get(ctx context.Context, req domain.Request) (domain.ArtifactRecord, bool) {
	key := req.Key()
	if e, ok := c.lru.Get(key); ok {
		if rec, ok := e.Record(req); ok {
			c.logger.Printf("GET %s: memory hit", key)
			return rec, true
		}
		c.lru.Remove(key)
	}
	rec, ok := c.next.Get(ctx, req)
	if !ok {
		return domain.ArtifactRecord{}, false
	}
	c.lru.Add(key, domain.NewCacheEntry(req, rec))
	return rec, true
}

// Set пишет сначала в следующий слой; память обновляется только после успеха.
func (c *Cache) Set(ctx context.Context, req domain.Request, rec domain.ArtifactRecord) error {
	if err := c.next.Set(ctx, req, rec); err != nil {
		c.lru.Remove(req.Key())
		return err
	}
	c.lru.Add(req.Key(), domain.NewCacheEntry(req, rec))
	return nil
}

func (c *Cache) Len() int { return c.lru.Len() }

// Ping прокидывается в следующий слой, если он умеет.
func (c *Cache) Ping(ctx context.Context) error {
	if p, ok := c.next.(domain.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
