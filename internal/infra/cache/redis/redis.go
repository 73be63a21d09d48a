package redisx

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EgorLis/my-qrcodes/internal/domain"
	"github.com/EgorLis/my-qrcodes/internal/infra/cache/codec"
)

const keyPrefix = "qrcode:"

type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

var (
	_ domain.ArtifactCache = (*Cache)(nil)
	_ domain.Pinger        = (*Cache)(nil)
)

type Config struct {
	Addr       string
	DB         int
	Password   string
	TTLSeconds int // 0 — без срока жизни
}

func New(cfg Config, logger *log.Logger) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	var ttl time.Duration
	if cfg.TTLSeconds > 0 {
		ttl = time.Duration(cfg.TTLSeconds) * time.Second
	}
	return &Cache{rdb: rdb, ttl: ttl, logger: logger}
}

func Key(req domain.Request) string { return keyPrefix + req.Key().String() }

func (c *Cache) Ping(ctx context.Context) error {
	err := c.rdb.Ping(ctx).Err()
	if err != nil {
		c.logger.Printf("PING failed: %v", err)
	} else {
		c.logger.Println("PING ok")
	}
	return err
}

func (c *Cache) Close() {
	if c.rdb == nil {
		c.logger.Println("nothing to close")
		return
	}

	if err := c.rdb.Close(); err != nil {
		c.logger.Printf("error while closing: %v", err)
		return
	}

	c.logger.Println("closed")
}

func (c *Cache) Get(ctx context.Context, req domain.Request) (domain.ArtifactRecord, bool) {
	key := Key(req)
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Printf("GET %q: not found", key)
		return domain.ArtifactRecord{}, false
	}
	if err != nil {
		c.logger.Printf("GET %q: error, treat as miss: %v", key, err)
		return domain.ArtifactRecord{}, false
	}
	e, err := codec.Unmarshal(b)
	if err != nil {
		c.logger.Printf("GET %q: corrupt entry, treat as miss: %v", key, err)
		return domain.ArtifactRecord{}, false
	}
	rec, ok := e.Record(req)
	if !ok {
		c.logger.Printf("GET %q: stored value mismatch, treat as miss", key)
		return domain.ArtifactRecord{}, false
	}
	c.logger.Printf("GET %q: hit (%d bytes)", key, len(b))
	return rec, true
}

func (c *Cache) Set(ctx context.Context, req domain.Request, rec domain.ArtifactRecord) error {
	key := Key(req)
	b, err := codec.Marshal(domain.NewCacheEntry(req, rec))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.logger.Printf("SET %q failed: %v", key, err)
		return fmt.Errorf("%w: redis set: %w", domain.ErrStorage, err)
	}
	c.logger.Printf("SET %q ok (ttl=%s)", key, c.ttl)
	return nil
}
