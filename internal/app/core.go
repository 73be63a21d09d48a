package app

import (
	"context"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/EgorLis/my-qrcodes/internal/config"
	"github.com/EgorLis/my-qrcodes/internal/domain"
	filecache "github.com/EgorLis/my-qrcodes/internal/infra/cache/file"
	"github.com/EgorLis/my-qrcodes/internal/infra/cache/memory"
	redisx "github.com/EgorLis/my-qrcodes/internal/infra/cache/redis"
	"github.com/EgorLis/my-qrcodes/internal/infra/database/postgres"
	qrenc "github.com/EgorLis/my-qrcodes/internal/infra/encoder/qrcode"
	"github.com/EgorLis/my-qrcodes/internal/infra/storage/local"
	s3storage "github.com/EgorLis/my-qrcodes/internal/infra/storage/s3"
	"github.com/EgorLis/my-qrcodes/internal/metrics"
	"github.com/EgorLis/my-qrcodes/internal/qrcode"
)

// Core — всё, что нужно для GetOrCreate: кеш, кодек, паблишер, сервис.
// Общая часть для HTTP-сервера и CLI.
type Core struct {
	Service  *qrcode.Service
	Resolved config.Resolved
	Registry *prometheus.Registry
	// Бэкенды для readiness
	Checks  map[string]domain.Pinger
	closers []func()
}

func NewCore(ctx context.Context, cfg *config.Config, o config.Overrides, base *log.Logger) (*Core, error) {
	c := &Core{
		Resolved: cfg.Resolve(o),
		Registry: prometheus.NewRegistry(),
		Checks:   map[string]domain.Pinger{},
	}
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	base.Printf("artifact dir: %s, cache dir: %s", c.Resolved.ArtifactDir, c.Resolved.CacheDir)

	// директория нужна файловому кешу до первого промаха
	if err := qrcode.EnsureDir(c.Resolved.ArtifactDir); err != nil {
		return nil, err
	}

	cache, err := c.buildCache(ctx, cfg, base)
	if err != nil {
		c.Close()
		return nil, err
	}

	pub, err := c.buildPublisher(cfg, base)
	if err != nil {
		c.Close()
		return nil, err
	}

	m, err := metrics.New(c.Registry)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed init metrics: %w", err)
	}

	svc, err := qrcode.NewService(qrcode.Deps{
		Cache:       cache,
		Encoder:     qrenc.New(cfg.Margin),
		Publisher:   pub,
		ArtifactDir: c.Resolved.ArtifactDir,
		Logger:      sub(base, "qrcode"),
		Metrics:     m,
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Service = svc
	return c, nil
}

func (c *Core) buildCache(ctx context.Context, cfg *config.Config, base *log.Logger) (domain.ArtifactCache, error) {
	var cache domain.ArtifactCache

	switch cfg.CacheBackend {
	case config.CacheRedis:
		base.Println("init Redis")
		rc := redisx.New(redisx.Config{
			Addr:       cfg.RedisAddr,
			DB:         cfg.RedisDB,
			Password:   cfg.RedisPassword,
			TTLSeconds: cfg.RedisTTLSeconds,
		}, sub(base, "redis"))
		c.closers = append(c.closers, rc.Close)
		if err := rc.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed init redis: %w", err)
		}
		base.Println("Redis is initialized")
		cache = rc

	case config.CachePostgres:
		base.Println("init PostgreSQL")
		pg, err := postgres.NewPGRepo(ctx, sub(base, "postgres"), cfg.GetDSN(), cfg.DBScheme)
		if err != nil {
			return nil, fmt.Errorf("failed init postgres: %w", err)
		}
		c.closers = append(c.closers, pg.Close)
		base.Println("PostgreSQL is initialized")
		cache = pg

	default:
		if err := qrcode.EnsureDir(c.Resolved.CacheDir); err != nil {
			return nil, err
		}
		cache = filecache.New(c.Resolved.CacheDir, sub(base, "cache"))
	}

	if cfg.CacheMemorySize > 0 {
		mc, err := memory.New(cfg.CacheMemorySize, cache, sub(base, "memory"))
		if err != nil {
			return nil, err
		}
		cache = mc
	}
	if p, ok := cache.(domain.Pinger); ok {
		c.Checks["cache"] = p
	}
	return cache, nil
}

func (c *Core) buildPublisher(cfg *config.Config, base *log.Logger) (domain.Publisher, error) {
	if cfg.Publisher == config.PublisherS3 {
		base.Println("init S3 publisher")
		p, err := s3storage.New(s3storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			PathStyle: cfg.S3PathStyle,
			PublicURL: cfg.S3PublicURL,
			KeyPrefix: cfg.S3KeyPrefix,
		}, sub(base, "s3"))
		if err != nil {
			return nil, fmt.Errorf("failed init s3: %w", err)
		}
		c.Checks["s3"] = p
		return p, nil
	}

	p, err := local.New(c.Resolved.URLPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed init local publisher (set QR_TMP_URL): %w", err)
	}
	return p, nil
}

// Close закрывает соединения в обратном порядке
func (c *Core) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func sub(base *log.Logger, name string) *log.Logger {
	return log.New(base.Writer(), base.Prefix()+"["+name+"] ", base.Flags())
}
