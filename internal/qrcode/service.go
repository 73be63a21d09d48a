package qrcode

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/EgorLis/my-qrcodes/internal/domain"
	"github.com/EgorLis/my-qrcodes/internal/metrics"
)

type Deps struct {
	Cache       domain.ArtifactCache
	Encoder     domain.Encoder
	Publisher   domain.Publisher
	ArtifactDir string
	Logger      *log.Logger
	Metrics     *metrics.Metrics // может быть nil
}

// Service — GetOrCreateArtifact с логами, метриками и склейкой одновременных промахов
// по одному ключу внутри процесса. Между процессами дубли encode допустимы.
type Service struct {
	cache     domain.ArtifactCache
	encoder   domain.Encoder
	publisher domain.Publisher
	dir       string
	logger    *log.Logger
	metrics   *metrics.Metrics
	group     singleflight.Group
}

func NewService(d Deps) (*Service, error) {
	switch {
	case d.Cache == nil:
		return nil, fmt.Errorf("%w: artifact cache is not set", domain.ErrConfiguration)
	case d.Encoder == nil:
		return nil, fmt.Errorf("%w: encoder is not set", domain.ErrConfiguration)
	case d.Publisher == nil:
		return nil, fmt.Errorf("%w: no publisher and no url prefix configured", domain.ErrConfiguration)
	case d.ArtifactDir == "":
		return nil, fmt.Errorf("%w: artifact dir is empty", domain.ErrConfiguration)
	case d.Logger == nil:
		return nil, fmt.Errorf("%w: logger is not set", domain.ErrConfiguration)
	}
	return &Service{
		cache:     d.Cache,
		encoder:   d.Encoder,
		publisher: d.Publisher,
		dir:       d.ArtifactDir,
		logger:    d.Logger,
		metrics:   d.Metrics,
	}, nil
}

func (s *Service) ArtifactDir() string { return s.dir }

// Cache нужен health-хендлеру для пинга бэкенда.
func (s *Service) Cache() domain.ArtifactCache { return s.cache }

func (s *Service) GetOrCreate(ctx context.Context, req domain.Request) (domain.ArtifactRecord, error) {
	const op = "qrcode.get_or_create"

	if err := req.Validate(); err != nil {
		s.fail(op, "", err)
		return domain.ArtifactRecord{}, err
	}
	key := req.Key()

	if rec, ok := s.cache.Get(ctx, req); ok {
		s.metrics.Hit()
		s.logger.Printf("lvl=info op=%s key=%s msg=%q url=%q", op, key, "cache hit", rec.URL)
		return rec, nil
	}
	s.metrics.Miss()
	s.logger.Printf("lvl=info op=%s key=%s ecc=%s size=%d msg=%q", op, key, req.ECC, req.Size, "cache miss")

	// общая работа не должна отменяться, если ушёл первый из ожидающих
	workCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key.String(), func() (any, error) {
		start := time.Now()
		rec, err := createArtifact(workCtx, req, s.cache, s.encoder, s.publisher, s.dir)
		s.metrics.ObserveMiss(time.Since(start))
		return rec, err
	})

	select {
	case <-ctx.Done():
		s.fail(op, key, ctx.Err())
		return domain.ArtifactRecord{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.fail(op, key, res.Err)
			return domain.ArtifactRecord{}, res.Err
		}
		if res.Shared {
			s.metrics.Coalesced()
		}
		rec := res.Val.(domain.ArtifactRecord)
		s.logger.Printf("lvl=info op=%s key=%s msg=%q url=%q width=%d height=%d",
			op, key, "artifact published", rec.URL, rec.Width, rec.Height)
		return rec, nil
	}
}

func (s *Service) fail(op string, key domain.CacheKey, err error) {
	kind := domain.ErrorKind(err)
	s.metrics.Failure(kind)
	s.logger.Printf("lvl=error op=%s key=%s kind=%s err=%q", op, key, kind, err.Error())
}
