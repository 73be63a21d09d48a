package qrcode

import (
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EgorLis/my-qrcodes/internal/domain"
	filecache "github.com/EgorLis/my-qrcodes/internal/infra/cache/file"
	"github.com/EgorLis/my-qrcodes/internal/infra/storage/local"
)

const testPrefix = "https://static.example.com/qr/"

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

// stubEncoder пишет пустую картинку w x h и считает вызовы.
type stubEncoder struct {
	w, h  int
	calls atomic.Int32
	err   error
}

func (e *stubEncoder) Encode(_ context.Context, _ domain.Request, dst string) error {
	e.calls.Add(1)
	if e.err != nil {
		return e.err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, image.NewGray(image.Rect(0, 0, e.w, e.h)))
}

type countingPublisher struct {
	next       domain.Publisher
	calls      atomic.Int32
	err        error
	lastWidth  atomic.Int32
	lastHeight atomic.Int32
}

func (p *countingPublisher) Publish(ctx context.Context, path string, w, h int) (domain.ArtifactRecord, error) {
	p.calls.Add(1)
	p.lastWidth.Store(int32(w))
	p.lastHeight.Store(int32(h))
	if p.err != nil {
		return domain.ArtifactRecord{}, p.err
	}
	return p.next.Publish(ctx, path, w, h)
}

// countingCache считает обращения к вложенному кешу.
type countingCache struct {
	next   domain.ArtifactCache
	gets   atomic.Int32
	sets   atomic.Int32
	setErr error
}

func (c *countingCache) Get(ctx context.Context, req domain.Request) (domain.ArtifactRecord, bool) {
	c.gets.Add(1)
	return c.next.Get(ctx, req)
}

func (c *countingCache) Set(ctx context.Context, req domain.Request, rec domain.ArtifactRecord) error {
	c.sets.Add(1)
	if c.setErr != nil {
		return c.setErr
	}
	return c.next.Set(ctx, req, rec)
}

type fixture struct {
	dir   string
	cache *countingCache
	enc   *stubEncoder
	pub   *countingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	lp, err := local.New(testPrefix)
	require.NoError(t, err)
	return &fixture{
		dir:   dir,
		cache: &countingCache{next: filecache.New(dir, discard())},
		enc:   &stubEncoder{w: 100, h: 100},
		pub:   &countingPublisher{next: lp},
	}
}

func (f *fixture) get(ctx context.Context, req domain.Request) (domain.ArtifactRecord, error) {
	return GetOrCreateArtifact(ctx, req, f.cache, f.enc, f.pub, f.dir)
}

func (f *fixture) service(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(Deps{
		Cache:       f.cache,
		Encoder:     f.enc,
		Publisher:   f.pub,
		ArtifactDir: f.dir,
		Logger:      discard(),
	})
	require.NoError(t, err)
	return s
}

var errBoom = errors.New("boom")
