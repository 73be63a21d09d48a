package memory

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgorLis/my-qrcodes/internal/domain"
)

type countingCache struct {
	entries map[domain.CacheKey]domain.CacheEntry
	gets    int
	sets    int
	setErr  error
}

func newCounting() *countingCache {
	return &countingCache{entries: map[domain.CacheKey]domain.CacheEntry{}}
}

func (c *countingCache) Get(_ context.Context, req domain.Request) (domain.ArtifactRecord, bool) {
	c.gets++
	e, ok := c.entries[req.Key()]
	if !ok {
		return domain.ArtifactRecord{}, false
	}
	return e.Record(req)
}

func (c *countingCache) Set(_ context.Context, req domain.Request, rec domain.ArtifactRecord) error {
	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[req.Key()] = domain.NewCacheEntry(req, rec)
	return nil
}

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func TestNewRequiresNext(t *testing.T) {
	_, err := New(10, nil, discard())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestWriteThroughAndMemoryHit(t *testing.T) {
	next := newCounting()
	c, err := New(4, next, discard())
	require.NoError(t, err)
	ctx := context.Background()
	req := domain.Request{Value: "v", ECC: domain.ECLevelL, Size: 4}
	rec := domain.ArtifactRecord{URL: "/qr/v.png", Width: 3, Height: 3}

	require.NoError(t, c.Set(ctx, req, rec))
	assert.Equal(t, 1, next.sets)

	got, ok := c.Get(ctx, req)
	require.True(t, ok)
	assert.Equal(t, rec, got)
	assert.Equal(t, 0, next.gets, "served from memory")
}

func TestNextLayerHitPopulatesMemory(t *testing.T) {
	next := newCounting()
	req := domain.Request{Value: "warm", ECC: domain.ECLevelM, Size: 2}
	next.entries[req.Key()] = domain.CacheEntry{Value: "warm", URL: "u", Width: 2, Height: 2}

	c, err := New(4, next, discard())
	require.NoError(t, err)
	ctx := context.Background()

	_, ok := c.Get(ctx, req)
	require.True(t, ok)
	_, ok = c.Get(ctx, req)
	require.True(t, ok)
	assert.Equal(t, 1, next.gets)
	assert.Equal(t, 1, c.Len())
}

func TestFailedSetDoesNotPopulateMemory(t *testing.T) {
	next := newCounting()
	next.setErr = errors.New("disk full")
	c, err := New(4, next, discard())
	require.NoError(t, err)
	ctx := context.Background()
	req := domain.Request{Value: "v", ECC: domain.ECLevelL, Size: 4}

	require.Error(t, c.Set(ctx, req, domain.ArtifactRecord{URL: "u", Width: 1, Height: 1}))
	_, ok := c.Get(ctx, req)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
