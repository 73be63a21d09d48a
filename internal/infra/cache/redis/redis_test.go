package redisx

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgorLis/my-qrcodes/internal/domain"
	"github.com/EgorLis/my-qrcodes/internal/infra/cache/codec"
)

func newTestCache(t *testing.T, ttl int) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(Config{Addr: mr.Addr(), TTLSeconds: ttl}, log.New(io.Discard, "", 0))
	t.Cleanup(c.Close)
	return c, mr
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, 0)
	ctx := context.Background()
	req := domain.Request{Value: "Hello world!", ECC: domain.ECLevelL, Size: 4}
	rec := domain.ArtifactRecord{URL: "https://cdn/v.png", Width: 100, Height: 100}

	require.NoError(t, c.Ping(ctx))

	_, ok := c.Get(ctx, req)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, req, rec))
	got, ok := c.Get(ctx, req)
	require.True(t, ok)
	assert.Equal(t, rec, got)
}

func TestTTLApplied(t *testing.T) {
	c, mr := newTestCache(t, 60)
	ctx := context.Background()
	req := domain.Request{Value: "ttl", ECC: domain.ECLevelH, Size: 2}

	require.NoError(t, c.Set(ctx, req, domain.ArtifactRecord{URL: "u", Width: 1, Height: 1}))
	assert.Equal(t, 60*time.Second, mr.TTL(Key(req)))

	mr.FastForward(61 * time.Second)
	_, ok := c.Get(ctx, req)
	assert.False(t, ok)
}

func TestMismatchAndCorruptAreMisses(t *testing.T) {
	c, mr := newTestCache(t, 0)
	ctx := context.Background()
	req := domain.Request{Value: "mine", ECC: domain.ECLevelL, Size: 4}

	b, err := codec.Marshal(domain.CacheEntry{Value: "theirs", URL: "u", Width: 1, Height: 1})
	require.NoError(t, err)
	require.NoError(t, mr.Set(Key(req), string(b)))
	_, ok := c.Get(ctx, req)
	assert.False(t, ok)

	require.NoError(t, mr.Set(Key(req), "garbage"))
	_, ok = c.Get(ctx, req)
	assert.False(t, ok)
}

func TestUnavailableServer(t *testing.T) {
	c, mr := newTestCache(t, 0)
	ctx := context.Background()
	req := domain.Request{Value: "down", ECC: domain.ECLevelL, Size: 4}
	mr.Close()

	_, ok := c.Get(ctx, req)
	assert.False(t, ok, "read errors are misses")

	err := c.Set(ctx, req, domain.ArtifactRecord{URL: "u", Width: 1, Height: 1})
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Error(t, c.Ping(ctx))
}
