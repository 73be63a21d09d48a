package qrcode

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgorLis/my-qrcodes/internal/domain"
)

func decodeConfig(t *testing.T, path string) image.Config {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	return cfg
}

func TestEncodeHelloWorld(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.png")
	req := domain.Request{Value: "Hello world!", ECC: domain.ECLevelL, Size: 4}

	require.NoError(t, New(DefaultMargin).Encode(context.Background(), req, dst))

	// версия 1: 21 модуль + 2*2 модуля поля, по 4 пикселя
	cfg := decodeConfig(t, dst)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 100, cfg.Height)
}

func TestEncodeScalesWithModuleSize(t *testing.T) {
	dir := t.TempDir()
	enc := New(DefaultMargin)

	small := filepath.Join(dir, "s.png")
	big := filepath.Join(dir, "b.png")
	require.NoError(t, enc.Encode(context.Background(), domain.Request{Value: "abc", ECC: domain.ECLevelH, Size: 1}, small))
	require.NoError(t, enc.Encode(context.Background(), domain.Request{Value: "abc", ECC: domain.ECLevelH, Size: 10}, big))

	s := decodeConfig(t, small)
	b := decodeConfig(t, big)
	assert.Equal(t, s.Width*10, b.Width)
	assert.Equal(t, s.Width, s.Height)
}

func TestEncodeRejectsUnknownLevel(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.png")
	err := New(0).Encode(context.Background(), domain.Request{Value: "x", ECC: "X", Size: 4}, dst)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}

func TestEncodeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(0).Encode(ctx, domain.Request{Value: "x", ECC: domain.ECLevelL, Size: 4}, filepath.Join(t.TempDir(), "x.png"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncodeValueTooLong(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.png")
	// байтовый режим, уровень L вмещает максимум 2953 байта
	req := domain.Request{Value: strings.Repeat("a", 3000), ECC: domain.ECLevelL, Size: 1}

	err := New(DefaultMargin).Encode(context.Background(), req, dst)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.NotErrorIs(t, err, domain.ErrEncode)
}
