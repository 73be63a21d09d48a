// Package qrcode — адаптер кодека github.com/skip2/go-qrcode под domain.Encoder.
package qrcode

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	goqr "github.com/skip2/go-qrcode"

	"github.com/EgorLis/my-qrcodes/internal/domain"
)

// DefaultMargin — тихая зона в модулях вокруг матрицы.
const DefaultMargin = 2

type Encoder struct {
	margin int
}

var _ domain.Encoder = (*Encoder)(nil)

// New: margin < 0 — DefaultMargin.
func New(margin int) *Encoder {
	if margin < 0 {
		margin = DefaultMargin
	}
	return &Encoder{margin: margin}
}

func level(l domain.ECLevel) (goqr.RecoveryLevel, error) {
	switch l {
	case domain.ECLevelL:
		return goqr.Low, nil
	case domain.ECLevelM:
		return goqr.Medium, nil
	case domain.ECLevelQ:
		return goqr.High, nil
	case domain.ECLevelH:
		return goqr.Highest, nil
	}
	return 0, fmt.Errorf("%w: unknown ecc %q", domain.ErrInvalidRequest, string(l))
}

// tooLong: go-qrcode не экспортирует ошибку ёмкости, узнаём её по тексту
// ("content too long to encode", "cannot find QR Code version").
func tooLong(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "too long") || strings.Contains(msg, "cannot find QR Code version")
}

// Encode рисует матрицу: каждый модуль — квадрат req.Size x req.Size пикселей.
func (e *Encoder) Encode(ctx context.Context, req domain.Request, dstPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lvl, err := level(req.ECC)
	if err != nil {
		return err
	}
	q, err := goqr.New(req.Value, lvl)
	if err != nil {
		if tooLong(err) {
			return fmt.Errorf("%w: value does not fit into a QR symbol at level %s (%d bytes): %w",
				domain.ErrInvalidRequest, req.ECC, len(req.Value), err)
		}
		return fmt.Errorf("%w: %w", domain.ErrEncode, err)
	}
	q.DisableBorder = true

	img := e.rasterize(q.Bitmap(), req.Size)

	f, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", domain.ErrStorage, dstPath, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: png: %w", domain.ErrEncode, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", domain.ErrStorage, dstPath, err)
	}
	return nil
}

func (e *Encoder) rasterize(bitmap [][]bool, px int) *image.Paletted {
	modules := len(bitmap) + 2*e.margin
	side := modules * px
	img := image.NewPaletted(image.Rect(0, 0, side, side), color.Palette{color.White, color.Black})
	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			x0 := (x + e.margin) * px
			y0 := (y + e.margin) * px
			for dy := 0; dy < px; dy++ {
				for dx := 0; dx < px; dx++ {
					img.SetColorIndex(x0+dx, y0+dy, 1)
				}
			}
		}
	}
	return img
}
