// Package qrcode собирает кеш, кодек и публикатор в одну идемпотентную операцию get-or-create.
package qrcode

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/EgorLis/my-qrcodes/internal/domain"
)

// GetOrCreateArtifact: кеш → (промах) каталог → encode → замер → publish → запись в кеш.
// Повторный вызов с тем же запросом отдаёт ту же запись (уже из кеша).
// Ошибка на любом шаге возвращается как есть; частичная запись в кеш не попадает.
func GetOrCreateArtifact(
	ctx context.Context,
	req domain.Request,
	cache domain.ArtifactCache,
	encoder domain.Encoder,
	publisher domain.Publisher,
	artifactDir string,
) (domain.ArtifactRecord, error) {
	if err := req.Validate(); err != nil {
		return domain.ArtifactRecord{}, err
	}
	if cache == nil {
		return domain.ArtifactRecord{}, fmt.Errorf("%w: artifact cache is not set", domain.ErrConfiguration)
	}
	if rec, ok := cache.Get(ctx, req); ok {
		return rec, nil
	}
	return createArtifact(ctx, req, cache, encoder, publisher, artifactDir)
}

// createArtifact — ветка промаха. Запрос уже провалидирован.
func createArtifact(
	ctx context.Context,
	req domain.Request,
	cache domain.ArtifactCache,
	encoder domain.Encoder,
	publisher domain.Publisher,
	artifactDir string,
) (domain.ArtifactRecord, error) {
	if publisher == nil {
		return domain.ArtifactRecord{}, fmt.Errorf("%w: no publisher and no url prefix configured", domain.ErrConfiguration)
	}
	if encoder == nil {
		return domain.ArtifactRecord{}, fmt.Errorf("%w: encoder is not set", domain.ErrConfiguration)
	}
	if err := EnsureDir(artifactDir); err != nil {
		return domain.ArtifactRecord{}, err
	}

	path := filepath.Join(artifactDir, req.Key().ArtifactName())
	if err := encodeTo(ctx, encoder, req, path); err != nil {
		return domain.ArtifactRecord{}, err
	}

	width, height, err := measure(path)
	if err != nil {
		return domain.ArtifactRecord{}, err
	}

	rec, err := publisher.Publish(ctx, path, width, height)
	if err != nil {
		return domain.ArtifactRecord{}, wrap(domain.ErrPublish, err)
	}
	if !rec.Valid() {
		return domain.ArtifactRecord{}, fmt.Errorf("%w: publisher returned incomplete record %+v", domain.ErrPublish, rec)
	}

	if err := cache.Set(ctx, req, rec); err != nil {
		return domain.ArtifactRecord{}, wrap(domain.ErrStorage, err)
	}
	return rec, nil
}

// EnsureDir создаёт каталог, если его нет. Параллельный создатель — не ошибка.
func EnsureDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: artifact dir is empty", domain.ErrConfiguration)
	}
	err := os.MkdirAll(dir, 0o755)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		if st, statErr := os.Stat(dir); statErr == nil && st.IsDir() {
			return nil
		}
	}
	return fmt.Errorf("%w: ensure artifact dir %s: %w", domain.ErrStorage, dir, err)
}

// encodeTo пишет во временный файл рядом и переименовывает в path,
// поэтому параллельные encode одного ключа сходятся в один файл без рваных записей.
func encodeTo(ctx context.Context, encoder domain.Encoder, req domain.Request, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.png")
	if err != nil {
		return fmt.Errorf("%w: create temp artifact: %w", domain.ErrStorage, err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	if err := encoder.Encode(ctx, req, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return wrap(domain.ErrEncode, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: rename artifact: %w", domain.ErrStorage, err)
	}
	return nil
}

// measure читает размеры из заголовка картинки, а не доверяет кодеку.
func measure(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: open artifact: %w", domain.ErrStorage, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: read artifact dimensions: %w", domain.ErrEncode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("%w: empty artifact %dx%d", domain.ErrEncode, cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

// wrap оставляет доменные ошибки как есть, остальные помечает kind.
func wrap(kind, err error) error {
	if domain.ErrorKind(err) != "unexpected" {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
