package filecache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/EgorLis/my-qrcodes/internal/domain"
	"github.com/EgorLis/my-qrcodes/internal/infra/cache/codec"
)

// Cache — файловый кеш: один маленький .dat файл на ключ.
// Каталог не создаётся кешем: его готовит оркестратор перед первой записью.
type Cache struct {
	dir    string
	logger *log.Logger
}

var _ domain.ArtifactCache = (*Cache)(nil)

func New(dir string, logger *log.Logger) *Cache {
	return &Cache{dir: dir, logger: logger}
}

func (c *Cache) Dir() string { return c.dir }

// EntryName: v<key><ecc><size>.dat. ecc и size в имени только для отладки,
// корректность держится на ключе.
func EntryName(req domain.Request) string {
	return "v" + req.Key().String() + string(req.ECC) + strconv.Itoa(req.Size) + ".dat"
}

func (c *Cache) path(req domain.Request) string {
	return filepath.Join(c.dir, EntryName(req))
}

func (c *Cache) Get(_ context.Context, req domain.Request) (domain.ArtifactRecord, bool) {
	p := c.path(req)
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		c.logger.Printf("GET %s: not found", filepath.Base(p))
		return domain.ArtifactRecord{}, false
	}
	if err != nil {
		c.logger.Printf("GET %s: read error, treat as miss: %v", filepath.Base(p), err)
		return domain.ArtifactRecord{}, false
	}
	e, err := codec.Unmarshal(b)
	if err != nil {
		c.logger.Printf("GET %s: corrupt entry, treat as miss: %v", filepath.Base(p), err)
		return domain.ArtifactRecord{}, false
	}
	rec, ok := e.Record(req)
	if !ok {
		c.logger.Printf("GET %s: stored value mismatch, treat as miss", filepath.Base(p))
		return domain.ArtifactRecord{}, false
	}
	c.logger.Printf("GET %s: hit", filepath.Base(p))
	return rec, true
}

// Set перезаписывает запись целиком: временный файл в том же каталоге + rename.
func (c *Cache) Set(_ context.Context, req domain.Request, rec domain.ArtifactRecord) error {
	b, err := codec.Marshal(domain.NewCacheEntry(req, rec))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	p := c.path(req)
	if err := writeAtomic(p, b); err != nil {
		c.logger.Printf("SET %s failed: %v", filepath.Base(p), err)
		return fmt.Errorf("%w: write cache entry: %w", domain.ErrStorage, err)
	}
	c.logger.Printf("SET %s ok (%d bytes)", filepath.Base(p), len(b))
	return nil
}

func writeAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*.dat")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	_ = os.Chmod(tmpPath, 0o644)
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
