package local

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/EgorLis/my-qrcodes/internal/domain"
)

// Publisher ничего не копирует: каталог артефактов уже доступен снаружи по prefix.
type Publisher struct {
	prefix string
}

var _ domain.Publisher = (*Publisher)(nil)

// New: пустой prefix — ошибка конфигурации, иначе получим битые ссылки.
func New(prefix string) (*Publisher, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, fmt.Errorf("%w: missing url prefix for local publisher (QR_TMP_URL)", domain.ErrConfiguration)
	}
	return &Publisher{prefix: prefix}, nil
}

func (p *Publisher) Prefix() string { return p.prefix }

// Publish: url = prefix + basename(localPath). Префикс склеивается как есть.
func (p *Publisher) Publish(_ context.Context, localPath string, width, height int) (domain.ArtifactRecord, error) {
	name := filepath.Base(localPath)
	if name == "." || name == string(filepath.Separator) {
		return domain.ArtifactRecord{}, fmt.Errorf("%w: bad artifact path %q", domain.ErrPublish, localPath)
	}
	return domain.ArtifactRecord{URL: p.prefix + name, Width: width, Height: height}, nil
}
