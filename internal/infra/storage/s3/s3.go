package s3

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/EgorLis/my-qrcodes/internal/domain"
)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
	// PublicURL — базовый адрес, по которому бакет доступен снаружи (CDN или сам S3)
	PublicURL string
	KeyPrefix string
}

// objectStore — минимум от minio.Client, нужный публикатору.
type objectStore interface {
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	FPutObject(ctx context.Context, bucket, object, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

// Publisher загружает PNG в бакет и отдаёт публичную ссылку.
type Publisher struct {
	cl        objectStore
	bucket    string
	publicURL string
	keyPrefix string
	logger    *log.Logger
}

var (
	_ domain.Publisher = (*Publisher)(nil)
	_ domain.Pinger    = (*Publisher)(nil)
)

func New(cfg Config, logger *log.Logger) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: S3_BUCKET is required for s3 publisher", domain.ErrConfiguration)
	}
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: minio client: %w", domain.ErrConfiguration, err)
	}
	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = defaultPublicURL(cfg)
	}
	return newWithClient(cl, cfg.Bucket, publicURL, cfg.KeyPrefix, logger), nil
}

func newWithClient(cl objectStore, bucket, publicURL, keyPrefix string, logger *log.Logger) *Publisher {
	return &Publisher{
		cl:        cl,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

// defaultPublicURL: path-style адрес endpoint/bucket.
func defaultPublicURL(cfg Config) string {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket
}

func (p *Publisher) objectKey(localPath string) string {
	return p.keyPrefix + filepath.Base(localPath)
}

func (p *Publisher) objectURL(key string) string {
	u := url.URL{Path: key}
	return p.publicURL + "/" + strings.TrimPrefix(u.EscapedPath(), "/")
}

// Publish: имя объекта детерминировано, поэтому уже загруженный объект не грузим повторно.
func (p *Publisher) Publish(ctx context.Context, localPath string, width, height int) (domain.ArtifactRecord, error) {
	key := p.objectKey(localPath)

	if _, err := p.cl.StatObject(ctx, p.bucket, key, minio.StatObjectOptions{}); err == nil {
		p.logger.Printf("PUBLISH %q: already uploaded", key)
		return domain.ArtifactRecord{URL: p.objectURL(key), Width: width, Height: height}, nil
	}

	info, err := p.cl.FPutObject(ctx, p.bucket, key, localPath, minio.PutObjectOptions{
		ContentType:  "image/png",
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		p.logger.Printf("PUBLISH %q failed: %v", key, err)
		return domain.ArtifactRecord{}, fmt.Errorf("%w: s3 put %s: %w", domain.ErrPublish, key, err)
	}
	p.logger.Printf("PUBLISH %q ok (%d bytes)", key, info.Size)
	return domain.ArtifactRecord{URL: p.objectURL(key), Width: width, Height: height}, nil
}

func (p *Publisher) Ping(ctx context.Context) error {
	ok, err := p.cl.BucketExists(ctx, p.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", p.bucket)
	}
	return nil
}
