package s3

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgorLis/my-qrcodes/internal/domain"
)

type fakeStore struct {
	existing map[string]bool
	puts     []string
	putErr   error
}

func (f *fakeStore) StatObject(_ context.Context, _, object string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if f.existing[object] {
		return minio.ObjectInfo{Key: object}, nil
	}
	return minio.ObjectInfo{}, errors.New("NoSuchKey")
}

func (f *fakeStore) FPutObject(_ context.Context, _, object, _ string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	if opts.ContentType != "image/png" {
		return minio.UploadInfo{}, errors.New("unexpected content type")
	}
	f.puts = append(f.puts, object)
	return minio.UploadInfo{Key: object, Size: 42}, nil
}

func (f *fakeStore) BucketExists(context.Context, string) (bool, error) { return true, nil }

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(Config{Endpoint: "localhost:9000"}, discard())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestDefaultPublicURL(t *testing.T) {
	assert.Equal(t, "https://s3.local:9000/qr", defaultPublicURL(Config{Endpoint: "s3.local:9000", Bucket: "qr", UseSSL: true}))
	assert.Equal(t, "http://minio:9000/qr", defaultPublicURL(Config{Endpoint: "minio:9000", Bucket: "qr"}))
}

func TestPublishUploadsOnce(t *testing.T) {
	fs := &fakeStore{existing: map[string]bool{}}
	p := newWithClient(fs, "qr", "https://cdn.example.com/", "codes/", discard())

	rec, err := p.Publish(context.Background(), "/tmp/qrcode/vabc.png", 100, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.ArtifactRecord{URL: "https://cdn.example.com/codes/vabc.png", Width: 100, Height: 100}, rec)
	assert.Equal(t, []string{"codes/vabc.png"}, fs.puts)

	fs.existing["codes/vabc.png"] = true
	rec2, err := p.Publish(context.Background(), "/tmp/qrcode/vabc.png", 100, 100)
	require.NoError(t, err)
	assert.Equal(t, rec, rec2)
	assert.Len(t, fs.puts, 1)
}

func TestPublishFailure(t *testing.T) {
	fs := &fakeStore{existing: map[string]bool{}, putErr: errors.New("access denied")}
	p := newWithClient(fs, "qr", "https://cdn.example.com", "", discard())

	_, err := p.Publish(context.Background(), "/tmp/qrcode/vabc.png", 1, 1)
	assert.ErrorIs(t, err, domain.ErrPublish)
}
