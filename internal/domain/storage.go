package domain

import "context"

// Кодек QR: пишет PNG в dstPath. Размеры картинки вызывающая сторона измеряет сама.
type Encoder interface {
	Encode(ctx context.Context, req Request, dstPath string) error
}

// Публикация локального PNG (локальный каталог, S3/MinIO, CDN).
// Размеры передаются насквозь: реализация может их поменять (например, при ресайзе).
type Publisher interface {
	Publish(ctx context.Context, localPath string, width, height int) (ArtifactRecord, error)
}
