package domain

import "context"

// Кеш опубликованных артефактов. Ключ выводится из Request через DeriveKey.
//
// Get никогда не возвращает ошибку: нечитаемая, битая или чужая запись — это промах,
// артефакт просто будет пересоздан. Set возвращает ошибку хранилища (ErrStorage).
type ArtifactCache interface {
	Get(ctx context.Context, req Request) (ArtifactRecord, bool)
	Set(ctx context.Context, req Request, rec ArtifactRecord) error
}

// Pinger реализуют бэкенды, которые умеют проверять доступность (redis, postgres).
type Pinger interface {
	Ping(ctx context.Context) error
}
