package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/EgorLis/my-qrcodes/internal/domain"
)

var (
	_ domain.ArtifactCache = (*PGRepo)(nil)
	_ domain.Pinger        = (*PGRepo)(nil)
)

func (r *PGRepo) Get(ctx context.Context, req domain.Request) (domain.ArtifactRecord, bool) {
	key := req.Key().String()
	q := r.qb().Select("value", "url", "width", "height").
		From(r.table()).
		Where(sq.Eq{"cache_key": key})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		r.logger.Printf("Get build sql error: %v", err)
		return domain.ArtifactRecord{}, false
	}
	r.logSQL("Get", sqlStr, args)

	start := time.Now()
	var e domain.CacheEntry
	err = r.pool.QueryRow(ctx, sqlStr, args...).Scan(&e.Value, &e.URL, &e.Width, &e.Height)
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.Printf("Get miss in %s key=%s", time.Since(start), key)
		return domain.ArtifactRecord{}, false
	}
	if err != nil {
		r.logger.Printf("Get error after %s, treat as miss: %v", time.Since(start), err)
		return domain.ArtifactRecord{}, false
	}
	rec, ok := e.Record(req)
	if !ok {
		r.logger.Printf("Get stored value mismatch key=%s, treat as miss", key)
		return domain.ArtifactRecord{}, false
	}
	r.logger.Printf("Get hit in %s key=%s", time.Since(start), key)
	return rec, true
}

func (r *PGRepo) Set(ctx context.Context, req domain.Request, rec domain.ArtifactRecord) error {
	key := req.Key().String()
	q := r.qb().Insert(r.table()).
		Columns("cache_key", "value", "ecc", "size", "url", "width", "height").
		Values(key, req.Value, string(req.ECC), req.Size, rec.URL, rec.Width, rec.Height).
		Suffix("ON CONFLICT (cache_key) DO UPDATE SET " +
			"value = EXCLUDED.value, url = EXCLUDED.url, width = EXCLUDED.width, " +
			"height = EXCLUDED.height, updated_at = now()")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("%w: build upsert: %w", domain.ErrStorage, err)
	}
	r.logSQL("Set", sqlStr, args)

	start := time.Now()
	if _, err := r.pool.Exec(ctx, sqlStr, args...); err != nil {
		r.logger.Printf("Set exec error after %s: %v", time.Since(start), err)
		return fmt.Errorf("%w: upsert artifact: %w", domain.ErrStorage, err)
	}
	r.logger.Printf("Set ok in %s key=%s", time.Since(start), key)
	return nil
}
