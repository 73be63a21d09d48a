package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/EgorLis/my-qrcodes/internal/domain"
)

// Postgres-бэкенд кеша артефактов: pgxpool + squirrel, схема через golang-migrate.

// DefaultSchema — схема, которую создают встроенные миграции.
const DefaultSchema = "qrcodes"

// pool — то, что нам нужно от pgxpool (и что умеет pgxmock).
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

type PGRepo struct {
	logger *log.Logger
	pool   pool
	schema string
}

func NewPGRepo(ctx context.Context, logger *log.Logger, dsn, schema string) (*PGRepo, error) {
	if err := runMigrations(dsn, logger); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn: %w", domain.ErrConfiguration, err)
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: open pool: %w", domain.ErrStorage, err)
	}
	logger.Printf("pool ready (max conns %d)", cfg.MaxConns)

	return newWithPool(p, schema, logger), nil
}

func newWithPool(p pool, schema string, logger *log.Logger) *PGRepo {
	if schema == "" {
		schema = DefaultSchema
	}
	return &PGRepo{pool: p, schema: schema, logger: logger}
}

func (r *PGRepo) Close() {
	r.pool.Close()
	r.logger.Println("pool closed")
}

// ---- Схема кеша: встроенные миграции golang-migrate ----

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateLog пускает вывод golang-migrate в логгер кеша.
type migrateLog struct{ l *log.Logger }

func (m migrateLog) Printf(format string, v ...any) { m.l.Printf("migrate: "+format, v...) }
func (m migrateLog) Verbose() bool                  { return false }

func runMigrations(dsn string, logger *log.Logger) error {
	// отдельный *sql.DB на время миграций, пул открывается уже после
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration db: %w", err)
	}
	defer db.Close()

	drv, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "qr_schema_migrations"})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", drv)
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}
	defer m.Close()
	m.Log = migrateLog{l: logger}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
	case err != nil:
		return fmt.Errorf("migrate up: %w", err)
	}

	v, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migrate version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty, fix it by hand", v)
	}
	logger.Printf("schema at version %d", v)
	return nil
}

func (r *PGRepo) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		r.logger.Printf("PING failed: %v", err)
		return err
	}
	return nil
}

func (r *PGRepo) qb() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func (r *PGRepo) table() string { return r.schema + ".qr_artifacts" }

func (r *PGRepo) logSQL(op, sqlStr string, args []any) {
	r.logger.Printf("%s sql=%q args=%d", op, sqlStr, len(args))
}
