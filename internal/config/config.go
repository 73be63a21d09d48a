package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Бэкенды кеша и публикации
const (
	CacheFile     = "file"
	CacheRedis    = "redis"
	CachePostgres = "postgres"

	PublisherLocal = "local"
	PublisherS3    = "s3"
)

// MigrationsSchema — схема, которую создают встроенные миграции postgres-кеша.
// Другое значение DB_SCHEME не поддерживается.
const MigrationsSchema = "qrcodes"

type Config struct {
	AppPort string `mapstructure:"APP_PORT"`

	// --- QR ---
	ArtifactDir string `mapstructure:"QR_TMP_DIR"`
	URLPrefix   string `mapstructure:"QR_TMP_URL"`
	BaseDir     string `mapstructure:"QR_BASE_DIR"`
	StaticRoute string `mapstructure:"QR_STATIC_ROUTE"`
	Margin      int    `mapstructure:"QR_MARGIN"`

	// --- Cache ---
	CacheBackend    string `mapstructure:"CACHE_BACKEND"`
	CacheDir        string `mapstructure:"CACHE_DIR"`
	CacheMemorySize int    `mapstructure:"CACHE_MEMORY_SIZE"`

	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisDB         int    `mapstructure:"REDIS_DB"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisTTLSeconds int    `mapstructure:"REDIS_TTL_SECONDS"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBScheme   string `mapstructure:"DB_SCHEME"`

	// --- Publisher ---
	Publisher string `mapstructure:"PUBLISHER"`

	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3UseSSL    bool   `mapstructure:"S3_USE_SSL"`
	S3PathStyle bool   `mapstructure:"S3_PATH_STYLE"`
	S3PublicURL string `mapstructure:"S3_PUBLIC_URL"`
	S3KeyPrefix string `mapstructure:"S3_KEY_PREFIX"`
}

// String реализует интерфейс Stringer
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  AppPort: %s\n", c.AppPort))
	sb.WriteString(fmt.Sprintf("  ArtifactDir: %s\n", c.ArtifactDir))
	sb.WriteString(fmt.Sprintf("  URLPrefix: %s\n", c.URLPrefix))
	sb.WriteString(fmt.Sprintf("  BaseDir: %s\n", c.BaseDir))
	sb.WriteString(fmt.Sprintf("  StaticRoute: %s\n", c.StaticRoute))
	sb.WriteString(fmt.Sprintf("  Margin: %d\n", c.Margin))

	sb.WriteString(fmt.Sprintf("  CacheBackend: %s\n", c.CacheBackend))
	sb.WriteString(fmt.Sprintf("  CacheDir: %s\n", c.CacheDir))
	sb.WriteString(fmt.Sprintf("  CacheMemorySize: %d\n", c.CacheMemorySize))

	switch c.CacheBackend {
	case CacheRedis:
		sb.WriteString(fmt.Sprintf("  RedisAddr: %s\n", c.RedisAddr))
		sb.WriteString(fmt.Sprintf("  RedisDB: %d\n", c.RedisDB))
		sb.WriteString(fmt.Sprintf("  RedisPassword: %s\n", mask(c.RedisPassword)))
		sb.WriteString(fmt.Sprintf("  RedisTTLSeconds: %d\n", c.RedisTTLSeconds))
	case CachePostgres:
		sb.WriteString(fmt.Sprintf("  DBHost: %s\n", c.DBHost))
		sb.WriteString(fmt.Sprintf("  DBPort: %d\n", c.DBPort))
		sb.WriteString(fmt.Sprintf("  DBUser: %s\n", c.DBUser))
		sb.WriteString(fmt.Sprintf("  DBName: %s\n", c.DBName))
		sb.WriteString(fmt.Sprintf("  DBScheme: %s\n", c.DBScheme))
		// пароль маскируем
		sb.WriteString(fmt.Sprintf("  DBPassword: %s\n", mask(c.DBPassword)))
	}

	sb.WriteString(fmt.Sprintf("  Publisher: %s\n", c.Publisher))
	if c.Publisher == PublisherS3 {
		sb.WriteString(fmt.Sprintf("  S3Endpoint: %s\n", c.S3Endpoint))
		sb.WriteString(fmt.Sprintf("  S3Region: %s\n", c.S3Region))
		sb.WriteString(fmt.Sprintf("  S3Bucket: %s\n", c.S3Bucket))
		sb.WriteString(fmt.Sprintf("  S3AccessKey: %s\n", mask(c.S3AccessKey)))
		sb.WriteString(fmt.Sprintf("  S3SecretKey: %s\n", mask(c.S3SecretKey)))
		sb.WriteString(fmt.Sprintf("  S3UseSSL: %v\n", c.S3UseSSL))
		sb.WriteString(fmt.Sprintf("  S3PathStyle: %v\n", c.S3PathStyle))
		sb.WriteString(fmt.Sprintf("  S3PublicURL: %s\n", c.S3PublicURL))
		sb.WriteString(fmt.Sprintf("  S3KeyPrefix: %s\n", c.S3KeyPrefix))
	}

	return sb.String()
}

func mask(s string) string {
	if s == "" {
		return "(empty)"
	}
	return "********"
}

// Регистрируем интересующие ключи окружения
var keys = []string{
	"APP_ENV", "APP_PORT",
	"QR_TMP_DIR", "QR_TMP_URL", "QR_BASE_DIR", "QR_STATIC_ROUTE", "QR_MARGIN",
	"CACHE_BACKEND", "CACHE_DIR", "CACHE_MEMORY_SIZE",
	"REDIS_ADDR", "REDIS_DB", "REDIS_PASSWORD", "REDIS_TTL_SECONDS",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SCHEME",
	"PUBLISHER",
	"S3_ENDPOINT", "S3_REGION", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY",
	"S3_USE_SSL", "S3_PATH_STYLE", "S3_PUBLIC_URL", "S3_KEY_PREFIX",
}

// LoadFromEnv загружает конфигурацию из переменных окружения
func LoadFromEnv() (*Config, error) {
	// Загружаем .env только для локальной разработки
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.New("failed to load .env")
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("QR_MARGIN", 2)
	v.SetDefault("CACHE_BACKEND", CacheFile)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SCHEME", MigrationsSchema)
	v.SetDefault("PUBLISHER", PublisherLocal)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.CacheBackend {
	case CacheFile, CacheRedis, CachePostgres:
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q", c.CacheBackend)
	}
	if c.CacheBackend == CachePostgres && c.DBScheme != MigrationsSchema {
		return fmt.Errorf("unsupported DB_SCHEME %q: migrations create schema %q", c.DBScheme, MigrationsSchema)
	}
	switch c.Publisher {
	case PublisherLocal, PublisherS3:
	default:
		return fmt.Errorf("unsupported PUBLISHER %q", c.Publisher)
	}
	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// ---- Трёхуровневый приоритет: вызов > окружение > встроенное значение ----

// Overrides — значения конкретного вызова (флаги CLI и т.п.). nil — не задано.
type Overrides struct {
	ArtifactDir *string
	URLPrefix   *string
	BaseDir     *string
}

// Resolved — итоговые значения, которые получает ядро.
type Resolved struct {
	ArtifactDir string
	CacheDir    string
	URLPrefix   string // пусто — префикс не задан нигде
}

// DefaultArtifactDir — встроенное значение: <base>/temp или <tmp>/qrcode.
func DefaultArtifactDir(baseDir string) string {
	if baseDir != "" {
		return filepath.Join(baseDir, "temp")
	}
	return filepath.Join(os.TempDir(), "qrcode")
}

func (c *Config) Resolve(o Overrides) Resolved {
	base := pick(o.BaseDir, c.BaseDir, "")

	var r Resolved
	r.ArtifactDir = pick(o.ArtifactDir, c.ArtifactDir, DefaultArtifactDir(base))
	r.URLPrefix = pick(o.URLPrefix, c.URLPrefix, "")
	// файловый кеш по умолчанию живёт рядом с картинками
	r.CacheDir = c.CacheDir
	if r.CacheDir == "" {
		r.CacheDir = r.ArtifactDir
	}
	return r
}

// pick: заданный override (даже пустой) > непустое значение окружения > def.
func pick(override *string, ambient, def string) string {
	if override != nil {
		return *override
	}
	if ambient != "" {
		return ambient
	}
	return def
}
