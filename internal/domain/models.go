package domain

import (
	"fmt"
	"strings"
)

// Уровень коррекции ошибок QR (L, M, Q, H)
type ECLevel string

const (
	ECLevelL ECLevel = "L"
	ECLevelM ECLevel = "M"
	ECLevelQ ECLevel = "Q"
	ECLevelH ECLevel = "H"
)

// Значения по умолчанию и границы для размера точки матрицы
const (
	DefaultECLevel    = ECLevelL
	DefaultModuleSize = 4
	MinModuleSize     = 1
	MaxModuleSize     = 10
)

func (l ECLevel) Valid() bool {
	switch l {
	case ECLevelL, ECLevelM, ECLevelQ, ECLevelH:
		return true
	}
	return false
}

func (l ECLevel) String() string { return string(l) }

// ParseECLevel принимает ровно "L", "M", "Q" или "H". Пустая строка — уровень по умолчанию.
func ParseECLevel(s string) (ECLevel, error) {
	if s == "" {
		return DefaultECLevel, nil
	}
	l := ECLevel(s)
	if !l.Valid() {
		return "", fmt.Errorf("%w: ecc should be one of L, M, Q, H (got %q)", ErrInvalidRequest, s)
	}
	return l, nil
}

// Запрос на QR-код (уже нормализованный вызывающей стороной)
type Request struct {
	Value string  `json:"value"`
	ECC   ECLevel `json:"ecc"`
	Size  int     `json:"size"`
}

// NewRequest тримит value и проверяет все поля.
func NewRequest(value string, ecc ECLevel, size int) (Request, error) {
	r := Request{Value: strings.TrimSpace(value), ECC: ecc, Size: size}
	if err := r.Validate(); err != nil {
		return Request{}, err
	}
	return r, nil
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Value) == "" {
		return fmt.Errorf("%w: missing or empty value", ErrInvalidRequest)
	}
	if !r.ECC.Valid() {
		return fmt.Errorf("%w: ecc should be one of L, M, Q, H (got %q)", ErrInvalidRequest, string(r.ECC))
	}
	if r.Size < MinModuleSize || r.Size > MaxModuleSize {
		return fmt.Errorf("%w: size should be between %d and %d (got %d)",
			ErrInvalidRequest, MinModuleSize, MaxModuleSize, r.Size)
	}
	return nil
}

func (r Request) Key() CacheKey { return DeriveKey(r.Value, r.ECC, r.Size) }

// Опубликованная ссылка на картинку
type ArtifactRecord struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (a ArtifactRecord) Valid() bool {
	return a.URL != "" && a.Width > 0 && a.Height > 0
}

// Запись кеша: запись + исходное значение для проверки при чтении
type CacheEntry struct {
	Value  string `json:"value" cbor:"value"`
	URL    string `json:"url" cbor:"url"`
	Width  int    `json:"width" cbor:"width"`
	Height int    `json:"height" cbor:"height"`
}

func NewCacheEntry(req Request, rec ArtifactRecord) CacheEntry {
	return CacheEntry{Value: req.Value, URL: rec.URL, Width: rec.Width, Height: rec.Height}
}

// Record возвращает запись, если она относится к req и выглядит целой.
func (e CacheEntry) Record(req Request) (ArtifactRecord, bool) {
	if e.Value != req.Value {
		return ArtifactRecord{}, false
	}
	rec := ArtifactRecord{URL: e.URL, Width: e.Width, Height: e.Height}
	if !rec.Valid() {
		return ArtifactRecord{}, false
	}
	return rec, true
}
