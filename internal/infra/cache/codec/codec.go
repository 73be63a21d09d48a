// Package codec сериализует записи кеша в детерминированный CBOR.
package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/EgorLis/my-qrcodes/internal/domain"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// Core Deterministic Encoding: одна и та же запись — одни и те же байты
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: cbor encoder init failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("codec: cbor decoder init failed: " + err.Error())
	}
}

func Marshal(e domain.CacheEntry) ([]byte, error) {
	b, err := encMode.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}
	return b, nil
}

func Unmarshal(b []byte) (domain.CacheEntry, error) {
	var e domain.CacheEntry
	if len(b) == 0 {
		return e, fmt.Errorf("unmarshal cache entry: empty payload")
	}
	if err := decMode.Unmarshal(b, &e); err != nil {
		return domain.CacheEntry{}, fmt.Errorf("unmarshal cache entry: %w", err)
	}
	return e, nil
}
