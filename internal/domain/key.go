package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strconv"
)

// keyVersion меняется, если меняется формат рендера или схема ключа.
const keyVersion = "qrcode/v1"

type CacheKey string

// DeriveKey — детерминированный ключ по (value, ecc, size).
// Каждое поле пишется как длина (8 байт BE) + байты, поэтому разделители внутри value
// не могут склеиться с соседними полями.
func DeriveKey(value string, ecc ECLevel, size int) CacheKey {
	h := sha256.New()
	for _, field := range []string{keyVersion, value, string(ecc), strconv.Itoa(size)} {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(field)))
		h.Write(n[:])
		h.Write([]byte(field))
	}
	return CacheKey(hex.EncodeToString(h.Sum(nil)))
}

func (k CacheKey) String() string { return string(k) }

// ArtifactName — имя PNG-файла в каталоге артефактов.
func (k CacheKey) ArtifactName() string { return "v" + string(k) + ".png" }
