package crypto

import (
	"encoding/hex"

	"github.com/minio/sha256-simd"
)

// SHA256Hex computes the SHA-256 hash of data and returns it as a
// lowercase hex string.
func SHA256Hex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SHA256String hashes a UTF-8 string.
func SHA256String(s string) string {
	return SHA256Hex([]byte(s))
}
