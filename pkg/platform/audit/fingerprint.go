package audit

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Fingerprinter derives a stable, keyed digest of sensitive identifiers.
// Without the key the digest cannot be brute forced back to an IBAN, whose
// keyspace is small enough for a plain hash to be reversible.
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter returns a Fingerprinter keyed with key. BLAKE2b accepts
// keys of at most 64 bytes; an empty key yields unkeyed digests.
func NewFingerprinter(key []byte) (*Fingerprinter, error) {
	if len(key) > blake2b.Size {
		return nil, fmt.Errorf("fingerprint key too long: %d bytes, max %d", len(key), blake2b.Size)
	}
	return &Fingerprinter{key: append([]byte(nil), key...)}, nil
}

// Fingerprint returns the first 16 bytes of the keyed BLAKE2b-256 digest of
// value, hex encoded. A nil Fingerprinter returns an empty string.
func (f *Fingerprinter) Fingerprint(value string) string {
	if f == nil {
		return ""
	}
	h, err := blake2b.New256(f.key)
	if err != nil {
		// key length is checked in NewFingerprinter
		return ""
	}
	_, _ = h.Write([]byte(value))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}
