package dep

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainNode   = "verdant/node/v1"
	DomainResult = "verdant/result/v1"
)

// FingerprintSize is the fixed encoded width of a Fingerprint in bytes.
const FingerprintSize = 16

// Fingerprint is an opaque 128-bit content hash.
//
// Fingerprints stand in for "did this node's output change": they are
// produced by hashing content, compared only for equality, and encoded as
// exactly FingerprintSize bytes on disk. The zero value is reserved as the
// sentinel for nodes whose kind carries no parameters.
type Fingerprint [FingerprintSize]byte

// ZeroFingerprint is the sentinel fingerprint for parameterless kinds.
var ZeroFingerprint Fingerprint

// IsZero reports whether f is the parameterless-kind sentinel.
func (f Fingerprint) IsZero() bool {
	return f == ZeroFingerprint
}

// String renders the fingerprint as lowercase hex.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short renders the first 4 bytes as hex, for diagnostics.
func (f Fingerprint) Short() string {
	return hex.EncodeToString(f[:4])
}

// ParseFingerprint parses a 32-character hex string into a Fingerprint.
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	raw, err := hex.DecodeString(s)
	if err != nil {
		return f, fmt.Errorf("parse fingerprint: %w", err)
	}
	if len(raw) != FingerprintSize {
		return f, fmt.Errorf("parse fingerprint: got %d bytes, want %d", len(raw), FingerprintSize)
	}
	copy(f[:], raw)
	return f, nil
}

// MustParseFingerprint is like ParseFingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParseFingerprint(s string) Fingerprint {
	f, err := ParseFingerprint(s)
	if err != nil {
		panic(err)
	}
	return f
}

// HashKey computes the content-addressed fingerprint of a node key.
//
// Format: SHA256(domain + 0x00 + field*) truncated to 128 bits, where each
// field is length-prefixed to avoid boundary ambiguity and string fields
// are NFC normalized first. The null byte separator prevents domain/data
// ambiguity. The same key always hashes to the same fingerprint, across
// processes and sessions.
func HashKey(parts ...string) Fingerprint {
	return hashWithDomain(DomainNode, parts)
}

// HashResult fingerprints a computed result payload.
// The payload is treated as opaque bytes; callers are responsible for
// serializing results deterministically before hashing.
func HashResult(payload []byte) Fingerprint {
	h := sha256.New()
	h.Write([]byte(DomainResult))
	h.Write([]byte{0x00})
	h.Write(payload)
	return truncate(h.Sum(nil))
}

func hashWithDomain(domain string, parts []string) Fingerprint {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	for _, p := range parts {
		// NFC normalize so visually identical keys hash identically
		// regardless of the source's Unicode composition.
		normalized := norm.NFC.String(p)
		writeLengthPrefixed(h, []byte(normalized))
	}
	return truncate(h.Sum(nil))
}

func writeLengthPrefixed(h interface{ Write([]byte) (int, error) }, data []byte) {
	length := uint64(len(data))
	h.Write([]byte{
		byte(length >> 56),
		byte(length >> 48),
		byte(length >> 40),
		byte(length >> 32),
		byte(length >> 24),
		byte(length >> 16),
		byte(length >> 8),
		byte(length),
	})
	h.Write(data)
}

func truncate(sum []byte) Fingerprint {
	var f Fingerprint
	copy(f[:], sum[:FingerprintSize])
	return f
}
