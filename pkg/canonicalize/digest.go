package canonicalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Algorithm selects the digest function used for receipt content.
// All supported algorithms produce 256-bit digests rendered as lowercase hex.
type Algorithm string

const (
	AlgSHA256     Algorithm = "sha256"
	AlgBLAKE2b256 Algorithm = "blake2b-256"
	AlgSHA3256    Algorithm = "sha3-256"
)

// DefaultAlgorithm is used whenever the host does not configure one.
const DefaultAlgorithm = AlgSHA256

// Hasher computes hex-encoded digests over raw bytes or canonical JSON.
// The zero value is not usable; construct via NewHasher.
type Hasher struct {
	alg Algorithm
}

// NewHasher returns a Hasher for the given algorithm.
// An empty algorithm selects DefaultAlgorithm.
func NewHasher(alg Algorithm) (*Hasher, error) {
	if alg == "" {
		alg = DefaultAlgorithm
	}
	switch alg {
	case AlgSHA256, AlgBLAKE2b256, AlgSHA3256:
		return &Hasher{alg: alg}, nil
	default:
		return nil, fmt.Errorf("canonicalize: unsupported digest algorithm %q", alg)
	}
}

// MustHasher is NewHasher that panics on an unsupported algorithm.
// Intended for package defaults and tests.
func MustHasher(alg Algorithm) *Hasher {
	h, err := NewHasher(alg)
	if err != nil {
		panic(err)
	}
	return h
}

// Algorithm reports the configured algorithm.
func (h *Hasher) Algorithm() Algorithm {
	return h.alg
}

// Sum returns the hex digest of raw bytes. Total over all inputs.
func (h *Hasher) Sum(data []byte) string {
	switch h.alg {
	case AlgBLAKE2b256:
		d := blake2b.Sum256(data)
		return hex.EncodeToString(d[:])
	case AlgSHA3256:
		d := sha3.Sum256(data)
		return hex.EncodeToString(d[:])
	default:
		d := sha256.Sum256(data)
		return hex.EncodeToString(d[:])
	}
}

// CanonicalSum returns the hex digest of the RFC 8785 canonical form of v.
func (h *Hasher) CanonicalSum(v any) (string, error) {
	b, err := JCS(v)
	if err != nil {
		return "", err
	}
	return h.Sum(b), nil
}

// HashBytes computes the SHA-256 hex digest of raw bytes.
func HashBytes(data []byte) string {
	d := sha256.Sum256(data)
	return hex.EncodeToString(d[:])
}

// CanonicalHash returns the SHA-256 hex digest of the canonical JSON form of v.
func CanonicalHash(v any) (string, error) {
	b, err := JCS(v)
	if err != nil {
		return "", err
	}
	return HashBytes(b), nil
}
