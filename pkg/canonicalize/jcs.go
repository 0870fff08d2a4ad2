// Package canonicalize provides RFC 8785 (JSON Canonicalization Scheme)
// serialization and deterministic content digests for receipts.
//
// Canonical form fixes map-key ordering, disables HTML escaping, and uses
// UTF-8 throughout, so the same logical receipt hashes identically on every
// platform regardless of struct layout or map iteration order.
package canonicalize

import (
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// JCS returns the RFC 8785 canonical JSON representation of v.
//
// v is first marshaled with encoding/json (so struct tags are honored),
// then transformed into canonical form: keys sorted lexicographically by
// UTF-8 code point, no insignificant whitespace, ES6-style number
// serialization, no HTML escaping.
func JCS(v any) ([]byte, error) {
	intermediate, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jcs: pre-marshal failed: %w", err)
	}

	canonical, err := jcs.Transform(intermediate)
	if err != nil {
		return nil, fmt.Errorf("jcs: transform failed: %w", err)
	}
	return canonical, nil
}

// JCSString returns the canonical form as a string.
func JCSString(v any) (string, error) {
	b, err := JCS(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
