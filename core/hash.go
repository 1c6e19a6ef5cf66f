package core

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/pkg/errors"
)

// SemanticHash computes the cache key the external protocol uses for
// import integrity and content-addressed storage:
// sha256(CBOR(alpha-normalize(expr))), rendered as "sha256:<hex>". The
// string form, not the raw multihash bytes, is the canonical one compared
// against a declared integrity check — a declared hash is always written
// in that string form in source, so comparing strings avoids a needless
// decode/re-encode round trip.
func SemanticHash(t Term) (string, error) {
	digest, err := semanticDigest(t)
	if err != nil {
		return "", err
	}
	return "sha256:" + hex.EncodeToString(digest), nil
}

// SemanticMultihash returns the same digest in the self-describing
// multihash byte form (0x12 0x20 prefix, sha256 code and 32-byte length)
// that CBOR uses for an Import's declared hash field.
func SemanticMultihash(t Term) ([]byte, error) {
	digest, err := semanticDigest(t)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 34)
	out = append(out, 0x12, 0x20)
	return append(out, digest...), nil
}

func semanticDigest(t Term) ([]byte, error) {
	normal := AlphaNormalize(t)
	encoded, err := EncodeCbor(normal)
	if err != nil {
		return nil, errors.Wrap(err, "semantic hash")
	}
	sum := sha256.Sum256(encoded)
	return sum[:], nil
}

// CheckIntegrity reports whether expr's semantic hash matches a declared
// "sha256:<hex>" integrity string, returning an *ImportError{IntegrityFailure}
// with both hashes attached on mismatch.
func CheckIntegrity(source, declared string, expr Term) error {
	actual, err := SemanticHash(expr)
	if err != nil {
		return err
	}
	if actual != declared {
		return &ImportError{Kind: IntegrityFailure, Source: source, Expected: declared, Actual: actual}
	}
	return nil
}
