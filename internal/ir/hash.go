package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainTable = "changeprob/table/v1"
	DomainScene = "changeprob/scene/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TableHash computes the content-addressed identity of a table.
// Two tables with the same records and IR version share a hash regardless of
// the format they were authored in.
func TableHash(t *SceneTable) (string, error) {
	canonical, err := MarshalCanonical(t.ToIR())
	if err != nil {
		return "", fmt.Errorf("TableHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTable, canonical), nil
}

// SceneHash computes the identity of a single scene.
func SceneHash(s Scene) (string, error) {
	canonical, err := MarshalCanonical(s.ToIR())
	if err != nil {
		return "", fmt.Errorf("SceneHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainScene, canonical), nil
}

// MustTableHash is like TableHash but panics on error.
// Use only in tests or when the table is known to be valid.
func MustTableHash(t *SceneTable) string {
	h, err := TableHash(t)
	if err != nil {
		panic(err)
	}
	return h
}
