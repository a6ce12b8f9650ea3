package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainDefinition = "enums/definition/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DefinitionID computes the content-addressed ID of a definition.
// Two definitions with the same name, configuration and ordered members share an ID.
func DefinitionID(def Definition) (string, error) {
	canonical, err := MarshalCanonical(def.Object())
	if err != nil {
		return "", fmt.Errorf("DefinitionID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDefinition, canonical), nil
}

// MustDefinitionID is like DefinitionID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDefinitionID(def Definition) string {
	id, err := DefinitionID(def)
	if err != nil {
		panic(err)
	}
	return id
}
