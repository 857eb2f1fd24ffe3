package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for fingerprints. The version suffix allows the
// algorithm to change without colliding with stored identities.
const (
	DomainType   = "dtengine/type/v1"
	DomainReport = "dtengine/report/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the domain-separated SHA-256 of v's canonical JSON.
func Fingerprint(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", domain, err)
	}
	return hashWithDomain(domain, data), nil
}

// MustFingerprint is like Fingerprint but panics on error.
func MustFingerprint(domain string, v any) string {
	fp, err := Fingerprint(domain, v)
	if err != nil {
		panic(err)
	}
	return fp
}
