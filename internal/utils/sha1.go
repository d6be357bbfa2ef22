package utils

import (
	"crypto/sha1" //nolint:gosec // lookup key, not a security boundary
	"encoding/hex"
	"strings"
)

// SHA1 returns the lowercase hex SHA-1 digest of email exactly as given.
// The digest is the lookup key shared with the breach-data provider, so it must
// agree with the stored address text that keys subscriber rows.
func SHA1(email string) string {
	sum := sha1.Sum([]byte(email)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// SHA1All maps SHA1 over a list of addresses.
func SHA1All(emails []string) []string {
	hashes := make([]string, 0, len(emails))
	for _, e := range emails {
		hashes = append(hashes, SHA1(e))
	}
	return hashes
}

// HashPrefix returns the upper-cased k-anonymity prefix of a digest.
func HashPrefix(sha1Hex string, n int) string {
	if n > len(sha1Hex) {
		n = len(sha1Hex)
	}
	return strings.ToUpper(sha1Hex[:n])
}
