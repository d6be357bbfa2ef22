package utils

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexSHA1 = regexp.MustCompile(`^[0-9a-f]{40}$`)

func TestSHA1_KnownDigest(t *testing.T) {
	assert.Equal(t, "a6ad00ac113a19d953efb91820d8788e2263b28a", SHA1("test@test.com"))
	assert.Equal(t, "e76f6c9da0e88b888a98f896b25ee4dcbf769579", SHA1("firefoxaccount@test.com"))
}

func TestSHA1_StableAcrossCalls(t *testing.T) {
	emails := []string{"a@b.c", "verifiedemail@test.com", "", strings.Repeat("x", 300)}
	for _, e := range emails {
		first := SHA1(e)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, SHA1(e))
		}
		assert.Regexp(t, hexSHA1, first)
	}
}

func TestSHA1_HashesAddressAsGiven(t *testing.T) {
	assert.Equal(t, "b448b34683601d885b448f2fdd3cce7202345a6a", SHA1("newFirefoxAccount@test.com"))
	assert.Equal(t, "022ffe6981ab59475c1a142b6fd58f32857b500f", SHA1("Alice@Example.com"))
	assert.Equal(t, "fc2398a73dd54d6237c4fdb58fd7d75347cf5af3", SHA1("alice@example.com"))
	assert.NotEqual(t, SHA1("test@test.com"), SHA1(" test@test.com"))
}

func TestSHA1All(t *testing.T) {
	hashes := SHA1All([]string{"test@test.com", "firefoxaccount@test.com"})
	assert.Equal(t, []string{SHA1("test@test.com"), SHA1("firefoxaccount@test.com")}, hashes)
	assert.Empty(t, SHA1All(nil))
}

func TestHashPrefix(t *testing.T) {
	assert.Equal(t, "A6AD00", HashPrefix(SHA1("test@test.com"), 6))
	assert.Equal(t, "AB", HashPrefix("ab", 6))
}
