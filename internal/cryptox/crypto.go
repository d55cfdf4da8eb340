// Package cryptox holds the password hashing used for account credentials
// and the digest under which refresh tokens are stored.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/dmitrijs2005/gridplanner/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of a freshly generated salt in bytes.
const SaltSize = 16

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// HashPassword derives an argon2id verifier for password under salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyPassword recomputes the verifier and compares it in constant time.
func VerifyPassword(password, salt, verifier []byte) bool {
	candidate := HashPassword(password, salt)
	defer common.WipeByteArray(candidate)
	return subtle.ConstantTimeCompare(candidate, verifier) == 1
}

// TokenDigest is the stored form of an opaque bearer token. Tokens are
// random, so an unsalted SHA-256 is enough to keep a database dump from
// being replayable.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
