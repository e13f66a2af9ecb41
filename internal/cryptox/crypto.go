// Package cryptox hashes the passwords of locally edited directory entries.
package cryptox

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"

	"github.com/dmitrijs2005/gophdash/internal/common"
)

const saltSize = 16

// NewSalt returns a fresh random salt.
func NewSalt() []byte {
	return common.GenerateRandByteArray(saltSize)
}

// HashPassword derives an argon2id hash of password.
func HashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
}

// VerifyPassword reports whether password hashes to hash under salt.
func VerifyPassword(password string, salt, hash []byte) bool {
	if len(hash) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(HashPassword(password, salt), hash) == 1
}
