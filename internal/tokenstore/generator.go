package tokenstore

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophdash/internal/auth"
	"github.com/dmitrijs2005/gophdash/internal/common"
	"github.com/dmitrijs2005/gophdash/internal/models"
)

// Generator mints token strings. The store treats the result as an opaque
// lookup key whatever its format.
type Generator interface {
	Generate(user models.User, issuedAt time.Time, lifetime time.Duration) (string, error)
}

// OpaqueGenerator produces random tokens that carry no claims.
type OpaqueGenerator struct{}

func (OpaqueGenerator) Generate(models.User, time.Time, time.Duration) (string, error) {
	suffix, err := common.MakeRandHexString(8)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "") + suffix, nil
}

// SignedGenerator produces HS256 JWTs so a backend can check authenticity
// without access to the store.
type SignedGenerator struct {
	Secret []byte
}

func (g SignedGenerator) Generate(user models.User, issuedAt time.Time, lifetime time.Duration) (string, error) {
	return auth.GenerateToken(user, g.Secret, issuedAt, lifetime)
}

// NewGenerator returns the generator for format, "opaque" or "jwt".
func NewGenerator(format string, secret []byte) Generator {
	if format == "jwt" {
		return SignedGenerator{Secret: secret}
	}
	return OpaqueGenerator{}
}
