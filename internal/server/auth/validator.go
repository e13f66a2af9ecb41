// Package auth validates bearer tokens presented to the fixture backend
// against the token store shared with the client.
package auth

import (
	"context"
	"strings"

	jwtauth "github.com/dmitrijs2005/gophdash/internal/auth"
	"github.com/dmitrijs2005/gophdash/internal/common"
	"github.com/dmitrijs2005/gophdash/internal/models"
	"github.com/dmitrijs2005/gophdash/internal/tokenstore"
)

type Validator struct {
	store  *tokenstore.Store
	secret []byte
	verify bool
}

// NewValidator checks tokens against store. When verifySignature is set,
// tokens must also carry a valid signature made with secret.
func NewValidator(store *tokenstore.Store, secret []byte, verifySignature bool) *Validator {
	return &Validator{store: store, secret: secret, verify: verifySignature}
}

// Validate returns the metadata of token, common.ErrTokenExpired when the
// token is known but past its expiry, or common.ErrInvalidToken otherwise.
// Refresh tokens are accepted too; metadata does not record a token kind.
func (v *Validator) Validate(ctx context.Context, token string) (*models.TokenMetadata, error) {
	if token == "" {
		return nil, common.ErrInvalidToken
	}

	if v.verify {
		if err := jwtauth.VerifySignature(token, v.secret); err != nil {
			return nil, err
		}
	}

	meta, ok := v.store.Metadata(ctx, token)
	if !ok {
		return nil, common.ErrInvalidToken
	}
	if !meta.ValidAt(v.store.Now()) {
		return nil, common.ErrTokenExpired
	}
	return meta, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	if len(header) < len(common.BearerPrefix) || !strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(common.BearerPrefix):])
}

type ctxKey struct{}

func WithMetadata(ctx context.Context, meta *models.TokenMetadata) context.Context {
	return context.WithValue(ctx, ctxKey{}, meta)
}

// FromContext returns the metadata stored by WithMetadata.
func FromContext(ctx context.Context) (*models.TokenMetadata, bool) {
	meta, ok := ctx.Value(ctxKey{}).(*models.TokenMetadata)
	return meta, ok
}
