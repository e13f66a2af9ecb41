// Package auth signs and verifies the self-describing token format. Signed
// tokens still get a metadata entry in the token store; the signature lets
// the fixture backend reject forged tokens before touching storage.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophdash/internal/common"
	"github.com/dmitrijs2005/gophdash/internal/models"
)

type Claims struct {
	jwt.RegisteredClaims
	UserID string      `json:"uid"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

// GenerateToken signs a token for user valid from issuedAt for lifetime.
// Every token gets a random ID, so two tokens minted in the same instant
// still differ.
func GenerateToken(user models.User, secretKey []byte, issuedAt time.Time, lifetime time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(lifetime)),
		},
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})

	return token.SignedString(secretKey)
}

// ParseToken verifies the signature and expiry of tokenString.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// VerifySignature checks only that tokenString was signed with secretKey,
// ignoring expiry. Expiry stays the token store's decision.
func VerifySignature(tokenString string, secretKey []byte) error {
	_, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return common.ErrInvalidToken
	}
	return nil
}
