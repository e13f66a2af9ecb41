// Package common contains shared constants and sentinel errors used across
// the dashboard client and the fixture backend.
package common

import "time"

// Header names set by the request pipeline on every outbound call.
const (
	AuthorizationHeaderName = "Authorization"
	CorrelationHeaderName   = "X-Request-ID"
	BearerPrefix            = "Bearer "
)

// Token lifetimes and request limits.
const (
	AccessTokenLifetime  = 15 * time.Minute
	RefreshTokenLifetime = 7 * 24 * time.Hour
	RequestTimeout       = 10 * time.Minute
	MinPasswordLength    = 4
)

// Keys of the persistent key-value store.
const (
	KeyAccessToken     = "accessToken"
	KeyRefreshToken    = "refreshToken"
	KeyUserInfo        = "userInfo"
	KeyCustomUsers     = "custom_users"
	KeyAppSettings     = "app_settings"
	TokenMetaKeyPrefix = "token_meta_"
)

// TokenMetaKey returns the storage key holding the metadata of token.
func TokenMetaKey(token string) string {
	return TokenMetaKeyPrefix + token
}
