// Package models holds the records shared by the token store, the session
// layer and the fixture backend.
package models

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is the identity record cached under userInfo after login.
type User struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// UserCredential is a directory entry. Fixture entries carry a plaintext
// Password; overlays written after a password change carry PasswordHash and
// Salt instead.
type UserCredential struct {
	User
	Password     string `json:"password,omitempty"`
	PasswordHash []byte `json:"passwordHash,omitempty"`
	Salt         []byte `json:"salt,omitempty"`
}

// TokenMetadata is stored under token_meta_<token>.
type TokenMetadata struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ValidAt reports whether the token described by m is still usable at now.
func (m TokenMetadata) ValidAt(now time.Time) bool {
	return now.Before(m.ExpiresAt)
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ProfileUpdate lists the user fields editable from the settings screen.
// Nil fields are left unchanged.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Role   *Role   `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
	Avatar *string `json:"avatar,omitempty" validate:"omitempty,max=2048"`
}

type Notifications struct {
	Email   bool `json:"email"`
	Push    bool `json:"push"`
	Reports bool `json:"reports"`
}

// AppSettings is persisted under app_settings, independent of the session.
type AppSettings struct {
	Theme         string        `json:"theme" validate:"oneof=light dark system"`
	DefaultPeriod string        `json:"defaultPeriod" validate:"oneof=7d 30d 90d 1y"`
	Notifications Notifications `json:"notifications"`
	Language      string        `json:"language" validate:"required,bcp47_language_tag"`
}
