package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenMetadata_ValidAt(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"future", now.Add(time.Minute), true},
		{"exactly now", now, false},
		{"past", now.Add(-time.Millisecond), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := TokenMetadata{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, m.ValidAt(now))
		})
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("root").Valid())
}
