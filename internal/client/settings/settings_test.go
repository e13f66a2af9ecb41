package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophdash/internal/common"
	"github.com/dmitrijs2005/gophdash/internal/kv"
	"github.com/dmitrijs2005/gophdash/internal/logging"
	"github.com/dmitrijs2005/gophdash/internal/models"
)

func TestLoad_DefaultsWhenAbsentOrBroken(t *testing.T) {
	tests := map[string][]byte{
		"absent":  nil,
		"corrupt": []byte("{not json"),
		"invalid": []byte(`{"theme":"neon","defaultPeriod":"30d","language":"en"}`),
	}

	for name, stored := range tests {
		t.Run(name, func(t *testing.T) {
			repo := kv.NewMemoryRepository()
			if stored != nil {
				require.NoError(t, repo.Set(context.Background(), common.KeyAppSettings, stored))
			}
			s := NewService(repo, logging.Nop())
			assert.Equal(t, Defaults(), s.Load(context.Background()))
		})
	}
}

func TestSave_RoundTripAndReset(t *testing.T) {
	ctx := context.Background()
	s := NewService(kv.NewMemoryRepository(), logging.Nop())

	want := models.AppSettings{
		Theme:         "dark",
		DefaultPeriod: "90d",
		Notifications: models.Notifications{Push: true},
		Language:      "de-DE",
	}
	require.NoError(t, s.Save(ctx, want))
	assert.Equal(t, want, s.Load(ctx))

	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, Defaults(), s.Load(ctx))
}

func TestSave_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := kv.NewMemoryRepository()
	s := NewService(repo, logging.Nop())

	bad := Defaults()
	bad.DefaultPeriod = "2w"
	err := s.Save(ctx, bad)
	require.ErrorIs(t, err, common.ErrorValidation)

	data, err := repo.Get(ctx, common.KeyAppSettings)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSettingsSurviveSessionKeys(t *testing.T) {
	ctx := context.Background()
	repo := kv.NewMemoryRepository()
	s := NewService(repo, logging.Nop())

	custom := Defaults()
	custom.Theme = "light"
	require.NoError(t, s.Save(ctx, custom))
	require.NoError(t, repo.Delete(ctx, common.KeyAccessToken))
	require.NoError(t, repo.Delete(ctx, common.KeyRefreshToken))

	assert.Equal(t, "light", s.Load(ctx).Theme)
}
