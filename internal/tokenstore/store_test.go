package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophdash/internal/common"
	"github.com/dmitrijs2005/gophdash/internal/kv"
	"github.com/dmitrijs2005/gophdash/internal/models"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
func newClock() *clock                   { return &clock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)} }

var alice = models.User{ID: "2", Email: "user@example.com", Name: "Regular User", Role: models.RoleUser}

func newTestStore(t *testing.T) (*Store, *kv.MemoryRepository, *clock) {
	t.Helper()
	repo := kv.NewMemoryRepository()
	c := newClock()
	return New(repo, WithClock(c.now)), repo, c
}

func TestIssue_WritesMetadata(t *testing.T) {
	s, repo, c := newTestStore(t)
	ctx := context.Background()

	tok, err := s.Issue(ctx, alice, common.AccessTokenLifetime)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	raw, err := repo.Get(ctx, common.TokenMetaKey(tok))
	require.NoError(t, err)
	require.NotNil(t, raw)

	meta, ok := s.Metadata(ctx, tok)
	require.True(t, ok)
	assert.Equal(t, "2", meta.UserID)
	assert.Equal(t, "user@example.com", meta.Email)
	assert.Equal(t, models.RoleUser, meta.Role)
	assert.True(t, c.t.Equal(meta.IssuedAt))
	assert.True(t, c.t.Add(15*time.Minute).Equal(meta.ExpiresAt))
}

func TestIssue_TokensAreUnique(t *testing.T) {
	s, _, _ := newTestStore(t)
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		tok, err := s.Issue(context.Background(), alice, time.Minute)
		require.NoError(t, err)
		_, dup := seen[tok]
		require.False(t, dup)
		seen[tok] = struct{}{}
	}
}

func TestIsValid_IsExactlyTheExpiryComparison(t *testing.T) {
	tests := []struct {
		name     string
		lifetime time.Duration
		shift    time.Duration
		want     bool
	}{
		{name: "fresh", lifetime: time.Minute, want: true},
		{name: "zero lifetime", lifetime: 0, want: false},
		{name: "negative lifetime", lifetime: -time.Second, want: false},
		{name: "one tick before expiry", lifetime: time.Minute, shift: time.Minute - time.Nanosecond, want: true},
		{name: "at expiry", lifetime: time.Minute, shift: time.Minute, want: false},
		{name: "clock moved backwards", lifetime: time.Minute, shift: -time.Hour, want: true},
		{name: "refresh lifetime", lifetime: common.RefreshTokenLifetime, shift: 6 * 24 * time.Hour, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, c := newTestStore(t)
			ctx := context.Background()

			tok, err := s.Issue(ctx, alice, tt.lifetime)
			require.NoError(t, err)
			c.advance(tt.shift)

			meta, ok := s.Metadata(ctx, tok)
			require.True(t, ok)
			assert.Equal(t, c.now().Before(meta.ExpiresAt), s.IsValid(ctx, tok))
			assert.Equal(t, tt.want, s.IsValid(ctx, tok))
		})
	}
}

func TestIsValid_MissingOrCorruptMetadata(t *testing.T) {
	s, repo, _ := newTestStore(t)
	ctx := context.Background()

	assert.False(t, s.IsValid(ctx, ""))
	assert.False(t, s.IsValid(ctx, "never-issued"))

	require.NoError(t, repo.Set(ctx, common.TokenMetaKey("broken"), []byte("{not json")))
	assert.False(t, s.IsValid(ctx, "broken"))
	_, ok := s.Metadata(ctx, "broken")
	assert.False(t, ok)
}

func TestPairAndUser_Roundtrip(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	_, ok := s.LoadPair(ctx)
	assert.False(t, ok)

	require.NoError(t, s.PersistPair(ctx, models.TokenPair{AccessToken: "a1", RefreshToken: "r1"}))
	pair, ok := s.LoadPair(ctx)
	require.True(t, ok)
	assert.Equal(t, models.TokenPair{AccessToken: "a1", RefreshToken: "r1"}, *pair)

	require.NoError(t, s.PersistAccessToken(ctx, "a2"))
	pair, ok = s.LoadPair(ctx)
	require.True(t, ok)
	assert.Equal(t, "a2", pair.AccessToken)
	assert.Equal(t, "r1", pair.RefreshToken)

	_, ok = s.LoadUser(ctx)
	assert.False(t, ok)
	require.NoError(t, s.SaveUser(ctx, alice))
	u, ok := s.LoadUser(ctx)
	require.True(t, ok)
	assert.Equal(t, alice, *u)
}

func TestLoadPair_RequiresBothTokens(t *testing.T) {
	s, repo, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, common.KeyAccessToken, []byte("a")))
	_, ok := s.LoadPair(ctx)
	assert.False(t, ok)
}

func seedSession(t *testing.T, s *Store) models.TokenPair {
	t.Helper()
	ctx := context.Background()
	access, err := s.Issue(ctx, alice, common.AccessTokenLifetime)
	require.NoError(t, err)
	refresh, err := s.Issue(ctx, alice, common.RefreshTokenLifetime)
	require.NoError(t, err)
	pair := models.TokenPair{AccessToken: access, RefreshToken: refresh}
	require.NoError(t, s.PersistPair(ctx, pair))
	require.NoError(t, s.SaveUser(ctx, alice))
	return pair
}

func TestClearAll_RemovesExactlyTheSessionKeys(t *testing.T) {
	s, repo, _ := newTestStore(t)
	ctx := context.Background()

	orphan, err := s.Issue(ctx, alice, time.Minute)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, common.KeyAppSettings, []byte(`{}`)))
	seedSession(t, s)

	require.NoError(t, s.ClearAll(ctx))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{common.TokenMetaKey(orphan), common.KeyAppSettings}, keys(all))
}

func TestClearAll_IsIdempotent(t *testing.T) {
	s, repo, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ClearAll(ctx), "clearing an empty store")

	seedSession(t, s)
	require.NoError(t, s.ClearAll(ctx))
	require.NoError(t, s.ClearAll(ctx))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestClearAll_SQLBackendUsesOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	s := New(kv.NewPostgresRepository(db))

	mock.ExpectQuery(`^SELECT value FROM local_storage WHERE key = \$1$`).
		WithArgs(common.KeyAccessToken).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte("a1")))
	mock.ExpectQuery(`^SELECT value FROM local_storage WHERE key = \$1$`).
		WithArgs(common.KeyRefreshToken).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte("r1")))
	mock.ExpectBegin()
	for _, key := range []string{
		common.TokenMetaKey("a1"),
		common.TokenMetaKey("r1"),
		common.KeyAccessToken,
		common.KeyRefreshToken,
		common.KeyUserInfo,
	} {
		mock.ExpectExec(`^DELETE FROM local_storage WHERE key = \$1$`).
			WithArgs(key).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, s.ClearAll(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

type failingDeleteRepo struct {
	*kv.MemoryRepository
	failKey string
	deleted []string
}

func (r *failingDeleteRepo) Delete(ctx context.Context, key string) error {
	r.deleted = append(r.deleted, key)
	if key == r.failKey {
		return errors.New("disk full")
	}
	return r.MemoryRepository.Delete(ctx, key)
}

func TestClearAll_BestEffort(t *testing.T) {
	repo := &failingDeleteRepo{MemoryRepository: kv.NewMemoryRepository(), failKey: common.KeyAccessToken}
	s := New(repo)
	pair := seedSession(t, s)

	err := s.ClearAll(context.Background())
	require.ErrorContains(t, err, "disk full")

	assert.Equal(t, []string{
		common.TokenMetaKey(pair.AccessToken),
		common.TokenMetaKey(pair.RefreshToken),
		common.KeyAccessToken,
		common.KeyRefreshToken,
		common.KeyUserInfo,
	}, repo.deleted)
}

type brokenReadRepo struct{ *kv.MemoryRepository }

func (brokenReadRepo) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("io error")
}

func TestReads_FailuresAreAbsent(t *testing.T) {
	s := New(brokenReadRepo{kv.NewMemoryRepository()})
	ctx := context.Background()

	assert.False(t, s.IsValid(ctx, "tok"))
	_, ok := s.LoadPair(ctx)
	assert.False(t, ok)
	_, ok = s.LoadUser(ctx)
	assert.False(t, ok)
}

func TestSweepExpired(t *testing.T) {
	s, repo, c := newTestStore(t)
	ctx := context.Background()

	stale, err := s.Issue(ctx, alice, time.Minute)
	require.NoError(t, err)
	live, err := s.Issue(ctx, alice, time.Hour)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, common.TokenMetaKey("corrupt"), []byte("??")))

	pair := seedSession(t, s)
	c.advance(30 * time.Minute)

	n, err := s.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok := s.Metadata(ctx, stale)
	assert.False(t, ok)
	_, ok = s.Metadata(ctx, live)
	assert.True(t, ok)

	_, ok = s.Metadata(ctx, pair.AccessToken)
	assert.True(t, ok, "expired access token of the stored pair is kept")
}

func TestSignedGenerator_TokensAreJWTs(t *testing.T) {
	repo := kv.NewMemoryRepository()
	s := New(repo, WithGenerator(NewGenerator("jwt", []byte("secret"))))

	tok, err := s.Issue(context.Background(), alice, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(tok, "."))
	assert.True(t, s.IsValid(context.Background(), tok))

	var meta models.TokenMetadata
	raw, err := repo.Get(context.Background(), common.TokenMetaKey(tok))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, alice.ID, meta.UserID)
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
