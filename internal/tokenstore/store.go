// Package tokenstore keeps issued tokens, their metadata and the current
// token pair in a kv.Repository.
//
// Reads never fail: a missing, unreadable or corrupt entry is reported as
// absent. Writes return errors so the session layer can decide what a failed
// issuance means.
package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdash/internal/common"
	"github.com/dmitrijs2005/gophdash/internal/kv"
	"github.com/dmitrijs2005/gophdash/internal/logging"
	"github.com/dmitrijs2005/gophdash/internal/models"
)

type Store struct {
	repo   kv.Repository
	gen    Generator
	now    func() time.Time
	logger logging.Logger
}

type Option func(*Store)

func WithGenerator(g Generator) Option {
	return func(s *Store) { s.gen = g }
}

// WithClock replaces time.Now, mainly for tests that need to move time.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l.With("module", "tokenstore") }
}

func New(repo kv.Repository, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		gen:    OpaqueGenerator{},
		now:    time.Now,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the store's notion of the current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Issue mints a token for user and records its metadata.
func (s *Store) Issue(ctx context.Context, user models.User, lifetime time.Duration) (string, error) {
	issuedAt := s.now()

	token, err := s.gen.Generate(user, issuedAt, lifetime)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	meta := models.TokenMetadata{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(lifetime),
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to encode token metadata: %w", err)
	}

	if err := s.repo.Set(ctx, common.TokenMetaKey(token), data); err != nil {
		return "", fmt.Errorf("failed to store token metadata: %w", err)
	}

	return token, nil
}

func (s *Store) Metadata(ctx context.Context, token string) (*models.TokenMetadata, bool) {
	if token == "" {
		return nil, false
	}

	data, err := s.repo.Get(ctx, common.TokenMetaKey(token))
	if err != nil {
		s.logger.Warn(ctx, "token metadata unreadable", "error", err)
		return nil, false
	}
	if data == nil {
		return nil, false
	}

	var meta models.TokenMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		s.logger.Debug(ctx, "token metadata corrupt", "error", err)
		return nil, false
	}
	return &meta, true
}

// IsValid is true exactly when metadata exists for token and has not expired.
func (s *Store) IsValid(ctx context.Context, token string) bool {
	meta, ok := s.Metadata(ctx, token)
	if !ok {
		return false
	}
	return meta.ValidAt(s.now())
}

func (s *Store) PersistPair(ctx context.Context, pair models.TokenPair) error {
	if err := s.repo.Set(ctx, common.KeyAccessToken, []byte(pair.AccessToken)); err != nil {
		return err
	}
	return s.repo.Set(ctx, common.KeyRefreshToken, []byte(pair.RefreshToken))
}

// PersistAccessToken replaces the stored access token, keeping the refresh
// token as is.
func (s *Store) PersistAccessToken(ctx context.Context, token string) error {
	return s.repo.Set(ctx, common.KeyAccessToken, []byte(token))
}

func (s *Store) AccessToken(ctx context.Context) string {
	return s.readString(ctx, common.KeyAccessToken)
}

func (s *Store) RefreshToken(ctx context.Context) string {
	return s.readString(ctx, common.KeyRefreshToken)
}

// LoadPair returns the stored pair only when both tokens are present.
func (s *Store) LoadPair(ctx context.Context) (*models.TokenPair, bool) {
	access := s.AccessToken(ctx)
	refresh := s.RefreshToken(ctx)
	if access == "" || refresh == "" {
		return nil, false
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, true
}

func (s *Store) SaveUser(ctx context.Context, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return s.repo.Set(ctx, common.KeyUserInfo, data)
}

func (s *Store) LoadUser(ctx context.Context) (*models.User, bool) {
	data, err := s.repo.Get(ctx, common.KeyUserInfo)
	if err != nil || data == nil {
		return nil, false
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		s.logger.Debug(ctx, "cached user corrupt", "error", err)
		return nil, false
	}
	return &user, true
}

// ClearAll removes the stored pair, the cached user and the metadata of the
// two stored tokens. Other token_meta_ entries are left alone. SQL backends
// remove them in one transaction; otherwise every removal is attempted even
// when an earlier one fails.
func (s *Store) ClearAll(ctx context.Context) error {
	var keys []string
	for _, token := range []string{s.AccessToken(ctx), s.RefreshToken(ctx)} {
		if token != "" {
			keys = append(keys, common.TokenMetaKey(token))
		}
	}
	keys = append(keys, common.KeyAccessToken, common.KeyRefreshToken, common.KeyUserInfo)

	return kv.DeleteKeys(ctx, s.repo, keys...)
}

// SweepExpired deletes the metadata of expired or unreadable tokens other
// than the ones in the stored pair. It returns the number of entries removed.
func (s *Store) SweepExpired(ctx context.Context) (int, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list storage: %w", err)
	}

	keep := map[string]struct{}{}
	for _, token := range []string{s.AccessToken(ctx), s.RefreshToken(ctx)} {
		if token != "" {
			keep[common.TokenMetaKey(token)] = struct{}{}
		}
	}

	now := s.now()
	removed := 0
	var errs []error

	for key, data := range all {
		if !strings.HasPrefix(key, common.TokenMetaKeyPrefix) {
			continue
		}
		if _, ok := keep[key]; ok {
			continue
		}

		var meta models.TokenMetadata
		if err := json.Unmarshal(data, &meta); err == nil && meta.ValidAt(now) {
			continue
		}

		if err := s.repo.Delete(ctx, key); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info(ctx, "swept expired token metadata", "removed", removed)
	}
	return removed, errors.Join(errs...)
}

func (s *Store) readString(ctx context.Context, key string) string {
	data, err := s.repo.Get(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "storage read failed", "key", key, "error", err)
		return ""
	}
	return string(data)
}
