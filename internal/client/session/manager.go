// Package session issues, restores, renews and tears down dashboard
// sessions on top of the token store and the credential directory.
//
// Every failure leaving this package is an *AuthError. Infrastructure faults
// are logged with their cause and reported as TOKEN_INVALID (or
// UPDATE_FAILED for profile edits).
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdash/internal/client/directory"
	"github.com/dmitrijs2005/gophdash/internal/common"
	"github.com/dmitrijs2005/gophdash/internal/logging"
	"github.com/dmitrijs2005/gophdash/internal/models"
	"github.com/dmitrijs2005/gophdash/internal/tokenstore"
)

// Directory is the credential source consulted by the manager.
type Directory interface {
	FindByCredentials(ctx context.Context, email, password string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

type LoginResult struct {
	User   models.User
	Tokens models.TokenPair
}

type RestoreResult struct {
	User        models.User
	AccessToken string
	Renewed     bool
}

type Manager struct {
	tokens          *tokenstore.Store
	dir             Directory
	logger          logging.Logger
	accessLifetime  time.Duration
	refreshLifetime time.Duration

	mu    sync.Mutex
	state State
}

type Option func(*Manager)

// WithLifetimes overrides the access and refresh token lifetimes.
func WithLifetimes(access, refresh time.Duration) Option {
	return func(m *Manager) {
		m.accessLifetime = access
		m.refreshLifetime = refresh
	}
}

func NewManager(tokens *tokenstore.Store, dir Directory, logger logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		tokens:          tokens,
		dir:             dir,
		logger:          logger.With("module", "session"),
		accessLifetime:  common.AccessTokenLifetime,
		refreshLifetime: common.RefreshTokenLifetime,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// Login verifies the credentials and starts a new session.
func (m *Manager) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	m.setState(Authenticating)

	user, err := m.dir.FindByCredentials(ctx, email, password)
	if err != nil {
		m.setState(NoSession)
		if errors.Is(err, directory.ErrInvalidCredentials) {
			m.logger.Info(ctx, "login rejected", "email", email)
			return nil, newError(CodeInvalidCredentials, err)
		}
		return nil, m.fault(ctx, "directory lookup failed", err)
	}

	pair, err := m.issuePair(ctx, *user)
	if err != nil {
		m.setState(NoSession)
		return nil, m.fault(ctx, "token issuance failed", err)
	}

	if err := m.tokens.PersistPair(ctx, *pair); err != nil {
		m.setState(NoSession)
		return nil, m.fault(ctx, "persisting token pair failed", err)
	}
	if err := m.tokens.SaveUser(ctx, *user); err != nil {
		m.setState(NoSession)
		return nil, m.fault(ctx, "caching user failed", err)
	}

	m.setState(Authenticated)
	m.logger.Info(ctx, "login succeeded", "user_id", user.ID, "role", user.Role)

	return &LoginResult{User: *user, Tokens: *pair}, nil
}

func (m *Manager) issuePair(ctx context.Context, user models.User) (*models.TokenPair, error) {
	access, err := m.tokens.Issue(ctx, user, m.accessLifetime)
	if err != nil {
		return nil, err
	}
	refresh, err := m.tokens.Issue(ctx, user, m.refreshLifetime)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RestoreSession resumes the stored session, renewing the access token when
// it has expired but the refresh token is still valid.
func (m *Manager) RestoreSession(ctx context.Context) (*RestoreResult, error) {
	pair, ok := m.tokens.LoadPair(ctx)
	if !ok {
		m.setState(NoSession)
		return nil, ErrSessionNotFound
	}

	user, ok := m.tokens.LoadUser(ctx)
	if !ok {
		m.logger.Warn(ctx, "stored session has no cached user, discarding it")
		m.clear(ctx)
		m.setState(NoSession)
		return nil, ErrSessionNotFound
	}

	if m.tokens.IsValid(ctx, pair.AccessToken) {
		m.setState(Authenticated)
		return &RestoreResult{User: *user, AccessToken: pair.AccessToken}, nil
	}

	access, ok := m.Renew(ctx, pair.RefreshToken)
	if !ok {
		m.logger.Info(ctx, "session expired", "user_id", user.ID)
		m.clear(ctx)
		m.setState(Expired)
		return nil, ErrTokenExpired
	}

	if err := m.tokens.PersistAccessToken(ctx, access); err != nil {
		return nil, m.fault(ctx, "persisting renewed access token failed", err)
	}

	m.setState(Authenticated)
	m.logger.Debug(ctx, "session restored with renewed access token", "user_id", user.ID)

	return &RestoreResult{User: *user, AccessToken: access, Renewed: true}, nil
}

// Renew issues a new access token from a valid refresh token. The new token
// carries the identity and role recorded in the refresh token's metadata,
// so a role change only takes effect on the next Login.
func (m *Manager) Renew(ctx context.Context, refreshToken string) (string, bool) {
	meta, ok := m.tokens.Metadata(ctx, refreshToken)
	if !ok || !meta.ValidAt(m.tokens.Now()) {
		return "", false
	}

	token, err := m.tokens.Issue(ctx, models.User{ID: meta.UserID, Email: meta.Email, Role: meta.Role}, m.accessLifetime)
	if err != nil {
		m.logger.Error(ctx, "renewal failed", "error", err)
		return "", false
	}
	return token, true
}

// Logout removes all stored session data. Removal is attempted in full even
// when part of it fails.
func (m *Manager) Logout(ctx context.Context) error {
	defer m.setState(LoggedOut)

	if err := m.tokens.ClearAll(ctx); err != nil {
		return m.fault(ctx, "clearing session failed", err)
	}
	return nil
}

// IsAuthenticated is true while either stored token is valid, including when
// only the refresh token is.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	return m.tokens.IsValid(ctx, m.tokens.AccessToken(ctx)) ||
		m.tokens.IsValid(ctx, m.tokens.RefreshToken(ctx))
}

// CurrentUser returns the cached user of the stored session.
func (m *Manager) CurrentUser(ctx context.Context) (*models.User, bool) {
	return m.tokens.LoadUser(ctx)
}

// UpdateProfile edits a directory entry. When it belongs to the signed-in
// user the cached user is refreshed too; token metadata is not rewritten.
func (m *Manager) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error) {
	user, err := m.dir.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, directory.ErrUserNotFound) {
			return nil, newError(CodeUserNotFound, err)
		}
		m.logger.Warn(ctx, "profile update failed", "user_id", userID, "error", err)
		return nil, newError(CodeUpdateFailed, err)
	}

	if cached, ok := m.tokens.LoadUser(ctx); ok && cached.ID == userID {
		if err := m.tokens.SaveUser(ctx, *user); err != nil {
			m.logger.Error(ctx, "refreshing cached user failed", "error", err)
			return nil, newError(CodeUpdateFailed, err)
		}
	}
	return user, nil
}

func (m *Manager) ChangePassword(ctx context.Context, userID, current, next string) error {
	err := m.dir.ChangePassword(ctx, userID, current, next)
	switch {
	case err == nil:
		m.logger.Info(ctx, "password changed", "user_id", userID)
		return nil
	case errors.Is(err, directory.ErrUserNotFound):
		return newError(CodeUserNotFound, err)
	case errors.Is(err, directory.ErrInvalidPassword):
		return newError(CodeInvalidPassword, err)
	case errors.Is(err, directory.ErrWeakPassword):
		return newError(CodeWeakPassword, err)
	case errors.Is(err, directory.ErrSamePassword):
		return newError(CodeSamePassword, err)
	}
	m.logger.Error(ctx, "password change failed", "user_id", userID, "error", err)
	return newError(CodeUpdateFailed, err)
}

// SweepExpired reclaims metadata of expired tokens outside the current
// session.
func (m *Manager) SweepExpired(ctx context.Context) (int, error) {
	return m.tokens.SweepExpired(ctx)
}

func (m *Manager) clear(ctx context.Context) {
	if err := m.tokens.ClearAll(ctx); err != nil {
		m.logger.Error(ctx, "clearing session failed", "error", err)
	}
}

func (m *Manager) fault(ctx context.Context, msg string, err error) *AuthError {
	m.logger.Error(ctx, msg, "error", err)
	return newError(CodeTokenInvalid, err)
}
