// Package directory is the credential directory consulted at login: a
// read-only fixture of users merged with locally persisted edits.
package directory

import (
	"context"
	"crypto/subtle"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/gophdash/internal/common"
	"github.com/dmitrijs2005/gophdash/internal/cryptox"
	"github.com/dmitrijs2005/gophdash/internal/kv"
	"github.com/dmitrijs2005/gophdash/internal/logging"
	"github.com/dmitrijs2005/gophdash/internal/models"
)

//go:embed users.json
var defaultFixture []byte

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPassword    = errors.New("current password is incorrect")
	ErrWeakPassword       = errors.New("password too short")
	ErrSamePassword       = errors.New("new password equals the current one")
	ErrEmailTaken         = errors.New("email already in use")
)

// LoadFixture reads directory entries from path, or the built-in fixture
// when path is empty.
func LoadFixture(path string) ([]models.UserCredential, error) {
	data := defaultFixture
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read user fixture: %w", err)
		}
	}

	var users []models.UserCredential
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse user fixture: %w", err)
	}
	return users, nil
}

type Directory struct {
	repo     kv.Repository
	fixture  []models.UserCredential
	validate *validator.Validate
	logger   logging.Logger
}

func New(repo kv.Repository, fixture []models.UserCredential, logger logging.Logger) *Directory {
	return &Directory{
		repo:     repo,
		fixture:  fixture,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("module", "directory"),
	}
}

// List returns every user with local edits applied. An edit replaces the
// fixture entry with the same id.
func (d *Directory) List(ctx context.Context) ([]models.UserCredential, error) {
	overlays, err := d.overlays(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.UserCredential, len(overlays))
	for _, o := range overlays {
		byID[o.ID] = o
	}

	merged := make([]models.UserCredential, 0, len(d.fixture)+len(overlays))
	for _, u := range d.fixture {
		if o, ok := byID[u.ID]; ok {
			merged = append(merged, o)
			delete(byID, u.ID)
			continue
		}
		merged = append(merged, u)
	}
	for _, o := range overlays {
		if _, ok := byID[o.ID]; ok {
			merged = append(merged, o)
		}
	}
	return merged, nil
}

// FindByCredentials matches email and password exactly.
func (d *Directory) FindByCredentials(ctx context.Context, email, password string) (*models.User, error) {
	users, err := d.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if u.Email == email && passwordMatches(u, password) {
			user := u.User
			return &user, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (d *Directory) FindByID(ctx context.Context, id string) (*models.UserCredential, error) {
	users, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

// UpdateProfile applies the non-nil fields of update to the user and stores
// the result as an overlay.
func (d *Directory) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error) {
	if err := d.validate.Struct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	users, err := d.List(ctx)
	if err != nil {
		return nil, err
	}

	var target *models.UserCredential
	for i := range users {
		if users[i].ID == userID {
			target = &users[i]
			continue
		}
		if update.Email != nil && users[i].Email == *update.Email {
			return nil, ErrEmailTaken
		}
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	if update.Name != nil {
		target.Name = *update.Name
	}
	if update.Email != nil {
		target.Email = *update.Email
	}
	if update.Role != nil {
		target.Role = *update.Role
	}
	if update.Avatar != nil {
		target.Avatar = *update.Avatar
	}

	if err := d.saveOverlay(ctx, *target); err != nil {
		return nil, err
	}

	user := target.User
	return &user, nil
}

// ChangePassword replaces the password of userID. Checks run in a fixed
// order: user exists, current password matches, new password is long
// enough, new password differs.
func (d *Directory) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := d.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !passwordMatches(*u, current) {
		return ErrInvalidPassword
	}
	if len(next) < common.MinPasswordLength {
		return ErrWeakPassword
	}
	if next == current {
		return ErrSamePassword
	}

	salt := cryptox.NewSalt()
	u.Password = ""
	u.Salt = salt
	u.PasswordHash = cryptox.HashPassword(next, salt)

	return d.saveOverlay(ctx, *u)
}

func (d *Directory) overlays(ctx context.Context) ([]models.UserCredential, error) {
	data, err := d.repo.Get(ctx, common.KeyCustomUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to read user overlays: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var overlays []models.UserCredential
	if err := json.Unmarshal(data, &overlays); err != nil {
		d.logger.Warn(ctx, "ignoring corrupt user overlays", "error", err)
		return nil, nil
	}
	return overlays, nil
}

func (d *Directory) saveOverlay(ctx context.Context, u models.UserCredential) error {
	overlays, err := d.overlays(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range overlays {
		if overlays[i].ID == u.ID {
			overlays[i] = u
			replaced = true
		}
	}
	if !replaced {
		overlays = append(overlays, u)
	}

	data, err := json.Marshal(overlays)
	if err != nil {
		return fmt.Errorf("failed to encode user overlays: %w", err)
	}
	if err := d.repo.Set(ctx, common.KeyCustomUsers, data); err != nil {
		return fmt.Errorf("failed to store user overlays: %w", err)
	}
	return nil
}

func passwordMatches(u models.UserCredential, password string) bool {
	if len(u.PasswordHash) > 0 {
		return cryptox.VerifyPassword(password, u.Salt, u.PasswordHash)
	}
	if u.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) == 1
}
