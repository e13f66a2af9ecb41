// Package settings persists dashboard preferences. Settings live under their
// own key and survive sign-out.
package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/gophdash/internal/common"
	"github.com/dmitrijs2005/gophdash/internal/kv"
	"github.com/dmitrijs2005/gophdash/internal/logging"
	"github.com/dmitrijs2005/gophdash/internal/models"
)

func Defaults() models.AppSettings {
	return models.AppSettings{
		Theme:         "system",
		DefaultPeriod: "30d",
		Notifications: models.Notifications{Email: true, Push: false, Reports: true},
		Language:      "en",
	}
}

type Service struct {
	repo     kv.Repository
	validate *validator.Validate
	logger   logging.Logger
}

func NewService(repo kv.Repository, logger logging.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("module", "settings"),
	}
}

// Load returns the stored settings, or the defaults when nothing usable is
// stored.
func (s *Service) Load(ctx context.Context) models.AppSettings {
	data, err := s.repo.Get(ctx, common.KeyAppSettings)
	if err != nil {
		s.logger.Warn(ctx, "failed to read settings", "error", err)
		return Defaults()
	}
	if data == nil {
		return Defaults()
	}

	var out models.AppSettings
	if err := json.Unmarshal(data, &out); err != nil {
		s.logger.Warn(ctx, "stored settings are corrupt, using defaults", "error", err)
		return Defaults()
	}
	if err := s.validate.Struct(out); err != nil {
		s.logger.Warn(ctx, "stored settings are invalid, using defaults", "error", err)
		return Defaults()
	}
	return out
}

func (s *Service) Save(ctx context.Context, in models.AppSettings) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return s.repo.Set(ctx, common.KeyAppSettings, data)
}

// Reset removes stored settings so that Load returns the defaults again.
func (s *Service) Reset(ctx context.Context) error {
	return s.repo.Delete(ctx, common.KeyAppSettings)
}
