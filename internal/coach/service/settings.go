package service

import (
	"context"
	"errors"

	"github.com/quierolab/quiero/internal/coach/domain"
	"github.com/quierolab/quiero/internal/coach/store"
)

var (
	ErrSettingNotFound = errors.New("setting not found")
	ErrEmptySettingKey = errors.New("setting key must not be empty")
)

// SettingsService exposes admin-managed application key/value settings.
type SettingsService struct {
	Store store.Store
}

func (s *SettingsService) Get(ctx context.Context, key string) (domain.Setting, error) {
	setting, err := s.Store.Settings().GetSetting(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Setting{}, ErrSettingNotFound
		}
		return domain.Setting{}, err
	}
	return setting, nil
}

func (s *SettingsService) List(ctx context.Context) ([]domain.Setting, error) {
	return s.Store.Settings().ListSettings(ctx)
}

// Put creates or overwrites a setting.
func (s *SettingsService) Put(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptySettingKey
	}
	return s.Store.Settings().PutSetting(ctx, key, value)
}
