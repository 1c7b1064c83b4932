package service

import (
	"context"

	"github.com/storefront/storefront/internal/logger"
	"github.com/storefront/storefront/internal/model"
	"github.com/storefront/storefront/internal/store"
)

// SettingsService stores per-user preferences under userSettings_<userId>
type SettingsService struct {
	s   *session
	log *logger.Logger
}

// Get returns the stored settings, or the defaults when none were saved
func (ss *SettingsService) Get(ctx context.Context, userID string) (model.UserSettings, error) {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	var settings model.UserSettings
	found, err := ss.s.kv.Get(ctx, store.UserSettingsKey(userID), &settings)
	if err != nil {
		return model.UserSettings{}, failed("load settings", err)
	}
	if !found {
		return model.DefaultUserSettings(), nil
	}
	return settings, nil
}

// Update replaces the settings of userID
func (ss *SettingsService) Update(ctx context.Context, userID string, settings model.UserSettings) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	if userID == "" {
		return ErrNotLoggedIn
	}
	if err := ss.s.kv.Put(ctx, store.UserSettingsKey(userID), settings); err != nil {
		return failed("save settings", err)
	}

	ss.log.AuditLog(userID, model.AuditActionSettingsUpdate, model.ResourceUser, userID, map[string]interface{}{
		"two_factor_auth": settings.TwoFactorAuth,
	})
	return nil
}

// Reset drops the stored settings so the defaults apply again
func (ss *SettingsService) Reset(ctx context.Context, userID string) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	if err := ss.s.kv.Remove(ctx, store.UserSettingsKey(userID)); err != nil {
		return failed("reset settings", err)
	}
	return nil
}
