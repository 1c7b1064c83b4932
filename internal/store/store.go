// Package store implements the session-scoped key/value namespace the shop keeps its state in.
// Values are JSON encoded. Corrupt values never cross this boundary: they read as absent.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/storefront/storefront/internal/logger"
	"github.com/storefront/storefront/internal/repository"
)

// Storage keys
const (
	KeyCurrentUser     = "currentUser"
	KeyUsers           = "users"
	KeyCart            = "cart"
	KeyOrders          = "orders"
	KeyAppliedDiscount = "appliedDiscount"
	KeyContactMessages = "contactMessages"

	probeKey = "__test__"
)

// ErrUnavailable reports that the underlying storage cannot be used
var ErrUnavailable = repository.ErrUnavailable

// UserSettingsKey returns the key holding the settings of userID
func UserSettingsKey(userID string) string {
	return "userSettings_" + userID
}

// KeyedStore is a JSON view over one session of an EntryRepository
type KeyedStore struct {
	repo      repository.EntryRepository
	sessionID string
	log       *logger.Logger
}

// New binds repo to sessionID
func New(repo repository.EntryRepository, sessionID string, log *logger.Logger) *KeyedStore {
	return &KeyedStore{
		repo:      repo,
		sessionID: sessionID,
		log:       log.WithComponent("keyed_store").WithSessionID(sessionID),
	}
}

// SessionID returns the session this store is bound to
func (s *KeyedStore) SessionID() string {
	return s.sessionID
}

// Put serializes value and stores it under key
func (s *KeyedStore) Put(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	if err := s.repo.Set(ctx, s.sessionID, key, data); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("storage write failed")
		return unavailable(err)
	}
	return nil
}

// Get decodes the value stored under key into dst.
// It reports false when the key is missing or its content cannot be decoded.
func (s *KeyedStore) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := s.repo.Get(ctx, s.sessionID, key)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("storage read failed")
		return false, unavailable(err)
	}

	if len(data) == 0 || string(data) == "null" {
		return false, nil
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("discarding corrupt entry")
		reset(dst)
		return false, nil
	}
	return true, nil
}

// Remove deletes key; missing keys are ignored
func (s *KeyedStore) Remove(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, s.sessionID, key); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("storage delete failed")
		return unavailable(err)
	}
	return nil
}

// Clear drops every key of the session
func (s *KeyedStore) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx, s.sessionID); err != nil {
		s.log.Error().Err(err).Msg("storage clear failed")
		return unavailable(err)
	}
	return nil
}

// Available writes and removes a probe key
func (s *KeyedStore) Available(ctx context.Context) error {
	if err := s.repo.Set(ctx, s.sessionID, probeKey, []byte(`"`+probeKey+`"`)); err != nil {
		return unavailable(err)
	}
	if err := s.repo.Delete(ctx, s.sessionID, probeKey); err != nil {
		return unavailable(err)
	}
	return nil
}

func unavailable(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// reset zeroes what a failed decode may have partially filled
func reset(dst interface{}) {
	v := reflect.ValueOf(dst)
	if v.Kind() == reflect.Ptr && !v.IsNil() {
		v.Elem().Set(reflect.Zero(v.Elem().Type()))
	}
}
