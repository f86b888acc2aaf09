package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister defines the interface for persisting refreshed tokens back
// to the CLI configuration file.
type ConfigPersister interface {
	UpdateToken(endpoint, token string, expiresAt time.Time, refreshToken string) error
}

// ConfigTokenManager wraps an OAuth2TokenManager and writes every refreshed
// token back through a ConfigPersister, so subsequent CLI invocations reuse
// the token instead of re-authenticating.
type ConfigTokenManager struct {
	manager   *OAuth2TokenManager
	persister ConfigPersister
	endpoint  string

	mu    sync.Mutex
	saved tokenSnapshot
}

// tokenSnapshot records the last token written to the config, so an unchanged
// token is not persisted again.
type tokenSnapshot struct {
	accessToken string
	expiresAt   time.Time
}

// NewConfigTokenManager creates a config-persisting token manager, seeded
// with the token currently stored in the config when one exists.
func NewConfigTokenManager(config *OAuth2Config, configPersister ConfigPersister, endpoint string, initialToken string, initialExpiry time.Time) *ConfigTokenManager {
	manager := NewOAuth2TokenManager(config)
	if initialToken != "" {
		manager.SetToken(initialToken, initialExpiry)
	}

	return &ConfigTokenManager{
		manager:   manager,
		persister: configPersister,
		endpoint:  endpoint,
		saved:     tokenSnapshot{accessToken: initialToken, expiresAt: initialExpiry},
	}
}

// GetToken returns a valid access token, refreshing and persisting it when
// the stored one has expired.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, err := m.manager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.persistIfChanged()

	return token, nil
}

// RefreshToken forces a token refresh and persists the result.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.manager.RefreshToken(ctx)
	if err != nil {
		return err
	}

	m.persistIfChanged()

	return nil
}

// SetToken manually sets the access token. The token is treated as already
// persisted.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.manager.SetToken(token, expiresAt)
	m.saved = tokenSnapshot{accessToken: token, expiresAt: expiresAt}
}

// persistIfChanged writes the held token through the persister when it
// differs from the last saved one. A persistence failure does not fail the
// request; the token still serves this process. Caller holds the lock.
func (m *ConfigTokenManager) persistIfChanged() {
	current := m.manager.store.Get()
	if current == nil {
		return
	}

	if current.AccessToken == m.saved.accessToken && current.ExpiresAt.Equal(m.saved.expiresAt) {
		return
	}

	err := m.persist(current)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to persist refreshed token: %v\n", err)
	}

	m.saved = tokenSnapshot{accessToken: current.AccessToken, expiresAt: current.ExpiresAt}
}

// persist saves the token to the config file.
func (m *ConfigTokenManager) persist(token *Token) error {
	if m.persister == nil {
		return ErrNoConfigPersister
	}

	err := m.persister.UpdateToken(m.endpoint, token.AccessToken, token.ExpiresAt, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}

	return nil
}
