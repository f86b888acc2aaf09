package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/strata-io/strata-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrNoValidCredentials = errors.New("no valid credentials available")
)

// OAuth2Config holds the credentials and endpoint for token acquisition.
type OAuth2Config struct {
	// TokenURL is the full OAuth2 token endpoint.
	TokenURL string
	// ClientID and ClientSecret are used for the client_credentials grant and
	// as client authentication for other grants.
	ClientID     string
	ClientSecret string
	// Username and Password enable the password grant.
	Username string
	Password string
	// RefreshToken enables the refresh_token grant.
	RefreshToken string
	// AccessToken seeds the store with an existing token.
	AccessToken string
	// Scopes requested during token acquisition.
	Scopes []string
	// HTTPClient overrides the client used for token requests.
	HTTPClient *http.Client
}

// OAuth2TokenManager obtains and refreshes tokens using OAuth2 grants.
//
// Grant selection, in order: refresh_token when one is held, then
// client_credentials, then password. Token requests authenticate with HTTP
// basic auth when a client secret is configured.
type OAuth2TokenManager struct {
	config *OAuth2Config
	store  *TokenStore
	client *http.Client

	mu sync.Mutex
}

// NewOAuth2TokenManager creates a token manager from config.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: constants.ShortHTTPTimeout}
	}

	manager := &OAuth2TokenManager{
		config: config,
		store:  NewTokenStore(),
		client: client,
	}

	if config.AccessToken != "" {
		manager.store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "bearer",
		})
	} else if config.RefreshToken != "" {
		// An expired placeholder forces a refresh on first use.
		manager.store.Set(&Token{
			AccessToken:  "pending",
			RefreshToken: config.RefreshToken,
			TokenType:    "bearer",
			ExpiresAt:    time.Now().Add(-time.Minute),
		})
	}

	return manager
}

// GetToken returns a valid access token, acquiring or refreshing one if
// necessary.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have refreshed while we waited on the lock.
	token = m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	newToken, err := m.acquireToken(ctx, token)
	if err != nil {
		return "", err
	}

	m.store.Set(newToken)

	return newToken.AccessToken, nil
}

// RefreshToken forces acquisition of a fresh token.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	newToken, err := m.acquireToken(ctx, m.store.Get())
	if err != nil {
		return err
	}

	m.store.Set(newToken)

	return nil
}

// SetToken manually sets the access token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	})
}

// acquireToken picks a grant based on the available credentials.
func (m *OAuth2TokenManager) acquireToken(ctx context.Context, current *Token) (*Token, error) {
	refreshToken := m.config.RefreshToken
	if current != nil && current.RefreshToken != "" {
		refreshToken = current.RefreshToken
	}

	switch {
	case refreshToken != "":
		return m.requestToken(ctx, url.Values{
			"grant_type":    []string{"refresh_token"},
			"refresh_token": []string{refreshToken},
		})

	case m.config.ClientID != "" && m.config.ClientSecret != "":
		return m.requestToken(ctx, url.Values{
			"grant_type": []string{"client_credentials"},
		})

	case m.config.Username != "" && m.config.Password != "":
		return m.requestToken(ctx, url.Values{
			"grant_type": []string{"password"},
			"username":   []string{m.config.Username},
			"password":   []string{m.config.Password},
		})

	default:
		return nil, ErrNoValidCredentials
	}
}

// tokenError is the standard OAuth2 error response body.
type tokenError struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// requestToken executes a token request against the configured endpoint.
func (m *OAuth2TokenManager) requestToken(ctx context.Context, form url.Values) (*Token, error) {
	if len(m.config.Scopes) > 0 {
		form.Set("scope", strings.Join(m.config.Scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	if m.config.ClientID != "" {
		req.SetBasicAuth(m.config.ClientID, m.config.ClientSecret)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var tokenErr tokenError
		if json.Unmarshal(body, &tokenErr) == nil && tokenErr.Error != "" {
			return nil, fmt.Errorf("token request failed: %s: %s", tokenErr.Error, tokenErr.Description) //nolint:err113
		}

		return nil, fmt.Errorf("token request failed with status %d", resp.StatusCode) //nolint:err113
	}

	var token Token

	err = json.Unmarshal(body, &token)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling token response: %w", err)
	}

	if token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	return &token, nil
}

// NewStrataTokenManager creates a manager for the client_credentials grant
// against a Strata auth endpoint, requesting the standard API scopes.
func NewStrataTokenManager(authURL, clientID, clientSecret string) *OAuth2TokenManager {
	return NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     strings.TrimSuffix(authURL, "/") + "/oauth/token",
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{"strata.read", "strata.write"},
	})
}

// NewStrataTokenManagerWithPassword creates a manager for the password grant
// against a Strata auth endpoint.
func NewStrataTokenManagerWithPassword(authURL, clientID, clientSecret, username, password string) *OAuth2TokenManager {
	return NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     strings.TrimSuffix(authURL, "/") + "/oauth/token",
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Username:     username,
		Password:     password,
		Scopes:       []string{"strata.read", "strata.write"},
	})
}
