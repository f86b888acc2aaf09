// Package client contains the concrete implementation of the strata.Client
// interface: per-resource clients layered on the shared HTTP transport.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/strata-io/strata-client/internal/auth"
	"github.com/strata-io/strata-client/internal/constants"
	"github.com/strata-io/strata-client/internal/http"
	"github.com/strata-io/strata-client/pkg/strata"
)

// Static errors for err113 compliance.
var (
	ErrAPIEndpointRequired      = errors.New("API endpoint is required")
	ErrNoTokenManagerConfigured = errors.New("no token manager configured")
	ErrStaticTokenCannotRefresh = errors.New("static token cannot be refreshed")
)

// Client implements the strata.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       strata.Logger

	// Resource clients
	clusters            strata.ClustersClient
	workflowTemplates   strata.WorkflowTemplatesClient
	jobs                strata.JobsClient
	operations          strata.OperationsClient
	autoscalingPolicies strata.AutoscalingPoliciesClient
}

// createTokenManager creates appropriate token manager based on config.
func createTokenManager(config *strata.Config) auth.TokenManager {
	if config.AccessToken != "" && config.Username != "" && config.Password != "" {
		return createFallbackTokenManager(config)
	}

	if config.AccessToken != "" {
		return &staticTokenManager{token: config.AccessToken}
	}

	if config.ClientID != "" && config.ClientSecret != "" {
		return createOAuth2TokenManager(config)
	}

	if config.Username != "" && config.Password != "" {
		return createPasswordTokenManager(config)
	}

	return nil // No authentication
}

// createFallbackTokenManager creates a fallback token manager that tries access token first.
func createFallbackTokenManager(config *strata.Config) auth.TokenManager {
	tokenURL := getTokenURL(config)

	oauthConfig := &auth.OAuth2Config{
		TokenURL:     tokenURL,
		ClientID:     "strata-cli", // Default CLI client ID
		ClientSecret: "",
		Username:     config.Username,
		Password:     config.Password,
	}

	oauthManager := auth.NewOAuth2TokenManager(oauthConfig)

	return &fallbackTokenManager{
		staticToken:  config.AccessToken,
		oauthManager: oauthManager,
	}
}

// createOAuth2TokenManager creates OAuth2 token manager with client credentials or password.
func createOAuth2TokenManager(config *strata.Config) auth.TokenManager {
	tokenURL := getTokenURL(config)

	oauthConfig := &auth.OAuth2Config{
		TokenURL:     tokenURL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Username:     config.Username,
		Password:     config.Password,
		RefreshToken: config.RefreshToken,
	}

	return auth.NewOAuth2TokenManager(oauthConfig)
}

// createPasswordTokenManager creates password grant token manager with default client.
func createPasswordTokenManager(config *strata.Config) auth.TokenManager {
	tokenURL := getTokenURL(config)

	oauthConfig := &auth.OAuth2Config{
		TokenURL:     tokenURL,
		ClientID:     "strata-cli", // Default CLI client ID
		ClientSecret: "",
		Username:     config.Username,
		Password:     config.Password,
	}

	return auth.NewOAuth2TokenManager(oauthConfig)
}

// getTokenURL returns token URL from config or fallback.
func getTokenURL(config *strata.Config) string {
	if config.TokenURL != "" {
		return config.TokenURL
	}

	return config.APIEndpoint + "/oauth/token" // Fallback, but should be discovered
}

// createHTTPClientOptions builds HTTP client options from config. Returns an
// error when the configured TLS material cannot be loaded.
func createHTTPClientOptions(config *strata.Config) ([]http.Option, error) {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := 1 * time.Second
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.ClientCertFile != "" || config.ClientKeyFile != "" || config.CACertFile != "" {
		tlsConfig, err := http.NewTLSConfig(config.ClientCertFile, config.ClientKeyFile, config.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("configuring TLS: %w", err)
		}

		httpOpts = append(httpOpts, http.WithTLSConfig(tlsConfig))
	}

	return httpOpts, nil
}

// New creates a new Strata API client.
func New(ctx context.Context, config *strata.Config) (*Client, error) {
	if config.APIEndpoint == "" {
		return nil, ErrAPIEndpointRequired
	}

	tokenManager := createTokenManager(config)

	httpOpts, err := createHTTPClientOptions(config)
	if err != nil {
		return nil, err
	}

	httpClient := http.NewClient(config.APIEndpoint, tokenManager, httpOpts...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      config.APIEndpoint,
		logger:       config.Logger,
	}

	client.initializeResourceClients()

	return client, nil
}

// NewWithTokenManager creates a new Strata API client with a custom token manager.
func NewWithTokenManager(config *strata.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config.APIEndpoint == "" {
		return nil, ErrAPIEndpointRequired
	}

	httpOpts, err := createHTTPClientOptions(config)
	if err != nil {
		return nil, err
	}

	httpClient := http.NewClient(config.APIEndpoint, tokenManager, httpOpts...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      config.APIEndpoint,
		logger:       config.Logger,
	}

	client.initializeResourceClients()

	return client, nil
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// GetInfo implements strata.Client.GetInfo.
func (c *Client) GetInfo(ctx context.Context) (*strata.Info, error) {
	resp, err := c.httpClient.Get(ctx, "/v1/info", nil)
	if err != nil {
		return nil, fmt.Errorf("getting info: %w", err)
	}

	var info strata.Info

	err = json.Unmarshal(resp.Body, &info)
	if err != nil {
		return nil, fmt.Errorf("parsing info response: %w", err)
	}

	return &info, nil
}

// GetRootInfo implements strata.Client.GetRootInfo.
func (c *Client) GetRootInfo(ctx context.Context) (*strata.RootInfo, error) {
	resp, err := c.httpClient.Get(ctx, "/", nil)
	if err != nil {
		return nil, fmt.Errorf("getting root info: %w", err)
	}

	var rootInfo strata.RootInfo

	err = json.Unmarshal(resp.Body, &rootInfo)
	if err != nil {
		return nil, fmt.Errorf("parsing root info response: %w", err)
	}

	return &rootInfo, nil
}

// Resource client accessors

// Clusters implements strata.Client.Clusters.
func (c *Client) Clusters() strata.ClustersClient {
	return c.clusters
}

// WorkflowTemplates implements strata.Client.WorkflowTemplates.
func (c *Client) WorkflowTemplates() strata.WorkflowTemplatesClient {
	return c.workflowTemplates
}

// Jobs implements strata.Client.Jobs.
func (c *Client) Jobs() strata.JobsClient {
	return c.jobs
}

// Operations implements strata.Client.Operations.
func (c *Client) Operations() strata.OperationsClient {
	return c.operations
}

// AutoscalingPolicies implements strata.Client.AutoscalingPolicies.
func (c *Client) AutoscalingPolicies() strata.AutoscalingPoliciesClient {
	return c.autoscalingPolicies
}

// GetToken returns the current access token from the token manager.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	if c.tokenManager == nil {
		return "", ErrNoTokenManagerConfigured
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	operations := NewOperationsClient(c.httpClient)
	c.operations = operations
	c.clusters = NewClustersClient(c.httpClient)
	c.workflowTemplates = NewWorkflowTemplatesClient(c.httpClient)
	c.jobs = NewJobsClient(c.httpClient)
	c.autoscalingPolicies = NewAutoscalingPoliciesClient(c.httpClient)
}

// staticTokenManager provides a static token.
type staticTokenManager struct {
	token string
}

func (m *staticTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token, nil
}

func (m *staticTokenManager) RefreshToken(ctx context.Context) error {
	return ErrStaticTokenCannotRefresh
}

func (m *staticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.token = token
}

// loggerAdapter adapts strata.Logger to the transport logger.
type loggerAdapter struct {
	logger strata.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}

// fallbackTokenManager tries static token first, then falls back to OAuth2.
type fallbackTokenManager struct {
	staticToken      string
	oauthManager     auth.TokenManager
	usingOAuth       bool
	staticTokenTried bool
}

func (m *fallbackTokenManager) GetToken(ctx context.Context) (string, error) {
	// If we're already using OAuth (static token failed), continue with OAuth
	if m.usingOAuth {
		token, err := m.oauthManager.GetToken(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to get OAuth token: %w", err)
		}

		return token, nil
	}

	// Try static token first, but only if we haven't tried it yet
	if m.staticToken != "" && !m.staticTokenTried {
		m.staticTokenTried = true

		return m.staticToken, nil
	}

	// Fall back to OAuth
	m.usingOAuth = true

	token, err := m.oauthManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get OAuth token: %w", err)
	}

	return token, nil
}

func (m *fallbackTokenManager) RefreshToken(ctx context.Context) error {
	// If static token needs refresh, switch to OAuth and get a fresh token
	if !m.usingOAuth {
		m.usingOAuth = true
		// Get a fresh token instead of trying to refresh the static one
		_, err := m.oauthManager.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to get OAuth token during refresh: %w", err)
		}

		return nil
	}

	err := m.oauthManager.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh OAuth token: %w", err)
	}

	return nil
}

func (m *fallbackTokenManager) SetToken(token string, expiresAt time.Time) {
	if m.usingOAuth {
		m.oauthManager.SetToken(token, expiresAt)
	} else {
		m.staticToken = token
	}
}
