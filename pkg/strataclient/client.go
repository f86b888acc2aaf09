// Package strataclient provides the main entry point for creating Strata API clients
package strataclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/strata-io/strata-client/internal/client"
	"github.com/strata-io/strata-client/internal/constants"
	"github.com/strata-io/strata-client/pkg/strata"
)

// New creates a new Strata API client with automatic token endpoint discovery.
func New(ctx context.Context, config *strata.Config) (strata.Client, error) {
	if config == nil {
		return nil, strata.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, strata.ErrAPIEndpointRequired
	}

	// Normalize API endpoint
	apiEndpoint := strings.TrimSuffix(config.APIEndpoint, "/")
	if !strings.HasPrefix(apiEndpoint, "http://") && !strings.HasPrefix(apiEndpoint, "https://") {
		apiEndpoint = "https://" + apiEndpoint
	}

	config.APIEndpoint = apiEndpoint

	// If we need authentication and don't have a token URL, discover it from
	// the API root
	if needsAuth(config) && config.TokenURL == "" {
		tokenURL, err := discoverTokenEndpoint(ctx, apiEndpoint, config.SkipTLSVerify)
		if err != nil {
			return nil, fmt.Errorf("discovering token endpoint: %w", err)
		}

		config.TokenURL = tokenURL
	}

	// Use the internal client implementation
	client, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// needsAuth checks if the config requires authentication.
func needsAuth(config *strata.Config) bool {
	return config.AccessToken == "" &&
		(config.Username != "" || config.ClientID != "" || config.RefreshToken != "")
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv("STRATA_DEV_MODE")

	return devMode == "true" || devMode == "1"
}

// createDiscoveryHTTPClient creates an HTTP client for token endpoint discovery.
func createDiscoveryHTTPClient(skipTLS bool) (*http.Client, error) {
	httpClient := &http.Client{
		Timeout: constants.ShortHTTPTimeout,
	}

	if skipTLS {
		// Only allow insecure TLS in explicit development environments
		if isDevelopmentEnvironment() {
			httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- Protected by development environment check above
			}
		} else {
			return nil, fmt.Errorf("%w (set STRATA_DEV_MODE=true)", strata.ErrSkipTLSOnlyInDev)
		}
	}

	return httpClient, nil
}

// fetchRootInfo fetches the API root and returns the advertised token URL.
func fetchRootInfo(ctx context.Context, httpClient *http.Client, apiEndpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiEndpoint+"/", nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("getting root info: %w", err)
	}

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			// Log error but don't return it to avoid masking original error
			fmt.Fprintf(os.Stderr, "Warning: failed to close response body: %v\n", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return "", fmt.Errorf("%w with status %d: %s", strata.ErrRootInfoRequestFailed, resp.StatusCode, string(body))
	}

	var rootInfo strata.RootInfo

	err = json.NewDecoder(resp.Body).Decode(&rootInfo)
	if err != nil {
		return "", fmt.Errorf("parsing root info: %w", err)
	}

	tokenURL := rootInfo.Auth.TokenURL
	if tokenURL == "" {
		return "", strata.ErrNoTokenURL
	}

	return tokenURL, nil
}

func discoverTokenEndpoint(ctx context.Context, apiEndpoint string, skipTLS bool) (string, error) {
	httpClient, err := createDiscoveryHTTPClient(skipTLS)
	if err != nil {
		return "", err
	}

	return fetchRootInfo(ctx, httpClient, apiEndpoint)
}

// NewWithEndpoint creates a new client with just an API endpoint (no auth).
func NewWithEndpoint(ctx context.Context, endpoint string) (strata.Client, error) {
	return New(ctx, &strata.Config{
		APIEndpoint: endpoint,
	})
}

// NewWithToken creates a new client with an API endpoint and access token.
func NewWithToken(ctx context.Context, endpoint, token string) (strata.Client, error) {
	return New(ctx, &strata.Config{
		APIEndpoint: endpoint,
		AccessToken: token,
	})
}

// NewWithClientCredentials creates a new client using OAuth2 client credentials.
func NewWithClientCredentials(ctx context.Context, endpoint, clientID, clientSecret string) (strata.Client, error) {
	return New(ctx, &strata.Config{
		APIEndpoint:  endpoint,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// NewWithPassword creates a new client using username/password authentication.
func NewWithPassword(ctx context.Context, endpoint, username, password string) (strata.Client, error) {
	return New(ctx, &strata.Config{
		APIEndpoint: endpoint,
		Username:    username,
		Password:    password,
	})
}
