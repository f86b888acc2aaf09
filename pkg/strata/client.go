package strata

import (
	"context"
	"time"
)

// ClustersClient provides access to cluster operations. Mutating calls
// return an Operation that can be polled to completion.
type ClustersClient interface {
	Create(ctx context.Context, request *ClusterCreateRequest) (*Operation, error)
	Get(ctx context.Context, name string) (*Cluster, error)
	Update(ctx context.Context, name string, request *ClusterUpdateRequest) (*Operation, error)
	Delete(ctx context.Context, name string) (*Operation, error)
	List(ctx context.Context, params *QueryParams) (*ClustersList, error)
	ListAll(ctx context.Context, params *QueryParams) ([]Cluster, error)
	Pager(ctx context.Context, params *QueryParams) (*Pager[Cluster], error)
	Diagnose(ctx context.Context, name string) (*Operation, error)
}

// WorkflowTemplatesClient provides access to workflow template operations.
type WorkflowTemplatesClient interface {
	Create(ctx context.Context, request *WorkflowTemplateCreateRequest) (*WorkflowTemplate, error)
	Get(ctx context.Context, id string) (*WorkflowTemplate, error)
	Update(ctx context.Context, id string, request *WorkflowTemplateUpdateRequest) (*WorkflowTemplate, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params *QueryParams) (*WorkflowTemplatesList, error)
	ListAll(ctx context.Context, params *QueryParams) ([]WorkflowTemplate, error)
	Pager(ctx context.Context, params *QueryParams) (*Pager[WorkflowTemplate], error)
	Instantiate(ctx context.Context, id string, request *InstantiateRequest) (*Operation, error)
	InstantiateInline(ctx context.Context, request *InstantiateInlineRequest) (*Operation, error)
}

// JobsClient provides access to job operations.
type JobsClient interface {
	Submit(ctx context.Context, request *JobSubmitRequest) (*Job, error)
	Get(ctx context.Context, jobID string) (*Job, error)
	Update(ctx context.Context, jobID string, request *JobUpdateRequest) (*Job, error)
	Cancel(ctx context.Context, jobID string) (*Job, error)
	Delete(ctx context.Context, jobID string) error
	List(ctx context.Context, params *QueryParams) (*JobsList, error)
	ListAll(ctx context.Context, params *QueryParams) ([]Job, error)
	Pager(ctx context.Context, params *QueryParams) (*Pager[Job], error)
	PollUntilComplete(ctx context.Context, jobID string) (*Job, error)
}

// OperationsClient provides access to long-running operation tracking.
type OperationsClient interface {
	Get(ctx context.Context, name string) (*Operation, error)
	Cancel(ctx context.Context, name string) (*Operation, error)
	List(ctx context.Context, params *QueryParams) (*OperationsList, error)
	ListAll(ctx context.Context, params *QueryParams) ([]Operation, error)
	Pager(ctx context.Context, params *QueryParams) (*Pager[Operation], error)
	PollUntilDone(ctx context.Context, name string) (*Operation, error)
}

// AutoscalingPoliciesClient provides access to autoscaling policy operations.
type AutoscalingPoliciesClient interface {
	Create(ctx context.Context, request *AutoscalingPolicyCreateRequest) (*AutoscalingPolicy, error)
	Get(ctx context.Context, id string) (*AutoscalingPolicy, error)
	Update(ctx context.Context, id string, request *AutoscalingPolicyUpdateRequest) (*AutoscalingPolicy, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params *QueryParams) (*AutoscalingPoliciesList, error)
	ListAll(ctx context.Context, params *QueryParams) ([]AutoscalingPolicy, error)
	Pager(ctx context.Context, params *QueryParams) (*Pager[AutoscalingPolicy], error)
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Clusters() ClustersClient
	WorkflowTemplates() WorkflowTemplatesClient
	Jobs() JobsClient
	Operations() OperationsClient
	AutoscalingPolicies() AutoscalingPoliciesClient
}

// InfoClient provides access to API information endpoints.
type InfoClient interface {
	GetInfo(ctx context.Context) (*Info, error)
	GetRootInfo(ctx context.Context) (*RootInfo, error)
}

type Client interface {
	ResourceClients
	InfoClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a strata.Client.
//
// # Authentication precedence
//
// The following precedence is applied by the concrete client implementation
// (see pkg/strataclient and internal/client):
//  1. AccessToken: if set, it is used directly as a static Bearer token.
//  2. AccessToken + Username/Password: token is tried first; if it expires or
//     fails with 401, the client falls back to obtaining a fresh token using
//     the password grant.
//  3. ClientID/ClientSecret: uses the OAuth2 client_credentials grant. If a
//     RefreshToken, Username, or Password is also provided, the OAuth2 manager
//     can refresh or use an alternate grant as appropriate.
//  4. Username/Password: uses the OAuth2 password grant with the default
//     client ID ("strata-cli").
//  5. No credentials: requests are sent without authentication.
//
// # Token URL discovery
//
// If authentication is required and TokenURL is not provided, strataclient.New
// will discover the token endpoint from the API root ("/" → auth.token_url)
// and use it automatically.
//
// # Timeouts, retries, and TLS
//
// Per-request timeouts should generally be controlled via context passed to
// client methods. Retry behavior can be tuned via RetryMax/RetryWaitMin/
// RetryWaitMax. SkipTLSVerify is only honored during token endpoint discovery
// and only when the environment variable STRATA_DEV_MODE is set to "true" or
// "1"; do not use it in production. Deployments requiring mutual TLS set
// ClientCertFile/ClientKeyFile, and CACertFile for a private CA.
type Config struct {
	// APIEndpoint: base URL for the Strata API (e.g., "https://api.example.com").
	// strataclient.New normalizes this value by trimming a trailing slash and
	// adding "https://" if no scheme is present.
	APIEndpoint string

	// Authentication options (provide one)
	// ClientID: OAuth2 client ID for the client_credentials (or other) grant.
	ClientID string
	// ClientSecret: OAuth2 client secret used with ClientID.
	ClientSecret string
	// Username: account username for the OAuth2 password grant.
	Username string
	// Password: account password for the OAuth2 password grant.
	Password string
	// RefreshToken: optional refresh token used by the OAuth2 manager to renew access tokens.
	RefreshToken string
	// AccessToken: if set, used directly as a Bearer token. When combined with
	// Username/Password, the token is tried first, then the client can fall
	// back to the password grant if a 401 is encountered.
	AccessToken string
	// TokenURL: full OAuth2 token endpoint. If empty and authentication is
	// required, strataclient.New discovers it from the API root (preferred).
	TokenURL string

	// Optional configurations
	// HTTPTimeout: optional default HTTP timeout where supported.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries for transient failures (>=500, 429,
	// and connection errors). If 0, a sensible default is used by the client.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries. Applied when RetryMax > 0.
	RetryWaitMax time.Duration
	// Debug: enables verbose HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer and helpers.
	Logger Logger
	// SkipTLSVerify: if true, TLS verification is skipped during token endpoint
	// discovery only, and only when STRATA_DEV_MODE is set.
	SkipTLSVerify bool
	// ClientCertFile and ClientKeyFile: paths to a PEM client certificate and
	// key presented for mutual TLS. Both must be set together; the client
	// constructor fails if either file cannot be loaded.
	ClientCertFile string
	ClientKeyFile  string
	// CACertFile: path to a PEM bundle of CA certificates trusted when
	// verifying the API server, replacing the system pool.
	CACertFile string
	// UserAgent: overrides the default User-Agent header sent by the client.
	UserAgent string
}

// Info represents the /v1/info response.
type Info struct {
	Name        string                 `json:"name"        yaml:"name"`
	Description string                 `json:"description" yaml:"description"`
	Build       string                 `json:"build"       yaml:"build"`
	Version     int                    `json:"version"     yaml:"version"`
	Custom      map[string]interface{} `json:"custom"      yaml:"custom"`
}

// RootInfo represents the root / response.
type RootInfo struct {
	Auth RootAuthInfo `json:"auth" yaml:"auth"`
}

// RootAuthInfo carries the auth endpoints advertised by the API root.
type RootAuthInfo struct {
	TokenURL string `json:"token_url" yaml:"token_url"`
	Issuer   string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
}
