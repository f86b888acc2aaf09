package constants

import "errors"

// Configuration errors.
var (
	ErrNoEndpointConfigured = errors.New("no API endpoint configured, use 'strata config set api <url>' or 'strata login'")
	ErrNoRefreshToken       = errors.New("no refresh token available, please run 'strata login' again")
	ErrFailedRetrieveToken  = errors.New("failed to retrieve refreshed token")
	ErrNotAuthenticated     = errors.New("not authenticated, run 'strata login' first")
)

// Auth errors.
var (
	ErrNoTokenEndpoint   = errors.New("no token endpoint configured and unable to discover from API endpoint")
	ErrNoAPIEndpoint     = errors.New("no API endpoint provided")
	ErrSSLOnlyInDev      = errors.New("skipSSL is only allowed in development environments (set STRATA_DEV_MODE=true)")
	ErrRootRequestFailed = errors.New("API root info request failed")
	ErrNoTokenURLInRoot  = errors.New("no token endpoint found in API root response")
)

// Validation errors.
var (
	ErrInvalidOutputFormat = errors.New("invalid output format, expected table, json, or yaml")
	ErrInvalidWorkerCount  = errors.New("worker count must be a positive integer")
	ErrInvalidCacheBackend = errors.New("invalid cache backend, expected memory or nats")
)

// Required field errors.
var (
	ErrClusterNameRequired  = errors.New("cluster name is required")
	ErrTemplateIDRequired   = errors.New("template ID is required")
	ErrJobIDRequired        = errors.New("job ID is required")
	ErrOperationIDRequired  = errors.New("operation ID is required")
	ErrPolicyIDRequired     = errors.New("policy ID is required")
	ErrRegionRequired       = errors.New("--region flag is required")
	ErrJobTypeRequired      = errors.New("--type flag is required")
	ErrMainFileRequired     = errors.New("--main-file or --main-class is required")
)
