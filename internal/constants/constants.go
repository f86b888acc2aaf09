package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ExtendedHTTPTimeout is used for longer operations.
	ExtendedHTTPTimeout = 45 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 5

	// LowRetryMax is used for operations that should retry fewer times.
	LowRetryMax = 3

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits.
	ExtendedRetryWaitMax = 30 * time.Second
)

// Concurrency and batching limits.
const (
	// DefaultConcurrencyLimit limits concurrent operations.
	DefaultConcurrencyLimit = 3

	// BufferSize is the default buffer size for channels.
	BufferSize = 100

	// SmallBufferSize is used for smaller buffers.
	SmallBufferSize = 10
)

// Time intervals and delays.
const (
	// DefaultPollInterval is used for polling operations.
	DefaultPollInterval = 2 * time.Second

	// QuickPollInterval is used for fast polling.
	QuickPollInterval = 10 * time.Millisecond

	// LongPollInterval is used for slower polling.
	LongPollInterval = 5 * time.Second

	// DefaultOperationPollTimeout is the default timeout when waiting on an operation.
	DefaultOperationPollTimeout = 10 * time.Minute

	// DefaultJobPollTimeout is the default timeout for job polling.
	DefaultJobPollTimeout = 5 * time.Minute
)

// Pagination and display limits.
const (
	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 10

	// SmallPageSize is used for demonstrations or small lists.
	SmallPageSize = 5

	// StandardPageSize is the common page size for API responses.
	StandardPageSize = 50

	// LargePageSize is used for efficient bulk operations.
	LargePageSize = 100

	// MaxPages is used to prevent infinite loops in pagination.
	MaxPages = 50
)

// Token constants.
const (
	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second

	// DefaultAccessTokenValidity is the default validity for access tokens in seconds.
	DefaultAccessTokenValidity = 3600
)

// Cache constants.
const (
	// DefaultCacheSize is the default cache size limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// CacheMinTTL is the minimum cache time-to-live.
	CacheMinTTL = 30 * time.Second

	// MaxCacheValueSize is the maximum size for cached values (1MB).
	MaxCacheValueSize = 1024 * 1024

	// ClustersCacheTTL is the TTL for cluster cache entries.
	ClustersCacheTTL = 2 * time.Minute

	// TemplatesCacheTTL is the TTL for workflow template cache entries.
	TemplatesCacheTTL = 10 * time.Minute

	// OperationsCacheTTL is the TTL for operation cache entries.
	OperationsCacheTTL = 30 * time.Second
)

// Terminal states reported by the API.
const (
	// ClusterStateRunning indicates a healthy running cluster.
	ClusterStateRunning = "RUNNING"

	// ClusterStateError indicates a failed cluster.
	ClusterStateError = "ERROR"

	// JobStateDone indicates a finished job.
	JobStateDone = "DONE"

	// JobStateError indicates a failed job.
	JobStateError = "ERROR"

	// JobStateCancelled indicates a cancelled job.
	JobStateCancelled = "CANCELLED"

	// OperationStateDone indicates a finished operation.
	OperationStateDone = "DONE"

	// OperationStateCancelled indicates a cancelled operation.
	OperationStateCancelled = "CANCELLED"
)

// Circuit breaker constants.
const (
	// CircuitBreakerThreshold is the failure threshold for the circuit breaker.
	CircuitBreakerThreshold = 5

	// CircuitBreakerSuccessThreshold is the success threshold for the circuit breaker.
	CircuitBreakerSuccessThreshold = 2

	// CircuitBreakerTimeout is the timeout for the circuit breaker.
	CircuitBreakerTimeout = 30 * time.Second
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// StringTruncationLength is the default length for truncating strings.
	StringTruncationLength = 80

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2

	// KeyValueSplitParts is the number of parts when splitting key=value strings.
	KeyValueSplitParts = 2
)
