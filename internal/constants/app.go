package constants

import (
	"time"
)

// Application identity
const (
	// AppName - binary and config directory name
	AppName = "nftdash"

	// ConfigFileName - ini file under the user config directory
	ConfigFileName = "config"

	// APIKeyEnvVar - highest-priority environment override for the marketplace key
	APIKeyEnvVar = "NFTDASH_API_KEY"

	// FallbackAPIKeyEnvVar - generic OpenSea key variable, lowest priority
	FallbackAPIKeyEnvVar = "OPENSEA_API_KEY"
)

// Marketplace API
const (
	// DefaultBaseURL - OpenSea API root; collection stats live at /api/v1/collection/{slug}
	DefaultBaseURL = "https://api.opensea.io"

	// CollectionPath - path template for one collection
	CollectionPath = "/api/v1/collection/%s"

	// APIKeyHeader - header carrying the marketplace key
	APIKeyHeader = "X-API-KEY"

	// DefaultHTTPTimeout - per-request timeout (30s)
	DefaultHTTPTimeout = 30 * time.Second

	// MaxResponseBytes - cap on a decoded collection body (4 MB)
	// A collection body is a few KB; anything larger is not a stats response.
	MaxResponseBytes = 4 * 1024 * 1024
)

// DefaultCollections is the tracked blue-chip slug list used when the config
// names none.
var DefaultCollections = []string{
	"boredapeyachtclub",
	"fidenza-by-tyler-hobbs",
	"mutant-ape-yacht-club",
	"world-of-women-nft",
	"rtfkt-creators",
	"cool-cats-nft",
	"doodles-official",
	"meebits",
	"jrny-club-official",
	"supducks",
	"the-wanderers",
	"planet-pass",
	"the-doge-pound",
	"cyberkongz",
	"veefriends",
}

// Retry configuration
const (
	// DefaultMaxRetries - fetches are single-attempt unless configured otherwise
	DefaultMaxRetries = 0

	// MaxRetriesLimit - highest accepted max_retries value
	MaxRetriesLimit = 10

	// RetryInitialDelay - initial delay before first retry (200ms)
	RetryInitialDelay = 200 * time.Millisecond

	// RetryMaxDelay - maximum delay between retries (15s)
	// Exponential backoff with jitter caps at this value
	RetryMaxDelay = 15 * time.Second
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels (1000)
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - maximum buffer size for high-throughput scenarios (5000)
	EventBusMaxBuffer = 5000
)

// Dashboard server
const (
	// DefaultServerAddr - listen address for `nftdash serve`
	DefaultServerAddr = "127.0.0.1:8089"

	// ServerShutdownTimeout - grace period for in-flight requests on shutdown
	ServerShutdownTimeout = 5 * time.Second

	// WebsocketWriteTimeout - deadline for a single snapshot push
	WebsocketWriteTimeout = 10 * time.Second

	// WebsocketPingInterval - keepalive ping period for idle streams
	WebsocketPingInterval = 30 * time.Second
)

// Log rotation for the terminal UI, where stdout belongs to the renderer
const (
	// LogFileMaxSizeMB - rotate after this size
	LogFileMaxSizeMB = 10

	// LogFileMaxBackups - rotated files kept
	LogFileMaxBackups = 3

	// LogFileMaxAgeDays - rotated files older than this are removed
	LogFileMaxAgeDays = 14
)

// UI Updates
const (
	// ProgressUpdateInterval - minimum interval between progress bar redraws (250ms)
	ProgressUpdateInterval = 250 * time.Millisecond
)

// Export destinations
const (
	// S3EndpointEnvVar - S3-compatible endpoint override; enables path-style addressing
	S3EndpointEnvVar = "NFTDASH_S3_ENDPOINT"

	// S3AccessKeyEnvVar and S3SecretKeyEnvVar - static credentials that take
	// precedence over the default AWS credential chain
	S3AccessKeyEnvVar = "NFTDASH_AWS_ACCESS_KEY_ID"
	S3SecretKeyEnvVar = "NFTDASH_AWS_SECRET_ACCESS_KEY"

	// AzureAccountKeyEnvVar - shared key for the configured storage account;
	// without it the account URL must carry a SAS token
	AzureAccountKeyEnvVar = "NFTDASH_AZURE_ACCOUNT_KEY"

	// ExportContentType - content type set on uploaded objects
	ExportContentType = "text/csv; charset=utf-8"
)
