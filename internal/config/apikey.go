package config

import (
	"os"

	"github.com/cryptogamefiverse/nftdash/internal/constants"
)

// ResolveAPIKey returns the marketplace API key by checking multiple sources
// in priority order. An empty result is valid: the public endpoint answers
// without a key, only with tighter throttling.
//
// Priority (highest to lowest):
//  1. Provided apiKey parameter (if non-empty) - e.g., from --api-key flag
//  2. NFTDASH_API_KEY environment variable
//  3. api_key in the [opensea] section of the config file
//  4. OPENSEA_API_KEY environment variable
func ResolveAPIKey(apiKey string, cfg *Config) string {
	key, _ := ResolveAPIKeySource(apiKey, cfg)
	return key
}

// ResolveAPIKeySource returns the API key and where it came from, for
// --verbose output. The source is one of "flag", "environment", "config",
// "fallback-environment", or "" if no key was found.
func ResolveAPIKeySource(apiKey string, cfg *Config) (string, string) {
	if apiKey != "" {
		return apiKey, "flag"
	}

	if envKey := os.Getenv(constants.APIKeyEnvVar); envKey != "" {
		return envKey, "environment"
	}

	if cfg != nil && cfg.APIKey != "" {
		return cfg.APIKey, "config"
	}

	if envKey := os.Getenv(constants.FallbackAPIKeyEnvVar); envKey != "" {
		return envKey, "fallback-environment"
	}

	return "", ""
}

// MaskAPIKey shortens a key for display, keeping the last four characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
