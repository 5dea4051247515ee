package ratelimit

import "time"

// OpenSea throttling
//
// The v1 collection endpoint is throttled per API key (or per client IP when
// no key is sent). Limits are not published per endpoint, so the client-side
// bucket is opt-in through [http] rate_per_second; these values only shape
// how the bucket reacts once the server has answered 429.
const (
	// DefaultCooldown is applied after a 429 without a usable Retry-After header.
	DefaultCooldown = 5 * time.Second

	// MaxCooldown caps a server-supplied Retry-After.
	MaxCooldown = 2 * time.Minute

	// WarnWaitThreshold - waits longer than this are logged
	WarnWaitThreshold = 2 * time.Second

	// WarnInterval - minimum spacing between "rate limited" warnings
	WarnInterval = 10 * time.Second
)
