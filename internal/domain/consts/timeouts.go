package consts

import "time"

// Retry configuration
const (
	DefaultMaxAttempts   = 3
	DefaultRetryInterval = 5 * time.Second
	RetryBackoff         = 100 * time.Millisecond
)

// Network timeouts
const (
	ListingTimeout  = 120 * time.Second
	ScraperTimeout  = 60 * time.Second
	DatabaseTimeout = 5 * time.Second
)

// File operations
const (
	FileCheckInterval = 100 * time.Millisecond
	FileWaitTimeout   = 10 * time.Second
)

// Server shutdown grace period.
const (
	ServerShutdownTimeout = 5 * time.Second
)
