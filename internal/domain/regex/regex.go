// Package regex compiles and caches various regex expressions.
package regex

import (
	"regexp"
)

var (
	AnsiEscape    *regexp.Regexp
	AriaItemCount *regexp.Regexp
	AriaProgress  *regexp.Regexp
	RateLimit     *regexp.Regexp
)

// AnsiEscapeCompile compiles regex for ANSI escape codes
func AnsiEscapeCompile() *regexp.Regexp {
	if AnsiEscape == nil {
		AnsiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	}
	return AnsiEscape
}

// AriaItemCountCompile compiles regex for aria2c batch item counts
func AriaItemCountCompile() *regexp.Regexp {
	if AriaItemCount == nil {
		AriaItemCount = regexp.MustCompile(`Downloading (\d+) item\(s\)`)
	}
	return AriaItemCount
}

// AriaProgressCompile compiles regex for aria2c percentage output
func AriaProgressCompile() *regexp.Regexp {
	if AriaProgress == nil {
		AriaProgress = regexp.MustCompile(`\((\d{1,3})%\)`)
	}
	return AriaProgress
}

// RateLimitCompile compiles regex for yt-dlp rate limit values (e.g. '4.2M', '500K')
func RateLimitCompile() *regexp.Regexp {
	if RateLimit == nil {
		RateLimit = regexp.MustCompile(`^\d+(\.\d+)?[KMG]?$`)
	}
	return RateLimit
}
