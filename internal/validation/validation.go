// Package validation checks user-supplied configuration before a run starts.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"playlistarr/internal/domain/consts"
	"playlistarr/internal/domain/keys"
	"playlistarr/internal/domain/regex"
	"playlistarr/internal/models"
	"playlistarr/internal/utils/logging"
)

// ValidateJob validates and normalizes a job configuration. All failures are
// returned as *models.ConfigError so callers can refuse to start the run.
func ValidateJob(j *models.JobConfig) error {
	if j == nil {
		return models.NewConfigError("job", "job configuration is nil")
	}
	j.ApplyDefaults()

	if j.OutputDir == "" {
		return models.NewConfigError(keys.OutputDir, "output directory is required")
	}
	if _, err := ValidateDirectory(j.OutputDir, true); err != nil {
		return models.NewConfigError(keys.OutputDir, err.Error())
	}

	if !consts.ValidPresets[j.Preset] {
		return models.NewConfigError(keys.Preset, fmt.Sprintf("unknown quality preset %q", j.Preset))
	}

	limit, err := ValidateConcurrency(j.WorkerLimit)
	if err != nil {
		return models.NewConfigError(keys.Concurrency, err.Error())
	}
	j.WorkerLimit = limit

	if j.RateLimit != "" && !regex.RateLimitCompile().MatchString(j.RateLimit) {
		return models.NewConfigError(keys.RateLimit, fmt.Sprintf("invalid rate limit %q (expected e.g. '500K' or '4.2M')", j.RateLimit))
	}
	if j.MaxFilesize != "" && !regex.RateLimitCompile().MatchString(j.MaxFilesize) {
		return models.NewConfigError(keys.MaxFilesize, fmt.Sprintf("invalid max filesize %q (expected e.g. '100M')", j.MaxFilesize))
	}

	if j.PlaylistStart < 0 {
		return models.NewConfigError(keys.PlaylistStart, "playlist start cannot be negative")
	}
	if j.PlaylistEnd < 0 {
		return models.NewConfigError(keys.PlaylistEnd, "playlist end cannot be negative")
	}
	if j.PlaylistStart > 0 && j.PlaylistEnd > 0 && j.PlaylistEnd < j.PlaylistStart {
		return models.NewConfigError(keys.PlaylistEnd, "playlist end cannot precede playlist start")
	}

	if j.MaxAttempts < 1 {
		return models.NewConfigError(keys.DLRetries, "at least one download attempt is required")
	}
	if j.RetryInterval < 0 {
		return models.NewConfigError(keys.DLRetryInterval, "retry interval cannot be negative")
	}

	if j.MergeOutputExt != "" && !consts.ValidMergeExts[j.MergeOutputExt] {
		return models.NewConfigError(keys.MergeOutputExt, fmt.Sprintf("unsupported merge container %q", j.MergeOutputExt))
	}

	if j.CookiePath != "" {
		if _, err := os.Stat(j.CookiePath); err != nil {
			return models.NewConfigError(keys.CookiePath, fmt.Sprintf("cookie file not readable: %v", err))
		}
	}

	if j.ArchiveEnabled {
		if j.ArchivePath == "" {
			j.ArchivePath = filepath.Join(j.OutputDir, consts.DefaultArchiveName)
		}
		parent := filepath.Dir(j.ArchivePath)
		if _, err := os.Stat(parent); err != nil {
			return models.NewConfigError(keys.ArchivePath, fmt.Sprintf("archive directory not accessible: %v", err))
		}
	}

	return nil
}

// ValidateDirectory checks a directory exists, optionally creating it.
func ValidateDirectory(dir string, createIfMissing bool) (os.FileInfo, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, fmt.Errorf("path %q exists but is not a directory", dir)
		}
		return info, nil

	case os.IsNotExist(err):
		if !createIfMissing {
			return nil, fmt.Errorf("directory %q does not exist", dir)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to stat created directory %q: %w", dir, err)
		}
		return info, nil

	default:
		return nil, fmt.Errorf("failed to stat directory %q: %w", dir, err)
	}
}

// ValidateFile checks a file exists and is a regular file, optionally
// creating it empty when absent.
func ValidateFile(path string, createIfMissing bool) (os.FileInfo, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return nil, fmt.Errorf("path %q is a directory, not a file", path)
		}
		return info, nil

	case os.IsNotExist(err):
		if !createIfMissing {
			return nil, fmt.Errorf("file %q does not exist", path)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to create file %q: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("failed to close created file %q: %w", path, err)
		}
		return os.Stat(path)

	default:
		return nil, fmt.Errorf("failed to stat file %q: %w", path, err)
	}
}

// ValidateConcurrency bounds the worker limit to the supported range.
// Values above the maximum are clamped with a warning rather than rejected.
func ValidateConcurrency(limit int) (int, error) {
	switch {
	case limit < consts.MinConcurrency:
		return 0, fmt.Errorf("concurrency %d below minimum of %d", limit, consts.MinConcurrency)
	case limit > consts.MaxConcurrency:
		logging.W("Concurrency %d exceeds maximum, clamping to %d", limit, consts.MaxConcurrency)
		return consts.MaxConcurrency, nil
	default:
		return limit, nil
	}
}

// ValidateProgressMode checks the progress display mode flag.
func ValidateProgressMode(mode string) error {
	if !consts.ValidProgressModes[mode] {
		return models.NewConfigError(keys.ProgressMode, fmt.Sprintf("unknown progress mode %q", mode))
	}
	return nil
}

// ParseSelection parses a 1-based index selection such as "1,4-7" against a
// playlist of n entries. An empty expression selects everything.
func ParseSelection(expr string, n int) (map[int]struct{}, error) {
	selected := make(map[int]struct{}, n)
	if strings.TrimSpace(expr) == "" {
		for i := 1; i <= n; i++ {
			selected[i] = struct{}{}
		}
		return selected, nil
	}

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, found := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid selection entry %q: %w", part, err)
		}

		end := start
		if found {
			if end, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, fmt.Errorf("invalid selection range %q: %w", part, err)
			}
		}

		if start < 1 || end < start {
			return nil, fmt.Errorf("invalid selection range %q", part)
		}
		for i := start; i <= end && i <= n; i++ {
			selected[i] = struct{}{}
		}
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("selection %q matches no playlist entries", expr)
	}
	return selected, nil
}

// SelectionIndexes returns the sorted indexes of a parsed selection, mainly
// for diagnostics.
func SelectionIndexes(sel map[int]struct{}) []int {
	out := make([]int, 0, len(sel))
	for i := range sel {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
