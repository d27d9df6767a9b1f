// Package archive tracks completed download identifiers across runs.
//
// The archive is a plain text file with one identifier per line, appended on
// every successful download and never pruned automatically. A nil *Archive is
// valid and behaves as an always-empty, non-recording archive.
package archive

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"playlistarr/internal/utils/logging"
)

// Archive holds the known completed identifiers for a run.
type Archive struct {
	path string
	mu   sync.Mutex
	ids  map[string]struct{}
}

// Load reads the archive file at path. A missing file yields an empty
// archive; any other read failure is returned to the caller.
func Load(path string) (*Archive, error) {
	a := &Archive{
		path: path,
		ids:  make(map[string]struct{}),
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.D(1, "No download archive at %q yet, starting empty", path)
			return a, nil
		}
		return nil, fmt.Errorf("failed to open download archive %q: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.E(0, "Failed to close archive file %q: %v", path, err)
		}
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		a.ids[id] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read download archive %q: %w", path, err)
	}

	logging.D(1, "Loaded %d identifiers from download archive %q", len(a.ids), path)
	return a, nil
}

// Contains reports whether the identifier was recorded as completed.
func (a *Archive) Contains(id string) bool {
	if a == nil || id == "" {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	_, ok := a.ids[id]
	return ok
}

// Add records an identifier and appends it to the archive file. Each append
// is flushed before returning. Duplicate identifiers are ignored.
func (a *Archive) Add(id string) error {
	if a == nil {
		return nil
	}
	if id == "" {
		return fmt.Errorf("refusing to archive empty identifier")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.ids[id]; ok {
		return nil
	}

	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open download archive %q for append: %w", a.path, err)
	}

	if _, err := fmt.Fprintln(f, id); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			logging.E(0, "Failed to close archive file %q: %v", a.path, closeErr)
		}
		return fmt.Errorf("failed to append %q to download archive: %w", id, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to flush download archive %q: %w", a.path, err)
	}

	a.ids[id] = struct{}{}
	return nil
}

// Len returns the number of recorded identifiers.
func (a *Archive) Len() int {
	if a == nil {
		return 0
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.ids)
}

// Path returns the backing file path.
func (a *Archive) Path() string {
	if a == nil {
		return ""
	}
	return a.path
}
