package downloads

import (
	"context"
	"errors"
	"strings"
)

// TransientError marks a download failure worth retrying.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a download failure that no retry can fix, such as a
// private or removed video.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// FatalError marks an environment failure that should abort the whole run,
// such as a full disk.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// fatalMarkers abort the run outright. A write failure on the output target
// counts too, since every sibling item shares the same output directory.
var fatalMarkers = []string{
	"no space left on device",
	"disk full",
	"read-only file system",
	"disk quota exceeded",
	"unable to open for writing",
}

// permanentMarkers indicate the item can never download, so retrying is
// pointless.
var permanentMarkers = []string{
	"private video",
	"video unavailable",
	"account associated with this video has been terminated",
	"removed by the uploader",
	"removed for violating",
	"copyright",
	"unsupported url",
	"unable to extract",
	"http error 401",
	"http error 403",
	"http error 404",
	"not a bot",
	"not a robot",
	"sign in to confirm",
	"age-restricted",
}

// Classify wraps a download error according to whether a retry could help.
// Unrecognized failures count as transient so flaky networks get the benefit
// of the doubt. Context errors pass through untouched.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range fatalMarkers {
		if strings.Contains(msg, marker) {
			return &FatalError{Err: err}
		}
	}
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return &PermanentError{Err: err}
		}
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether the error is worth retrying.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsFatal reports whether the error should abort the whole run.
func IsFatal(err error) bool {
	var f *FatalError
	return errors.As(err, &f)
}
