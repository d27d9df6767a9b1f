package downloads

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		err           error
		wantTransient bool
		wantFatal     bool
	}{
		{
			name:          "network timeout is transient",
			err:           errors.New("yt-dlp failed: read tcp: connection timed out"),
			wantTransient: true,
		},
		{
			name:          "unknown failure defaults to transient",
			err:           errors.New("yt-dlp failed: exit status 1"),
			wantTransient: true,
		},
		{
			name: "private video is permanent",
			err:  errors.New("ERROR: [youtube] abc: Private video"),
		},
		{
			name: "removed video is permanent",
			err:  errors.New("ERROR: Video unavailable. This video has been removed by the uploader"),
		},
		{
			name: "unsupported url is permanent",
			err:  errors.New("ERROR: Unsupported URL: https://example.com/page"),
		},
		{
			name: "http 403 is permanent",
			err:  errors.New("ERROR: unable to download video data: HTTP Error 403: Forbidden"),
		},
		{
			name: "bot detection is permanent",
			err:  errors.New("ERROR: Sign in to confirm you're not a bot"),
		},
		{
			name:      "full disk is fatal",
			err:       errors.New("OSError: [Errno 28] No space left on device"),
			wantFatal: true,
		},
		{
			name:      "unwritable output target is fatal",
			err:       errors.New("ERROR: unable to open for writing: [Errno 2] No such file or directory"),
			wantFatal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			classified := Classify(tt.err)
			if got := IsTransient(classified); got != tt.wantTransient {
				t.Errorf("IsTransient: got %v, want %v", got, tt.wantTransient)
			}
			if got := IsFatal(classified); got != tt.wantFatal {
				t.Errorf("IsFatal: got %v, want %v", got, tt.wantFatal)
			}
			if !errors.Is(classified, tt.err) {
				t.Error("classified error must wrap the original")
			}
		})
	}
}

func TestClassifyPassesContextErrors(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("download aborted: %w", context.Canceled)
	if got := Classify(wrapped); got != wrapped {
		t.Errorf("context cancellation must pass through, got %v", got)
	}
	if Classify(nil) != nil {
		t.Error("nil error must stay nil")
	}
}
