package cookies

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBaseDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rawURL string
		want   string
	}{
		{"https://www.youtube.com/playlist?list=PLx", "youtube.com"},
		{"https://music.example.co.uk/sets/mix", "example.co.uk"},
		{"http://vimeo.com/channels/staff", "vimeo.com"},
	}

	for _, tt := range tests {
		got, err := BaseDomain(tt.rawURL)
		if err != nil {
			t.Fatalf("BaseDomain(%q): unexpected error %v", tt.rawURL, err)
		}
		if got != tt.want {
			t.Errorf("BaseDomain(%q): got %q, want %q", tt.rawURL, got, tt.want)
		}
	}
}

func TestMergePrefersPrimary(t *testing.T) {
	t.Parallel()

	secondary := []*http.Cookie{
		{Domain: "example.com", Path: "/", Name: "session", Value: "stale"},
		{Domain: "example.com", Path: "/", Name: "theme", Value: "dark"},
	}
	primary := []*http.Cookie{
		{Domain: "example.com", Path: "/", Name: "session", Value: "fresh"},
	}

	merged := Merge(primary, secondary)
	if len(merged) != 2 {
		t.Fatalf("merged cookie count: got %d, want 2", len(merged))
	}

	for _, c := range merged {
		if c.Name == "session" && c.Value != "fresh" {
			t.Errorf("session cookie: got %q, want primary value %q", c.Value, "fresh")
		}
	}
}

func TestWriteNetscapeFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cookies.txt")
	cookies := []*http.Cookie{
		{
			Domain:  "www.example.com",
			Path:    "/",
			Name:    "session",
			Value:   "abc123",
			Secure:  true,
			Expires: time.Unix(1900000000, 0),
		},
		{
			Domain: ".example.com",
			Path:   "/watch",
			Name:   "pref",
			Value:  "hd",
		},
	}

	if err := WriteNetscapeFile(cookies, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "# Netscape HTTP Cookie File") {
		t.Error("missing Netscape header")
	}
	if !strings.Contains(content, ".www.example.com\tFALSE\t/\tTRUE\t1900000000\tsession\tabc123\n") {
		t.Errorf("missing session cookie line in:\n%s", content)
	}
	if !strings.Contains(content, ".example.com\tFALSE\t/watch\tFALSE\t0\tpref\thd\n") {
		t.Errorf("missing pref cookie line in:\n%s", content)
	}
}
