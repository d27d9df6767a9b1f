package net

import "testing"

func TestIsPrivateNetwork(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"loopback IPv4", "127.0.0.1", true},
		{"loopback IPv6", "::1", true},
		{"localhost", "localhost", true},
		{"localhost with port", "localhost:8096", true},
		{"ten slash eight", "10.0.0.5", true},
		{"one seventy two range", "172.16.40.1", true},
		{"one ninety two range", "192.168.1.20", true},
		{"link local", "169.254.10.10", true},
		{"private URL", "http://192.168.1.20:8096/library", true},
		{"localhost URL", "https://localhost/feed", true},
		{"public IPv4", "8.8.8.8", false},
		{"public URL", "http://142.250.180.14/watch", false},
		{"just outside ten", "11.0.0.1", false},
		{"just outside one seventy two", "172.32.0.1", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsPrivateNetwork(tt.in); got != tt.want {
				t.Fatalf("IsPrivateNetwork(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHostOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"http://192.168.1.20:8096/library", "192.168.1.20"},
		{"localhost:8096", "localhost"},
		{"10.0.0.5", "10.0.0.5"},
		{"https://media.local/feed", "media.local"},
	}

	for _, tt := range tests {
		if got := hostOf(tt.in); got != tt.want {
			t.Fatalf("hostOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
