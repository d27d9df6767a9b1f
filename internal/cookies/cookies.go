// Package cookies loads browser cookies for playlist sites and exports them
// in Netscape format for downloader commands.
package cookies

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"playlistarr/internal/utils/logging"

	"github.com/browserutils/kooky"
	// Use all browsers for Kooky:
	_ "github.com/browserutils/kooky/browser/all"
	"golang.org/x/net/publicsuffix"
)

// Manager holds cookies per base domain.
type Manager struct {
	mu      sync.RWMutex
	cookies map[string][]*http.Cookie
}

// NewManager initializes a new cookie manager instance.
func NewManager() *Manager {
	return &Manager{
		cookies: make(map[string][]*http.Cookie),
	}
}

// ForURL retrieves cookies for a given URL, reading browser stores on the
// first request for each base domain.
func (m *Manager) ForURL(ctx context.Context, u string) ([]*http.Cookie, error) {
	base, err := BaseDomain(u)
	if err != nil {
		return nil, fmt.Errorf("error extracting base domain in cookie grab: %w", err)
	}

	// Check if we already have cookies for this domain
	m.mu.RLock()
	if cookies, ok := m.cookies[base]; ok {
		m.mu.RUnlock()
		return cookies, nil
	}
	m.mu.RUnlock()

	cookies := loadCookiesForDomain(ctx, base)

	m.mu.Lock()
	m.cookies[base] = cookies
	m.mu.Unlock()

	return cookies, nil
}

// ExportFile writes the browser cookies for the given URLs to a Netscape
// format file at path. Returns "" with a nil error when no cookies were
// found, in which case no file is written.
func (m *Manager) ExportFile(ctx context.Context, path string, rawURLs ...string) (string, error) {
	var merged []*http.Cookie
	for _, u := range rawURLs {
		cookies, err := m.ForURL(ctx, u)
		if err != nil {
			logging.D(1, "Skipping cookies for %q: %v", u, err)
			continue
		}
		merged = Merge(cookies, merged)
	}

	if len(merged) == 0 {
		logging.I("No browser cookies found, won't use '--cookies' in commands")
		return "", nil
	}

	if err := WriteNetscapeFile(merged, path); err != nil {
		return "", err
	}
	logging.D(1, "Saved %d cookies to file %s", len(merged), path)
	return path, nil
}

// loadCookiesForDomain loads the cookies associated with a particular domain.
func loadCookiesForDomain(ctx context.Context, domain string) []*http.Cookie {
	kookyCookies, err := kooky.ReadCookies(ctx, kooky.Valid, kooky.Domain(domain))
	if err != nil {
		logging.D(2, "Failed reading cookies: %v", err)
		return nil
	}

	if len(kookyCookies) > 0 {
		logging.I("Found %d cookies for %s", len(kookyCookies), domain)
		return convertToHTTPCookies(kookyCookies)
	}

	logging.I("No cookies found for %s", domain)
	return nil
}

// convertToHTTPCookies converts kooky cookies to http.Cookie format.
func convertToHTTPCookies(kookyCookies []*kooky.Cookie) []*http.Cookie {
	httpCookies := make([]*http.Cookie, len(kookyCookies))
	for i, c := range kookyCookies {
		httpCookies[i] = &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Expires: c.Expires,
			Secure:  c.Secure,
		}
	}
	return httpCookies
}

// WriteNetscapeFile saves the cookies to a file in Netscape format.
func WriteNetscapeFile(cookies []*http.Cookie, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.E(0, "failed to close file %q due to error: %v", path, err)
		}
	}()

	// Write the header for the Netscape cookies file
	_, err = file.WriteString("# Netscape HTTP Cookie File\n# https://curl.haxx.se/rfc/cookie_spec.html\n# This is a generated file! Do not edit.\n\n")
	if err != nil {
		return err
	}

	for _, cookie := range cookies {
		domain := cookie.Domain
		if !strings.HasPrefix(domain, ".") && strings.Count(domain, ".") > 1 {
			domain = "." + domain
		}

		secure := "FALSE"
		if cookie.Secure {
			secure = "TRUE"
		}

		expires := int64(0)
		if !cookie.Expires.IsZero() {
			expires = cookie.Expires.Unix()
		}

		_, err := fmt.Fprintf(file, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			domain, "FALSE", cookie.Path, secure, expires, cookie.Name, cookie.Value)
		if err != nil {
			return err
		}
	}
	return nil
}

// Merge merges cookies so that primary cookies take precedent.
func Merge(primary, secondary []*http.Cookie) []*http.Cookie {
	cookieMap := make(map[string]*http.Cookie)

	for _, c := range secondary {
		key := c.Domain + "|" + c.Path + "|" + c.Name
		cookieMap[key] = c
	}

	// primary overrides
	for _, c := range primary {
		key := c.Domain + "|" + c.Path + "|" + c.Name
		cookieMap[key] = c
	}

	merged := make([]*http.Cookie, 0, len(cookieMap))
	for _, c := range cookieMap {
		merged = append(merged, c)
	}
	return merged
}

// BaseDomain returns the base domain for an inputted URL.
func BaseDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return publicsuffix.EffectiveTLDPlusOne(u.Hostname())
}
