package listing

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"playlistarr/internal/domain/consts"
	"playlistarr/internal/models"
	"playlistarr/internal/net"
	"playlistarr/internal/utils/logging"

	"github.com/gocolly/colly"
	"golang.org/x/net/publicsuffix"
)

type urlPattern struct {
	name    string
	pattern string
}

const (
	bitchute        = "bitchute.com"
	bitchutePattern = "/video/"
	odysee          = "odysee.com"
	odyseePattern   = "@"
	rumble          = "rumble.com"
	rumblePattern   = "/v"
	defaultDom      = "default"
	defaultPattern  = "/watch"
)

var patterns = map[string]urlPattern{
	bitchute:   {name: bitchute, pattern: bitchutePattern},
	odysee:     {name: odysee, pattern: odyseePattern},
	rumble:     {name: rumble, pattern: rumblePattern},
	defaultDom: {name: defaultDom, pattern: defaultPattern},
}

// patternFor picks the link pattern matching the source URL's site.
func patternFor(sourceURL string) urlPattern {
	for domain, p := range patterns {
		if domain != defaultDom && strings.Contains(sourceURL, domain) {
			logging.I("Detected %s link", p.name)
			return p
		}
	}
	return patterns[defaultDom]
}

// scrapePlaylist collects video links from the playlist page itself. Items
// found this way carry their link as both identifier and title since no
// further metadata is available without downloading.
func (l *Lister) scrapePlaylist(ctx context.Context, sourceURL string) (*models.Playlist, error) {
	collector := colly.NewCollector()
	collector.SetRequestTimeout(consts.ScraperTimeout)

	// LAN media servers typically use self-signed certificates
	if net.IsPrivateNetwork(sourceURL) {
		collector.WithTransport(&http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		})
	}

	// Set cookies
	if browserCookies, err := l.cookieManager.ForURL(ctx, sourceURL); err == nil && len(browserCookies) > 0 {
		jar, jarErr := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if jarErr != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", jarErr)
		}
		if parsed, parseErr := url.Parse(sourceURL); parseErr == nil {
			jar.SetCookies(parsed, browserCookies)
			collector.SetCookieJar(jar)
		}
	}

	pattern := patternFor(sourceURL)

	var (
		links  []string
		unique = make(map[string]struct{})
	)
	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" || link == sourceURL || !strings.Contains(link, pattern.pattern) {
			return
		}
		if _, ok := unique[link]; ok {
			return
		}
		unique[link] = struct{}{}
		links = append(links, link)
	})

	if err := collector.Visit(sourceURL); err != nil {
		return nil, fmt.Errorf("error visiting webpage %q: %w", sourceURL, err)
	}
	collector.Wait()

	if len(links) == 0 {
		return nil, fmt.Errorf("no video links found at %q", sourceURL)
	}

	playlist := &models.Playlist{
		SourceURL: sourceURL,
		Items:     make([]*models.PlaylistItem, 0, len(links)),
	}
	for i, link := range links {
		item := models.NewPlaylistItem(link, link)
		item.Title = link
		item.PlaylistIndex = i + 1
		playlist.Items = append(playlist.Items, item)
	}

	logging.I("Scraped %d video links from %q", len(links), sourceURL)
	return playlist, nil
}
