package cards

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// UserAgent is sent with every request so card sites serve the normal page.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

// maxPageSize caps the listing body read (8MB).
const maxPageSize = 8 << 20

var (
	// Listing containers in order of preference. The document root is the
	// last resort when the site markup changes.
	gridSelectors = []cascadia.Selector{
		cascadia.MustCompile("div.card-search-grid"),
		cascadia.MustCompile("div.search-grid"),
	}
	anchorSelector = cascadia.MustCompile("a[href]")
	imgSelector    = cascadia.MustCompile("img")
)

// HTMLLister scrapes card images from a card-search result page.
type HTMLLister struct {
	URL    string
	Client *http.Client
}

// NewHTMLLister creates a lister for pageURL. A nil client gets a 30s timeout.
func NewHTMLLister(pageURL string, client *http.Client) *HTMLLister {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTMLLister{URL: pageURL, Client: client}
}

func (l *HTMLLister) List(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, l.URL)
	}
	// Relative sources resolve against the final URL after redirects.
	return ParseListing(io.LimitReader(resp.Body, maxPageSize), resp.Request.URL)
}

// ParseListing extracts card records from a listing page. Every link that
// wraps an image becomes one record, numbered from 1 in document order.
// Relative image sources are resolved against base when it is non-nil.
func ParseListing(r io.Reader, base *url.URL) ([]Record, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	grid := doc
	for _, sel := range gridSelectors {
		if n := sel.MatchFirst(doc); n != nil {
			grid = n
			break
		}
	}

	var out []Record
	for _, a := range anchorSelector.MatchAll(grid) {
		img := imgSelector.MatchFirst(a)
		if img == nil {
			continue
		}
		src := imageSource(img)
		if src == "" {
			continue
		}
		if base != nil {
			if u, err := base.Parse(src); err == nil {
				src = u.String()
			}
		}
		out = append(out, Record{Index: len(out) + 1, ImageURL: src})
	}
	if len(out) == 0 {
		return nil, ErrSourceListEmpty
	}
	return out, nil
}

// imageSource prefers src, then the lazy-loading attributes.
func imageSource(n *html.Node) string {
	for _, key := range []string{"src", "data-src", "data-original"} {
		if v := strings.TrimSpace(attr(n, key)); v != "" {
			return v
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SetNameFromURL names a run after the last path segment of the listing URL.
func SetNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "set"
	}
	p := strings.Trim(u.Path, "/")
	if p == "" {
		return "set"
	}
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, path.Base(p))
	if strings.Trim(name, ".") == "" {
		return "set"
	}
	return name
}
