package fragment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// cacheBustParam is the query parameter appended by reloads.
const cacheBustParam = "t"

// Fetcher retrieves a fragment or stylesheet as text.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// FSFetcher reads URLs as paths inside a file system. Query strings are
// ignored.
type FSFetcher struct {
	fsys fs.FS
}

// NewFSFetcher creates a fetcher over fsys.
func NewFSFetcher(fsys fs.FS) *FSFetcher {
	return &FSFetcher{fsys: fsys}
}

// Fetch implements Fetcher.
func (f *FSFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	name := strings.TrimPrefix(u.Path, "/")
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("invalid path %q", u.Path)
	}
	data, err := fs.ReadFile(f.fsys, name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}

// HTTPFetcher retrieves URLs over HTTP, resolving relative URLs against a
// base. Like the page's fetch, a non-OK status is not an error unless strict
// status checking is enabled.
type HTTPFetcher struct {
	client *http.Client
	base   *url.URL
	strict bool
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithStrictStatus makes non-2xx responses fail.
func WithStrictStatus() HTTPOption {
	return func(f *HTTPFetcher) { f.strict = true }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// NewHTTPFetcher creates a fetcher resolving against baseURL.
func NewHTTPFetcher(baseURL string, opts ...HTTPOption) (*HTTPFetcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	f := &HTTPFetcher{client: http.DefaultClient, base: base}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	target := f.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", target, err)
	}
	if f.strict && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return "", fmt.Errorf("fetch %s: unexpected status %d", target, resp.StatusCode)
	}
	return string(body), nil
}

// CachedFetcher memoizes successful fetches by URL. Cache-busted URLs always
// go to the underlying fetcher and refresh the entry of their plain URL.
type CachedFetcher struct {
	next  Fetcher
	cache *cache.Cache
}

// NewCachedFetcher wraps next with an in-memory cache.
func NewCachedFetcher(next Fetcher, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Fetch implements Fetcher.
func (f *CachedFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	plain, busted := stripCacheBust(rawURL)
	if !busted {
		if v, ok := f.cache.Get(plain); ok {
			return v.(string), nil
		}
	}

	body, err := f.next.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	f.cache.SetDefault(plain, body)
	return body, nil
}

// cacheBust appends the timestamp parameter to rawURL.
func cacheBust(rawURL string, now time.Time) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%s=%d", rawURL, sep, cacheBustParam, now.UnixMilli())
}

// stripCacheBust removes the timestamp parameter and reports whether it was
// present.
func stripCacheBust(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return rawURL, false
	}
	q := u.Query()
	if !q.Has(cacheBustParam) {
		return rawURL, false
	}
	q.Del(cacheBustParam)
	u.RawQuery = q.Encode()
	return u.String(), true
}

var errNoSource = errors.New("include element has no source")
