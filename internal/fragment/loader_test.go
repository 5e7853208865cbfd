package fragment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ashureev/gomaps-tutor/internal/domain"
	"github.com/ashureev/gomaps-tutor/internal/events"
	"github.com/ashureev/gomaps-tutor/internal/highlight"
)

type fakeFetcher struct {
	mu    sync.Mutex
	files map[string]string
	fail  map[string]error
	calls []string
}

func newFakeFetcher(files map[string]string) *fakeFetcher {
	return &fakeFetcher{files: files, fail: make(map[string]error)}
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, rawURL)
	plain, _ := stripCacheBust(rawURL)
	if err, ok := f.fail[plain]; ok {
		return "", err
	}
	body, ok := f.files[plain]
	if !ok {
		return "", errors.New("not found")
	}
	return body, nil
}

func (f *fakeFetcher) callCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func recordEvents(doc *Document) (*[]events.Event, *[]events.Event) {
	var mu sync.Mutex
	loaded := &[]events.Event{}
	failed := &[]events.Event{}
	doc.Bus().On(events.ComponentLoaded, func(e events.Event) {
		mu.Lock()
		defer mu.Unlock()
		*loaded = append(*loaded, e)
	})
	doc.Bus().On(events.ComponentError, func(e events.Event) {
		mu.Lock()
		defer mu.Unlock()
		*failed = append(*failed, e)
	})
	return loaded, failed
}

func TestLoad_Success(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"fragments/maps.html": "<h2>Maps</h2>",
		"styles/maps.css":     "h2 {}",
	})
	doc := NewDocument(nil)
	loaded, failed := recordEvents(doc)
	l := NewLoader(f)

	el := doc.Attach(domain.FragmentRef{Source: "fragments/maps.html", CSS: "styles/maps.css"})
	l.Load(context.Background(), doc, el.ID)

	got, _ := doc.Element(el.ID)
	if got.Content != "<h2>Maps</h2>" || got.State != StateLoaded {
		t.Fatalf("unexpected element: %+v", got)
	}
	if len(*loaded) != 1 || len(*failed) != 0 {
		t.Fatalf("expected exactly one loaded event, got loaded=%d failed=%d", len(*loaded), len(*failed))
	}
	e := (*loaded)[0]
	if e.Source != "fragments/maps.html" || e.CSSFile != "styles/maps.css" || e.Target != el.ID {
		t.Errorf("unexpected event detail: %+v", e)
	}
	if links := doc.Links(); len(links) != 1 || links[0].Href != "styles/maps.css" {
		t.Errorf("unexpected links: %+v", links)
	}
}

func TestLoad_HighlighterKeepsMarkupWithoutCode(t *testing.T) {
	body := `<label class="quiz-option"><input type="checkbox" data-quiz="q1" data-answer="correct"> yes</label><br>`
	f := newFakeFetcher(map[string]string{"fragments/quiz.html": body})
	doc := NewDocument(nil)
	l := NewLoader(f, WithHighlighter(highlight.NewChroma("github")))

	el := doc.Attach(domain.FragmentRef{Source: "fragments/quiz.html"})
	l.Load(context.Background(), doc, el.ID)

	got, _ := doc.Element(el.ID)
	if got.Content != body {
		t.Fatalf("expected content equal to fetched text, got %q", got.Content)
	}
}

func TestLoad_FetchFailure(t *testing.T) {
	f := newFakeFetcher(map[string]string{})
	doc := NewDocument(nil)
	loaded, failed := recordEvents(doc)

	el := doc.Attach(domain.FragmentRef{Source: "fragments/missing.html"})
	NewLoader(f).Load(context.Background(), doc, el.ID)

	got, _ := doc.Element(el.ID)
	if got.Content != ErrorPlaceholder || got.State != StateError {
		t.Fatalf("expected error placeholder, got %+v", got)
	}
	if len(*loaded) != 0 {
		t.Errorf("expected no loaded event, got %d", len(*loaded))
	}
	if len(*failed) != 1 || (*failed)[0].Err == nil {
		t.Errorf("expected one error event, got %+v", *failed)
	}
}

func TestLoad_StylesheetFailure(t *testing.T) {
	f := newFakeFetcher(map[string]string{"a.html": "<p>a</p>"})
	f.fail["a.css"] = errors.New("stylesheet unavailable")
	doc := NewDocument(nil)
	loaded, _ := recordEvents(doc)

	el := doc.Attach(domain.FragmentRef{Source: "a.html", CSS: "a.css"})
	NewLoader(f).Load(context.Background(), doc, el.ID)

	got, _ := doc.Element(el.ID)
	if got.Content != ErrorPlaceholder {
		t.Fatalf("expected error placeholder, got %q", got.Content)
	}
	if len(*loaded) != 0 {
		t.Errorf("expected no loaded event")
	}
}

func TestLoad_StylesheetIdempotent(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"a.html":     "a",
		"b.html":     "b",
		"shared.css": "",
	})
	doc := NewDocument(nil)
	l := NewLoader(f)

	a := doc.Attach(domain.FragmentRef{Source: "a.html", CSS: "shared.css"})
	b := doc.Attach(domain.FragmentRef{Source: "b.html", CSS: "shared.css"})
	l.Load(context.Background(), doc, a.ID)
	l.Load(context.Background(), doc, b.ID)

	if links := doc.Links(); len(links) != 1 {
		t.Fatalf("expected one link for shared.css, got %+v", links)
	}
	if n := f.callCount("shared.css"); n != 1 {
		t.Errorf("expected stylesheet fetched once, got %d", n)
	}
}

func TestReload_CacheBustsAndRewritesLink(t *testing.T) {
	f := newFakeFetcher(map[string]string{"a.html": "v1", "a.css": ""})
	doc := NewDocument(nil)
	now := time.UnixMilli(1700000000000)
	l := NewLoader(f, WithClock(func() time.Time { return now }))

	el := doc.Attach(domain.FragmentRef{Source: "a.html", CSS: "a.css"})
	l.Load(context.Background(), doc, el.ID)
	f.files["a.html"] = "v2"

	if err := l.Reload(context.Background(), doc, el.ID); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	got, _ := doc.Element(el.ID)
	if got.Content != "v2" {
		t.Errorf("expected reloaded content, got %q", got.Content)
	}
	if got.Ref.Source != "a.html" {
		t.Errorf("expected reference unchanged, got %+v", got.Ref)
	}
	if f.callCount("a.html?t=1700000000000") != 1 {
		t.Errorf("expected cache-busted fetch, calls: %v", f.calls)
	}
	links := doc.Links()
	if len(links) != 1 || links[0].Href != "a.css?t=1700000000000" {
		t.Errorf("expected link rewritten in place, got %+v", links)
	}

	// A second reload still finds the rewritten link.
	now = now.Add(time.Second)
	if err := l.Reload(context.Background(), doc, el.ID); err != nil {
		t.Fatalf("second Reload failed: %v", err)
	}
	if links := doc.Links(); len(links) != 1 || links[0].Href != "a.css?t=1700000001000" {
		t.Errorf("expected single rewritten link, got %+v", links)
	}
}

func TestReloadAll_CountsOnlySuccesses(t *testing.T) {
	for _, parallelism := range []int{1, defaultReloadParallelism} {
		f := newFakeFetcher(map[string]string{"a.html": "a", "b.html": "b"})
		doc := NewDocument(nil)
		l := NewLoader(f, WithReloadParallelism(parallelism))

		a := doc.Attach(domain.FragmentRef{Source: "a.html"})
		doc.Attach(domain.FragmentRef{Source: "b.html"})
		broken := doc.Attach(domain.FragmentRef{Source: "c.html"})
		l.Load(context.Background(), doc, a.ID)

		if n := l.ReloadAll(context.Background(), doc); n != 2 {
			t.Fatalf("parallelism %d: expected 2 reloads, got %d", parallelism, n)
		}
		got, _ := doc.Element(broken.ID)
		if got.State != StateError || !strings.Contains(got.Content, "Reload failed") {
			t.Errorf("parallelism %d: expected reload error placeholder, got %+v", parallelism, got)
		}
	}
}

func TestFSFetcher(t *testing.T) {
	fsys := fstest.MapFS{"fragments/a.html": {Data: []byte("<p>a</p>")}}
	f := NewFSFetcher(fsys)

	body, err := f.Fetch(context.Background(), "/fragments/a.html?t=123")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if body != "<p>a</p>" {
		t.Errorf("unexpected body %q", body)
	}
	if _, err := f.Fetch(context.Background(), "../etc/passwd"); err == nil {
		t.Error("expected invalid path error")
	}
}

func TestHTTPFetcher_StatusHandling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.html" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	lenient, err := NewHTTPFetcher(srv.URL)
	if err != nil {
		t.Fatalf("NewHTTPFetcher failed: %v", err)
	}
	body, err := lenient.Fetch(context.Background(), "/missing.html")
	if err != nil {
		t.Fatalf("expected lenient fetch to succeed, got %v", err)
	}
	if !strings.Contains(body, "gone") {
		t.Errorf("expected error body injected, got %q", body)
	}

	strict, _ := NewHTTPFetcher(srv.URL, WithStrictStatus())
	if _, err := strict.Fetch(context.Background(), "/missing.html"); err == nil {
		t.Error("expected strict fetch to fail on 404")
	}
	if body, err := strict.Fetch(context.Background(), "/a.html"); err != nil || body != "ok" {
		t.Errorf("unexpected strict result %q, %v", body, err)
	}
}

func TestHTTPFetcher_UsesConfiguredClient(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f, err := NewHTTPFetcher(srv.URL, WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	if err != nil {
		t.Fatalf("NewHTTPFetcher failed: %v", err)
	}
	if _, err := f.Fetch(context.Background(), "/slow.html"); err == nil {
		t.Error("expected client timeout to fail the fetch")
	}
}

func TestCachedFetcher(t *testing.T) {
	f := newFakeFetcher(map[string]string{"a.html": "v1"})
	c := NewCachedFetcher(f, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if body, err := c.Fetch(ctx, "a.html"); err != nil || body != "v1" {
			t.Fatalf("unexpected fetch result %q, %v", body, err)
		}
	}
	if n := f.callCount("a.html"); n != 1 {
		t.Fatalf("expected one upstream fetch, got %d", n)
	}

	f.files["a.html"] = "v2"
	if body, _ := c.Fetch(ctx, "a.html?t=1"); body != "v2" {
		t.Fatalf("expected cache-busted fetch to bypass cache, got %q", body)
	}
	if body, _ := c.Fetch(ctx, "a.html"); body != "v2" {
		t.Errorf("expected plain entry refreshed, got %q", body)
	}
}

func TestStripCacheBust(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		busted bool
	}{
		{"a.css", "a.css", false},
		{"a.css?t=5", "a.css", true},
		{"a.css?v=2&t=5", "a.css?v=2", true},
		{"a.css?v=2", "a.css?v=2", false},
	}
	for _, tt := range tests {
		got, busted := stripCacheBust(tt.in)
		if got != tt.want || busted != tt.busted {
			t.Errorf("stripCacheBust(%q) = %q, %v; want %q, %v", tt.in, got, busted, tt.want, tt.busted)
		}
	}
}
