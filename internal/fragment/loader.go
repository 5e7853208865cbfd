// Package fragment loads HTML fragments into include elements.
package fragment

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ashureev/gomaps-tutor/internal/events"
	"github.com/ashureev/gomaps-tutor/internal/highlight"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// defaultReloadParallelism bounds concurrent fetches during ReloadAll.
const defaultReloadParallelism = 8

// Loader fetches fragments and stylesheets into documents. A Loader is
// shared by every page; per-page state lives in the Document.
type Loader struct {
	fetch       Fetcher
	highlighter highlight.Highlighter
	now         func() time.Time
	parallelism int
}

// Option configures a Loader.
type Option func(*Loader)

// WithHighlighter enables syntax highlighting of loaded content.
func WithHighlighter(h highlight.Highlighter) Option {
	return func(l *Loader) { l.highlighter = h }
}

// WithClock overrides the clock used for cache-busting parameters.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// WithReloadParallelism bounds concurrent reloads.
func WithReloadParallelism(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.parallelism = n
		}
	}
}

// NewLoader creates a loader over f.
func NewLoader(f Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetch:       f,
		now:         time.Now,
		parallelism: defaultReloadParallelism,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fills the element with its fragment. If the element names a
// stylesheet that the document does not link yet, the link is added and the
// stylesheet must load before the fragment is shown. Failures are logged and
// rendered as ErrorPlaceholder; they are never returned. On success exactly
// one ComponentLoaded event is emitted.
func (l *Loader) Load(ctx context.Context, doc *Document, elementID string) {
	el, ok := doc.Element(elementID)
	if !ok {
		slog.Warn("Include element not found", "element_id", elementID)
		return
	}
	doc.setContent(el.ID, el.Content, StateLoading)

	content, err := l.loadContent(ctx, doc, el)
	if err != nil {
		slog.Error("Failed to load component", "source", el.Ref.Source, "css", el.Ref.CSS, "error", err)
		doc.setContent(el.ID, ErrorPlaceholder, StateError)
		doc.Bus().Emit(events.Event{
			Type:    events.ComponentError,
			Target:  el.ID,
			Source:  el.Ref.Source,
			CSSFile: el.Ref.CSS,
			Err:     err,
		})
		return
	}

	doc.setContent(el.ID, highlight.Apply(l.highlighter, content), StateLoaded)
	doc.Bus().Emit(events.Event{
		Type:    events.ComponentLoaded,
		Target:  el.ID,
		Source:  el.Ref.Source,
		CSSFile: el.Ref.CSS,
	})
}

func (l *Loader) loadContent(ctx context.Context, doc *Document, el Element) (string, error) {
	if el.Ref.Source == "" {
		return "", errNoSource
	}
	content, err := l.fetch.Fetch(ctx, el.Ref.Source)
	if err != nil {
		return "", err
	}
	if el.Ref.CSS != "" {
		if err := l.loadCSS(ctx, doc, el.Ref.CSS); err != nil {
			return "", err
		}
	}
	return content, nil
}

// loadCSS links href unless an identical link exists and waits for it to
// load. An existing link counts as loaded.
func (l *Loader) loadCSS(ctx context.Context, doc *Document, href string) error {
	if !doc.addLinkIfMissing(href) {
		return nil
	}
	if _, err := l.fetch.Fetch(ctx, href); err != nil {
		return fmt.Errorf("load stylesheet %s: %w", href, err)
	}
	return nil
}

// Reload re-fetches the element's source with a cache-busting parameter and
// points its stylesheet link at a cache-busted URL. No event is emitted.
func (l *Loader) Reload(ctx context.Context, doc *Document, elementID string) error {
	el, ok := doc.Element(elementID)
	if !ok {
		return fmt.Errorf("include element %s not found", elementID)
	}
	if el.Ref.Source == "" {
		return errNoSource
	}

	doc.setContent(el.ID, LoadingPlaceholder, StateLoading)

	now := l.now()
	content, err := l.fetch.Fetch(ctx, cacheBust(el.Ref.Source, now))
	if err != nil {
		doc.setContent(el.ID, fmt.Sprintf(`<div class="error">Reload failed: %s</div>`, html.EscapeString(err.Error())), StateError)
		return fmt.Errorf("reload %s: %w", el.Ref.Source, err)
	}
	doc.setContent(el.ID, highlight.Apply(l.highlighter, content), StateLoaded)

	if el.Ref.CSS != "" {
		doc.rewriteLink(el.Ref.CSS, cacheBust(el.Ref.CSS, now))
	}
	return nil
}

// ReloadAll reloads every element concurrently and returns how many
// succeeded. Failures are logged per element and do not stop the others.
func (l *Loader) ReloadAll(ctx context.Context, doc *Document) int {
	var reloaded atomic.Int64
	var g errgroup.Group
	g.SetLimit(l.parallelism)

	for _, el := range doc.Elements() {
		g.Go(func() error {
			if err := l.Reload(ctx, doc, el.ID); err != nil {
				slog.Warn("Component reload failed", "source", el.Ref.Source, "error", err)
				return nil
			}
			reloaded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(reloaded.Load())
}
