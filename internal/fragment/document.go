package fragment

import (
	"sync"

	"github.com/ashureev/gomaps-tutor/internal/domain"
	"github.com/ashureev/gomaps-tutor/internal/events"
	"github.com/google/uuid"
)

// State is the load state of an include element.
type State string

// Element states. Content is only transformed in StateLoaded.
const (
	StatePending State = "pending"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateError   State = "error"
)

// Placeholders rendered into include elements.
const (
	ErrorPlaceholder   = `<div class="error">Failed to load component</div>`
	LoadingPlaceholder = `<div class="loading-spinner"></div>Reloading...`
)

// Element is an include element: a fragment reference and its current
// content. The reference never changes; reloads replace the content only.
type Element struct {
	ID      string             `json:"id"`
	Ref     domain.FragmentRef `json:"ref"`
	Content string             `json:"content"`
	State   State              `json:"state"`
}

// Link is a stylesheet link in the document head.
type Link struct {
	Href string `json:"href"`
}

// Document is the part of the page the loader touches: include elements and
// head stylesheet links. Events raised by elements bubble to the document bus.
type Document struct {
	bus *events.Bus

	mu       sync.Mutex
	elements []*Element
	links    []*Link
}

// NewDocument creates an empty document dispatching on bus.
func NewDocument(bus *events.Bus) *Document {
	if bus == nil {
		bus = events.NewBus()
	}
	return &Document{bus: bus}
}

// Bus returns the document event bus.
func (d *Document) Bus() *events.Bus {
	return d.bus
}

// Attach appends a new include element for ref.
func (d *Document) Attach(ref domain.FragmentRef) Element {
	el := &Element{
		ID:    uuid.NewString(),
		Ref:   ref,
		State: StatePending,
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elements = append(d.elements, el)
	return *el
}

// Element returns a snapshot of the element with the given id.
func (d *Document) Element(id string) (Element, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, el := range d.elements {
		if el.ID == id {
			return *el, true
		}
	}
	return Element{}, false
}

// Elements returns snapshots of all elements in document order.
func (d *Document) Elements() []Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Element, 0, len(d.elements))
	for _, el := range d.elements {
		out = append(out, *el)
	}
	return out
}

// Links returns the head stylesheet links in order.
func (d *Document) Links() []Link {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Link, 0, len(d.links))
	for _, l := range d.links {
		out = append(out, *l)
	}
	return out
}

// setContent replaces an element's content. The last call wins regardless
// of the order in which the fetches started.
func (d *Document) setContent(id, content string, state State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, el := range d.elements {
		if el.ID == id {
			el.Content = content
			el.State = state
			return
		}
	}
}

// addLinkIfMissing appends a link for href unless one with exactly that href
// exists. It reports whether a link was added.
func (d *Document) addLinkIfMissing(href string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, l := range d.links {
		if l.Href == href {
			return false
		}
	}
	d.links = append(d.links, &Link{Href: href})
	return true
}

// rewriteLink points the link for href (or a cache-busted variant of it) at
// newHref. It reports whether such a link exists.
func (d *Document) rewriteLink(href, newHref string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, l := range d.links {
		plain, _ := stripCacheBust(l.Href)
		if l.Href == href || plain == href {
			l.Href = newHref
			return true
		}
	}
	return false
}

// Transform rewrites the content of every loaded element for which match
// returns true. It returns the number of rewritten elements.
func (d *Document) Transform(match func(Element) bool, fn func(string) (string, error)) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, el := range d.elements {
		if el.State != StateLoaded || !match(*el) {
			continue
		}
		out, err := fn(el.Content)
		if err != nil {
			continue
		}
		el.Content = out
		n++
	}
	return n
}
