// Package events provides the typed page event model. Handlers are
// registered explicitly per event type and invoked synchronously in
// registration order.
package events

import (
	"sync"
)

// Type names a page event.
type Type string

const (
	// ComponentLoaded fires once per successful fragment load.
	ComponentLoaded Type = "component-loaded"
	// ComponentError fires when a fragment or its stylesheet fails to load.
	ComponentError Type = "component-error"
)

// Event is a bubbling page event. Target is the include element id that
// raised it; the bus itself plays the role of the document.
type Event struct {
	Type    Type   `json:"type"`
	Target  string `json:"target,omitempty"`
	Source  string `json:"source"`
	CSSFile string `json:"css_file,omitempty"`
	Err     error  `json:"-"`
}

// Handler reacts to an event.
type Handler func(Event)

// Bus dispatches events to registered handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Type][]Handler)}
}

// On registers h for events of type t.
func (b *Bus) On(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// Emit delivers e to every handler registered for its type.
func (b *Bus) Emit(e Event) {
	b.mu.RLock()
	hs := make([]Handler, len(b.handlers[e.Type]))
	copy(hs, b.handlers[e.Type])
	b.mu.RUnlock()

	for _, h := range hs {
		h(e)
	}
}
