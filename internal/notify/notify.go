// Package notify implements transient on-page banners.
//
// A banner is appended to the board, becomes visible after a short delay so a
// CSS transition can apply, hides after the display duration and is removed
// once the fade-out finishes. Calls are independent: there is no queue and no
// de-duplication, so concurrent calls produce overlapping banners.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity tags a banner.
type Severity string

// Banner severities. The page styles each one differently.
const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Phase is a step of the banner lifecycle.
type Phase string

// Lifecycle phases in the order a banner passes through them.
const (
	PhaseAppended Phase = "appended"
	PhaseShown    Phase = "shown"
	PhaseHidden   Phase = "hidden"
	PhaseRemoved  Phase = "removed"
)

// Banner is one notification on the board.
type Banner struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Visible   bool      `json:"visible"`
	CreatedAt time.Time `json:"created_at"`
}

// Update is published to subscribers on every lifecycle step.
type Update struct {
	Phase  Phase  `json:"phase"`
	Banner Banner `json:"banner"`
}

// Options controls banner timing.
type Options struct {
	ShowDelay time.Duration
	Display   time.Duration
	FadeOut   time.Duration
}

// DefaultOptions mirrors the page timings: visible after 100ms, hidden after
// 3s, removed 300ms later.
func DefaultOptions() Options {
	return Options{
		ShowDelay: 100 * time.Millisecond,
		Display:   3 * time.Second,
		FadeOut:   300 * time.Millisecond,
	}
}

// Notifier owns the banner board of one page.
type Notifier struct {
	opts Options

	mu      sync.Mutex
	banners []*Banner
	timers  map[string][]*time.Timer
	subs    map[int]chan Update
	nextSub int
	closed  bool
}

// New creates a notifier with the given timings.
func New(opts Options) *Notifier {
	return &Notifier{
		opts:   opts,
		timers: make(map[string][]*time.Timer),
		subs:   make(map[int]chan Update),
	}
}

// Show appends a banner and schedules its lifecycle. An empty severity
// defaults to success.
func (n *Notifier) Show(message string, severity Severity) Banner {
	if severity == "" {
		severity = SeveritySuccess
	}
	b := &Banner{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return *b
	}

	n.banners = append(n.banners, b)
	n.publishLocked(PhaseAppended, b)

	n.timers[b.ID] = []*time.Timer{
		time.AfterFunc(n.opts.ShowDelay, func() { n.setVisible(b.ID, true, PhaseShown) }),
		time.AfterFunc(n.opts.Display, func() { n.setVisible(b.ID, false, PhaseHidden) }),
		time.AfterFunc(n.opts.Display+n.opts.FadeOut, func() { n.remove(b.ID) }),
	}
	return *b
}

// Banners returns a snapshot of the board in insertion order.
func (n *Notifier) Banners() []Banner {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Banner, 0, len(n.banners))
	for _, b := range n.banners {
		out = append(out, *b)
	}
	return out
}

// Subscribe registers a listener for lifecycle updates. The returned cancel
// function unregisters it and closes the channel. Slow subscribers miss
// updates rather than block the board.
func (n *Notifier) Subscribe(buffer int) (<-chan Update, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Update, buffer)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := n.nextSub
	n.nextSub++
	n.subs[id] = ch
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if sub, ok := n.subs[id]; ok {
				delete(n.subs, id)
				close(sub)
			}
		})
	}
}

// Close stops pending timers and closes every subscription.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for id, timers := range n.timers {
		for _, t := range timers {
			t.Stop()
		}
		delete(n.timers, id)
	}
	for id, ch := range n.subs {
		close(ch)
		delete(n.subs, id)
	}
}

func (n *Notifier) setVisible(id string, visible bool, phase Phase) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, b := range n.banners {
		if b.ID == id {
			b.Visible = visible
			n.publishLocked(phase, b)
			return
		}
	}
}

// pending reports how many banners still have lifecycle timers scheduled.
func (n *Notifier) pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.timers)
}

func (n *Notifier) remove(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.timers, id)
	for i, b := range n.banners {
		if b.ID == id {
			n.banners = append(n.banners[:i], n.banners[i+1:]...)
			n.publishLocked(PhaseRemoved, b)
			return
		}
	}
}

func (n *Notifier) publishLocked(phase Phase, b *Banner) {
	u := Update{Phase: phase, Banner: *b}
	for id, ch := range n.subs {
		select {
		case ch <- u:
		default:
			slog.Warn("Notification subscriber is slow, dropping update", "subscriber", id, "banner_id", b.ID, "phase", phase)
		}
	}
}
