// Package page holds the server-side state of one learner page: its
// document, progress, toggles, quiz selections and notification board.
//
// A Page serializes its own mutations, so handlers observe the same
// single-writer behaviour a browser page has.
package page

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/gomaps-tutor/internal/checker"
	"github.com/ashureev/gomaps-tutor/internal/domain"
	"github.com/ashureev/gomaps-tutor/internal/events"
	"github.com/ashureev/gomaps-tutor/internal/fragment"
	"github.com/ashureev/gomaps-tutor/internal/highlight"
	"github.com/ashureev/gomaps-tutor/internal/notify"
	"github.com/ashureev/gomaps-tutor/internal/progress"
	"github.com/ashureev/gomaps-tutor/internal/quiz"
	"golang.org/x/sync/errgroup"
)

// AttemptRecorder persists graded attempts.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt *domain.Attempt) error
}

// Deps are the collaborators shared by every page.
type Deps struct {
	Loader      *fragment.Loader
	Grader      *checker.Grader
	Catalog     *quiz.Catalog
	Highlighter highlight.Highlighter
	Notify      notify.Options
	Recorder    AttemptRecorder
}

// Key identifies a page: one browser tab of one device.
type Key struct {
	UserID    string
	SessionID string
}

// Snapshot is the progress part of a page view.
type Snapshot struct {
	Progress *domain.Progress `json:"progress"`
	Bar      progress.Bar     `json:"bar"`
}

// View is a full read-only rendering of the page.
type View struct {
	Elements  []fragment.Element  `json:"elements"`
	Links     []fragment.Link     `json:"links"`
	Visible   map[string]bool     `json:"visible"`
	ActiveTab string              `json:"active_tab,omitempty"`
	Checked   map[string][]string `json:"checked"`
	Snapshot
	Banners []notify.Banner `json:"banners"`
}

// Page is the state of one learner page.
type Page struct {
	key      Key
	deps     Deps
	doc      *fragment.Document
	notifier *notify.Notifier
	bootOnce sync.Once

	mu        sync.Mutex
	progress  *domain.Progress
	visible   map[string]bool
	activeTab string
	selection *quiz.Selection
	lastSeen  time.Time
}

// New creates a page and registers its event handlers. Components from the
// catalog are attached but not loaded until Boot.
func New(key Key, deps Deps) *Page {
	p := &Page{
		key:       key,
		deps:      deps,
		doc:       fragment.NewDocument(events.NewBus()),
		notifier:  notify.New(deps.Notify),
		progress:  domain.NewProgress(),
		visible:   make(map[string]bool),
		selection: quiz.NewSelection(),
		lastSeen:  time.Now(),
	}
	p.registerHandlers()

	if deps.Catalog != nil {
		for _, ref := range deps.Catalog.Components {
			p.doc.Attach(ref)
		}
	}
	return p
}

func (p *Page) registerHandlers() {
	bus := p.doc.Bus()
	bus.On(events.ComponentLoaded, func(e events.Event) {
		if e.CSSFile != "" {
			slog.Info("Component loaded", "source", e.Source, "css", e.CSSFile, "user_id", p.key.UserID)
		} else {
			slog.Info("Component loaded", "source", e.Source, "user_id", p.key.UserID)
		}
		p.notifier.Show(fmt.Sprintf("Component %s loaded successfully!", e.Source), notify.SeveritySuccess)
	})
	bus.On(events.ComponentError, func(e events.Event) {
		p.notifier.Show(fmt.Sprintf("Failed to load %s: %v", e.Source, e.Err), notify.SeverityError)
	})
}

// Boot loads every attached component once. Later calls are no-ops. The
// loads outlive cancellation of ctx since the page is shared by every
// request of the session.
func (p *Page) Boot(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	p.bootOnce.Do(func() {
		var g errgroup.Group
		for _, el := range p.doc.Elements() {
			g.Go(func() error {
				p.deps.Loader.Load(ctx, p.doc, el.ID)
				return nil
			})
		}
		_ = g.Wait()
	})
}

// Key returns the page identity.
func (p *Page) Key() Key {
	return p.key
}

// Notifier returns the page notification board.
func (p *Page) Notifier() *notify.Notifier {
	return p.notifier
}

// Document returns the page document.
func (p *Page) Document() *fragment.Document {
	return p.doc
}

// Touch marks the page as active.
func (p *Page) Touch(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen = now
}

// LastSeen returns the last activity time.
func (p *Page) LastSeen() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

// Close stops the notification board.
func (p *Page) Close() {
	p.notifier.Close()
}

// LoadComponent attaches a new include element and loads it.
func (p *Page) LoadComponent(ctx context.Context, ref domain.FragmentRef) fragment.Element {
	el := p.doc.Attach(ref)
	p.deps.Loader.Load(ctx, p.doc, el.ID)
	got, _ := p.doc.Element(el.ID)
	return got
}

// ReloadAll reloads every component and reports the count of successful
// reloads on the notification board once all of them have finished.
func (p *Page) ReloadAll(ctx context.Context) int {
	n := p.deps.Loader.ReloadAll(ctx, p.doc)
	p.notifier.Show(fmt.Sprintf("Reloaded components: %d", n), notify.SeveritySuccess)
	return n
}

// Progress returns the current progress snapshot.
func (p *Page) Progress() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// View renders the whole page.
func (p *Page) View() View {
	p.mu.Lock()
	visible := make(map[string]bool, len(p.visible))
	for k, v := range p.visible {
		visible[k] = v
	}
	checked := make(map[string][]string)
	if p.deps.Catalog != nil {
		for _, q := range p.deps.Catalog.Quizzes {
			if ids := p.selection.Checked(q.ID); len(ids) > 0 {
				checked[q.ID] = ids
			}
		}
	}
	v := View{
		Visible:   visible,
		ActiveTab: p.activeTab,
		Checked:   checked,
		Snapshot:  p.snapshotLocked(),
	}
	p.mu.Unlock()

	v.Elements = p.doc.Elements()
	v.Links = p.doc.Links()
	v.Banners = p.notifier.Banners()
	return v
}

func (p *Page) snapshotLocked() Snapshot {
	return Snapshot{
		Progress: p.progress.Clone(),
		Bar:      progress.Recompute(p.progress),
	}
}

func (p *Page) record(ctx context.Context, kind domain.AttemptKind, target string, correct bool) {
	if p.deps.Recorder == nil {
		return
	}
	err := p.deps.Recorder.RecordAttempt(ctx, &domain.Attempt{
		UserID:    p.key.UserID,
		SessionID: p.key.SessionID,
		Kind:      kind,
		Target:    target,
		Correct:   correct,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Warn("Failed to record attempt", "error", err, "user_id", p.key.UserID, "kind", kind, "target", target)
	}
}
