package page

import (
	"strings"

	"github.com/ashureev/gomaps-tutor/internal/fragment"
	"github.com/ashureev/gomaps-tutor/internal/highlight"
	"github.com/ashureev/gomaps-tutor/internal/progress"
)

// ToggleTask shows or hides a task body.
func (p *Page) ToggleTask(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flipLocked(id)
}

// ToggleHint shows or hides a hint. Every opening counts as a used hint.
func (p *Page) ToggleHint(id string) (bool, Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	open := p.flipLocked(id)
	if open {
		progress.UseHint(p.progress)
	}
	return open, p.snapshotLocked()
}

// ToggleSolution shows or hides a solution. Every opening counts as a
// completed task, including re-openings of the same solution.
func (p *Page) ToggleSolution(id string) (bool, Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	open := p.flipLocked(id)
	if open {
		progress.CompleteTask(p.progress)
	}
	return open, p.snapshotLocked()
}

// ToggleTheory shows or hides a theory section. Opening it wraps the bare Go
// code blocks of that section and highlights them.
func (p *Page) ToggleTheory(id string) bool {
	p.mu.Lock()
	open := p.flipLocked(id)
	p.mu.Unlock()

	if open {
		marker := `id="` + id + `"`
		p.doc.Transform(
			func(el fragment.Element) bool { return strings.Contains(el.Content, marker) },
			func(content string) (string, error) {
				wrapped, err := highlight.WrapTheoryCode(content, id)
				if err != nil {
					return "", err
				}
				return highlight.ApplyUnder(p.deps.Highlighter, wrapped, id), nil
			},
		)
	}
	return open
}

// ShowTab activates one tab; every other tab becomes inactive.
func (p *Page) ShowTab(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activeTab = name
}

// IsVisible reports whether a toggled element is shown.
func (p *Page) IsVisible(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible[id]
}

func (p *Page) flipLocked(id string) bool {
	open := !p.visible[id]
	p.visible[id] = open
	return open
}
