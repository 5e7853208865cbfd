package page

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ashureev/gomaps-tutor/internal/checker"
	"github.com/ashureev/gomaps-tutor/internal/domain"
	"github.com/ashureev/gomaps-tutor/internal/fragment"
	"github.com/ashureev/gomaps-tutor/internal/notify"
	"github.com/ashureev/gomaps-tutor/internal/quiz"
)

type fakeRecorder struct {
	mu       sync.Mutex
	attempts []domain.Attempt
}

func (f *fakeRecorder) RecordAttempt(_ context.Context, a *domain.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, *a)
	return nil
}

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attempts)
}

func testCatalog() *quiz.Catalog {
	return &quiz.Catalog{
		Components: []domain.FragmentRef{
			{Source: "fragments/maps.html", CSS: "styles/tasks.css"},
		},
		Quizzes: []domain.Quiz{{
			ID: "q1",
			Options: []domain.QuizOption{
				{ID: "a", Answer: "correct"},
				{ID: "b", Answer: "wrong"},
				{ID: "c", Answer: "wrong"},
			},
			Explanation: "because",
		}},
		MapQuizzes: []domain.MapQuiz{{
			ID:          "mq1",
			Options:     []domain.ChoiceOption{{Value: "nil"}, {Value: "empty"}},
			Expected:    "nil",
			Explanation: "An unmade map is nil.",
		}},
	}
}

func newTestPage(t *testing.T) (*Page, *fakeRecorder) {
	t.Helper()
	fsys := fstest.MapFS{
		"fragments/maps.html": {Data: []byte(`<section id="theory1"><div class="theory-code">m := make(map[string]int)</div></section>` +
			`<section id="theory2"><div class="theory-code">n := len(m)</div></section>`)},
		"styles/tasks.css":      {Data: []byte("body {}")},
		"fragments/slices.html": {Data: []byte("<p>slices</p>")},
	}
	rec := &fakeRecorder{}
	p := New(Key{UserID: "anon_1", SessionID: "tab-1"}, Deps{
		Loader:   fragment.NewLoader(fragment.NewFSFetcher(fsys)),
		Grader:   checker.Default(),
		Catalog:  testCatalog(),
		Notify:   notify.Options{ShowDelay: time.Hour, Display: time.Hour, FadeOut: time.Hour},
		Recorder: rec,
	})
	t.Cleanup(p.Close)
	return p, rec
}

func bannerMessages(p *Page) []string {
	var out []string
	for _, b := range p.Notifier().Banners() {
		out = append(out, b.Message)
	}
	return out
}

func TestBoot_LoadsCatalogComponents(t *testing.T) {
	p, _ := newTestPage(t)
	p.Boot(context.Background())
	p.Boot(context.Background())

	view := p.View()
	if len(view.Elements) != 1 || view.Elements[0].State != fragment.StateLoaded {
		t.Fatalf("unexpected elements: %+v", view.Elements)
	}
	if len(view.Links) != 1 {
		t.Errorf("expected one stylesheet link, got %+v", view.Links)
	}
	msgs := bannerMessages(p)
	if len(msgs) != 1 || msgs[0] != "Component fragments/maps.html loaded successfully!" {
		t.Errorf("expected one load notification, got %v", msgs)
	}
}

func TestBoot_IgnoresCanceledContext(t *testing.T) {
	p, _ := newTestPage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p.Boot(ctx)

	for _, el := range p.View().Elements {
		if el.State != fragment.StateLoaded {
			t.Fatalf("expected %s loaded despite canceled request, got %s", el.Ref.Source, el.State)
		}
	}
}

func TestLoadComponent_FailureNotifies(t *testing.T) {
	p, _ := newTestPage(t)
	el := p.LoadComponent(context.Background(), domain.FragmentRef{Source: "fragments/missing.html"})

	if el.Content != fragment.ErrorPlaceholder {
		t.Fatalf("expected error placeholder, got %q", el.Content)
	}
	banners := p.Notifier().Banners()
	if len(banners) != 1 || banners[0].Severity != notify.SeverityError {
		t.Errorf("expected one error banner, got %+v", banners)
	}
}

func TestReloadAll_ReportsCount(t *testing.T) {
	p, _ := newTestPage(t)
	p.Boot(context.Background())
	p.LoadComponent(context.Background(), domain.FragmentRef{Source: "fragments/slices.html"})

	if n := p.ReloadAll(context.Background()); n != 2 {
		t.Fatalf("expected 2 reloads, got %d", n)
	}
	msgs := bannerMessages(p)
	if msgs[len(msgs)-1] != "Reloaded components: 2" {
		t.Errorf("unexpected last notification %q", msgs[len(msgs)-1])
	}
}

func TestToggles(t *testing.T) {
	p, _ := newTestPage(t)

	if !p.ToggleTask("task1") || p.ToggleTask("task1") {
		t.Error("expected task toggle to open then close")
	}

	open, snap := p.ToggleHint("hint1")
	if !open || snap.Progress.HintsUsed != 1 {
		t.Fatalf("unexpected hint toggle: %v %+v", open, snap.Progress)
	}
	p.ToggleHint("hint1")
	_, snap = p.ToggleHint("hint1")
	if snap.Progress.HintsUsed != 2 {
		t.Errorf("expected 2 hints used, got %d", snap.Progress.HintsUsed)
	}

	p.ShowTab("progress")
	if !p.IsVisible("progress") {
		t.Error("expected tab visible")
	}
}

func TestToggleSolution_InflatesOnReopen(t *testing.T) {
	p, _ := newTestPage(t)

	p.ToggleSolution("sol1")
	p.ToggleSolution("sol1")
	_, snap := p.ToggleSolution("sol1")

	if snap.Progress.CompletedTasks != 2 {
		t.Fatalf("expected each opening to count, got %d", snap.Progress.CompletedTasks)
	}
	if snap.Bar.Completed != 2 {
		t.Errorf("expected bar recomputed, got %+v", snap.Bar)
	}
}

func TestToggleTheory_WrapsCode(t *testing.T) {
	p, _ := newTestPage(t)
	p.Boot(context.Background())

	if !p.ToggleTheory("theory1") {
		t.Fatal("expected theory opened")
	}
	el := p.View().Elements[0]
	if got := strings.Count(el.Content, `<code class="language-go">`); got != 1 {
		t.Errorf("expected only the opened section wrapped, got %d blocks in %q", got, el.Content)
	}
	if !strings.Contains(el.Content, `<div class="theory-code">n := len(m)</div>`) {
		t.Errorf("expected the closed section untouched, got %q", el.Content)
	}
}

func TestCheckQuiz_Scenario(t *testing.T) {
	p, rec := newTestPage(t)
	ctx := context.Background()

	if err := p.ReplaceSelection("q1", []string{"a", "b"}); err != nil {
		t.Fatalf("ReplaceSelection failed: %v", err)
	}
	out, snap, err := p.CheckQuiz(ctx, "q1")
	if err != nil {
		t.Fatalf("CheckQuiz failed: %v", err)
	}
	if out.Alert != quiz.AlertOnlyOne || out.Graded {
		t.Fatalf("expected only-one alert, got %+v", out)
	}
	if len(p.View().Checked["q1"]) != 0 {
		t.Error("expected both boxes cleared")
	}
	if _, ok := snap.Progress.QuizResults["q1"]; ok {
		t.Error("expected no result recorded")
	}

	if err := p.SelectOption("q1", "a", true); err != nil {
		t.Fatalf("SelectOption failed: %v", err)
	}
	out, snap, err = p.CheckQuiz(ctx, "q1")
	if err != nil {
		t.Fatalf("CheckQuiz failed: %v", err)
	}
	if !out.Correct || !snap.Progress.QuizResults["q1"] {
		t.Fatalf("expected correct result recorded, got %+v", out)
	}
	if snap.Bar.Completed != 1 {
		t.Errorf("expected progress to count the quiz, got %+v", snap.Bar)
	}
	if rec.count() != 1 {
		t.Errorf("expected one recorded attempt, got %d", rec.count())
	}
}

func TestCheckQuiz_NoSelection(t *testing.T) {
	p, rec := newTestPage(t)
	out, snap, err := p.CheckQuiz(context.Background(), "q1")
	if err != nil {
		t.Fatalf("CheckQuiz failed: %v", err)
	}
	if out.Alert != quiz.AlertChooseOne || len(snap.Progress.QuizResults) != 0 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if rec.count() != 0 {
		t.Error("expected no attempt recorded")
	}
}

func TestCheckQuiz_Unknown(t *testing.T) {
	p, _ := newTestPage(t)
	if _, _, err := p.CheckQuiz(context.Background(), "nope"); !errors.Is(err, quiz.ErrUnknownQuiz) {
		t.Fatalf("expected ErrUnknownQuiz, got %v", err)
	}
}

func TestCheckMapQuiz(t *testing.T) {
	p, _ := newTestPage(t)
	ctx := context.Background()

	out, snap, err := p.CheckMapQuiz(ctx, "mq1", "", "", "")
	if err != nil || out.Graded || out.Message != quiz.MsgChoiceMissing || snap.Progress.CompletedTasks != 0 {
		t.Fatalf("unexpected empty selection outcome: %+v %v", out, err)
	}

	out, snap, _ = p.CheckMapQuiz(ctx, "mq1", "empty", "", "")
	if out.Correct || snap.Progress.CompletedTasks != 0 {
		t.Fatalf("expected no penalty and no credit, got %+v", out)
	}

	out, snap, _ = p.CheckMapQuiz(ctx, "mq1", "nil", "", "")
	if !out.Correct || out.Message != "An unmade map is nil." || snap.Progress.CompletedTasks != 1 {
		t.Fatalf("unexpected success outcome: %+v", out)
	}
	if msgs := bannerMessages(p); len(msgs) != 1 || msgs[0] != quiz.MsgChoiceNotify {
		t.Errorf("expected one notification, got %v", msgs)
	}

	if _, _, err := p.CheckMapQuiz(ctx, "unknown", "x", "", ""); !errors.Is(err, quiz.ErrUnknownQuiz) {
		t.Errorf("expected ErrUnknownQuiz, got %v", err)
	}
	if out, _, err := p.CheckMapQuiz(ctx, "inline", "x", "x", "inline explanation"); err != nil || !out.Correct {
		t.Errorf("expected inline expected value to grade, got %+v %v", out, err)
	}
}

func TestCheckMapCode_Scenarios(t *testing.T) {
	p, rec := newTestPage(t)
	ctx := context.Background()

	res, snap := p.CheckMapCode(ctx, "mapCode1", "")
	if res.Message != checker.MsgEnterCode || snap.Progress.CompletedTasks != 0 {
		t.Fatalf("unexpected empty submission result: %+v", res)
	}
	if rec.count() != 0 {
		t.Error("expected empty submission not recorded")
	}

	res, snap = p.CheckMapCode(ctx, "mapCode1", "ages := make(map[string]int)")
	if !res.Correct || snap.Progress.CompletedTasks != 1 {
		t.Fatalf("expected success, got %+v", res)
	}
	if msgs := bannerMessages(p); len(msgs) != 1 || msgs[0] != NotifyCodeSolved {
		t.Errorf("expected success notification, got %v", msgs)
	}
	if rec.count() != 1 {
		t.Errorf("expected one attempt recorded, got %d", rec.count())
	}
}

func TestCheckDatabaseCode(t *testing.T) {
	p, _ := newTestPage(t)
	task, _ := checker.Default().DatabaseTask("delete")

	res, snap := p.CheckDatabaseCode(context.Background(), "dbTask6", "delete", task.Solution)
	if !res.Correct || snap.Progress.CompletedTasks != 1 {
		t.Fatalf("expected success, got %+v", res)
	}
	if !strings.Contains(res.SubmittedHTML, "delete(db.Users, id)") {
		t.Errorf("expected submitted code echoed, got %q", res.SubmittedHTML)
	}
}

func TestManager_OpenResetSweep(t *testing.T) {
	fsys := fstest.MapFS{}
	m := NewManager(Deps{
		Loader: fragment.NewLoader(fragment.NewFSFetcher(fsys)),
		Grader: checker.Default(),
		Notify: notify.Options{ShowDelay: time.Hour, Display: time.Hour, FadeOut: time.Hour},
	})
	ctx := context.Background()
	key := Key{UserID: "u1", SessionID: "tab-1"}

	p := m.Open(ctx, key)
	if m.Open(ctx, key) != p {
		t.Fatal("expected the same page for the same key")
	}
	p.ToggleSolution("s1")

	m.Open(ctx, Key{UserID: "u1", SessionID: "tab-2"})
	if m.Len() != 2 {
		t.Fatalf("expected 2 pages, got %d", m.Len())
	}

	if !m.Reset(key) {
		t.Fatal("expected reset to drop the page")
	}
	fresh := m.Open(ctx, key)
	if fresh.Progress().Progress.CompletedTasks != 0 {
		t.Error("expected fresh progress after reset")
	}

	m.now = func() time.Time { return time.Now().Add(time.Hour) }
	if dropped := m.Sweep(30 * time.Minute); dropped != 2 {
		t.Errorf("expected 2 idle pages dropped, got %d", dropped)
	}
	if m.Len() != 0 {
		t.Errorf("expected no pages left, got %d", m.Len())
	}
}
