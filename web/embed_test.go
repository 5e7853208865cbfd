package web

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashureev/gomaps-tutor/internal/checker"
	"github.com/ashureev/gomaps-tutor/internal/quiz"
)

func TestEmbeddedCatalog(t *testing.T) {
	fsys := ContentFS()
	f, err := fsys.Open(CatalogFile)
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	defer f.Close()

	catalog, err := quiz.LoadCatalog(f)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if len(catalog.Quizzes) == 0 || len(catalog.MapQuizzes) == 0 {
		t.Fatal("expected quizzes in the embedded catalog")
	}
	for _, ref := range catalog.Components {
		if _, err := fs.Stat(fsys, ref.Source); err != nil {
			t.Errorf("component %s missing: %v", ref.Source, err)
		}
		if ref.CSS != "" {
			if _, err := fs.Stat(fsys, ref.CSS); err != nil {
				t.Errorf("stylesheet %s missing: %v", ref.CSS, err)
			}
		}
	}
}

func TestEmbeddedFragmentsReferenceKnownTasks(t *testing.T) {
	grader := checker.Default()
	data, err := fs.ReadFile(ContentFS(), "fragments/basics.html")
	if err != nil {
		t.Fatalf("read fragment: %v", err)
	}
	for _, id := range []string{"mapCode1", "mapCode2"} {
		if !strings.Contains(string(data), id) {
			t.Errorf("fragment does not mention %s", id)
		}
		if _, ok := grader.CodeTask(id); !ok {
			t.Errorf("task %s has no checker", id)
		}
	}
}

func TestContentHandler(t *testing.T) {
	h := ContentHandler(ContentFS())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/styles/tasks.css", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected stylesheet served, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog.yaml", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected catalog hidden, got %d", rec.Code)
	}
}

func TestSPAHandler_FallsBackToIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	SPAHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/some/route", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Go Maps Tutor") {
		t.Errorf("expected index.html, got %d", rec.Code)
	}
}
