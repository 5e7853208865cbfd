package highlight

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestApply_NilHighlighterIsNoop(t *testing.T) {
	in := `<pre><code class="language-go">x := 1</code></pre>`
	if got := Apply(nil, in); got != in {
		t.Fatalf("expected fragment unchanged, got %q", got)
	}
}

func TestChroma_HighlightsGoBlocks(t *testing.T) {
	h := NewChroma("github")
	in := `<p>intro</p><pre><code class="language-go">func main() {}</code></pre>`

	out, err := h.HighlightUnder(in, "")
	if err != nil {
		t.Fatalf("HighlightUnder failed: %v", err)
	}
	if !strings.Contains(out, "<p>intro</p>") {
		t.Errorf("expected surrounding markup preserved, got %q", out)
	}
	if !strings.Contains(out, `class="kd"`) && !strings.Contains(out, `class="kn"`) {
		t.Errorf("expected keyword spans in output, got %q", out)
	}
	if !strings.Contains(out, "main") {
		t.Errorf("expected code text preserved, got %q", out)
	}
}

func TestChroma_SkipsUntaggedCode(t *testing.T) {
	h := NewChroma("github")
	in := `<code>plain &lt;text&gt;</code>`

	out, err := h.HighlightUnder(in, "")
	if err != nil {
		t.Fatalf("HighlightUnder failed: %v", err)
	}
	if out != in {
		t.Errorf("expected untagged code untouched, got %q", out)
	}
}

func TestWrapTheoryCode(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantWrap bool
	}{
		{"go code", `<div class="theory-code">m := make(map[string]int)   // new map</div>`, true},
		{"prose", `<div class="theory-code">Maps are hash tables.</div>`, false},
		{"already wrapped", `<div class="theory-code"><pre>x := 1</pre></div>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := WrapTheoryCode(tt.in, "")
			if err != nil {
				t.Fatalf("WrapTheoryCode failed: %v", err)
			}
			wrapped := strings.Contains(out, `<code class="language-go">`)
			if wrapped != tt.wantWrap {
				t.Errorf("wrapped = %v, want %v (out %q)", wrapped, tt.wantWrap, out)
			}
		})
	}
}

func TestWrapTheoryCode_CollapsesWhitespace(t *testing.T) {
	out, err := WrapTheoryCode("<div class=\"theory-code\">\n  x := 1\n\n  y := 2//sum\n</div>", "")
	if err != nil {
		t.Fatalf("WrapTheoryCode failed: %v", err)
	}
	if !strings.Contains(out, "x := 1 y := 2 // sum") {
		t.Errorf("expected collapsed code, got %q", out)
	}
}

func TestChroma_CSSHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChroma("github").CSSHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/highlight.css", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".chroma") {
		t.Errorf("expected chroma classes in stylesheet, got %q", rec.Body.String())
	}
}

func TestChroma_LeavesMarkupWithoutCodeByteIdentical(t *testing.T) {
	h := NewChroma("github")
	in := `<label class="quiz-option"><input type="checkbox" data-quiz="q1" data-answer="correct"> yes</label><br>`

	out, err := h.HighlightUnder(in, "")
	if err != nil {
		t.Fatalf("HighlightUnder failed: %v", err)
	}
	if out != in {
		t.Errorf("expected fragment unchanged, got %q", out)
	}
}

func TestScopedToSection(t *testing.T) {
	in := `<div id="open"><div class="theory-code">x := 1</div></div>` +
		`<div id="closed"><div class="theory-code">y := 2</div></div>`

	wrapped, err := WrapTheoryCode(in, "open")
	if err != nil {
		t.Fatalf("WrapTheoryCode failed: %v", err)
	}
	if got := strings.Count(wrapped, `<code class="language-go">`); got != 1 {
		t.Fatalf("expected only the open section wrapped, got %d blocks in %q", got, wrapped)
	}
	if !strings.Contains(wrapped, `<div class="theory-code">y := 2</div>`) {
		t.Errorf("expected closed section untouched, got %q", wrapped)
	}

	closedCode := `<div id="closed"><pre><code class="language-go">y := 2</code></pre></div>`
	out, err := NewChroma("github").HighlightUnder(wrapped+closedCode, "open")
	if err != nil {
		t.Fatalf("HighlightUnder failed: %v", err)
	}
	if !strings.HasSuffix(out, closedCode) {
		t.Errorf("expected code outside the root untouched, got %q", out)
	}
	if open := strings.TrimSuffix(out, closedCode); !strings.Contains(open, "<span") {
		t.Errorf("expected the open section highlighted, got %q", out)
	}
}

func TestScopedToMissingSection(t *testing.T) {
	in := `<div class="theory-code">x := 1</div>`
	out, err := WrapTheoryCode(in, "absent")
	if err != nil {
		t.Fatalf("WrapTheoryCode failed: %v", err)
	}
	if out != in {
		t.Errorf("expected fragment unchanged, got %q", out)
	}
}
