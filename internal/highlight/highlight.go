// Package highlight applies Go syntax highlighting to HTML fragments.
//
// Highlighting is optional: a nil Highlighter is a valid value everywhere in
// this module and leaves content untouched.
package highlight

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const languageClassPrefix = "language-"

// Highlighter rewrites <code class="language-*"> blocks found in an HTML
// fragment. A non-empty rootID limits the rewrite to the element with that
// id. Fragments without a matching block are returned unchanged.
type Highlighter interface {
	HighlightUnder(fragment, rootID string) (string, error)
}

// Apply runs h over the whole fragment when h is set. Errors leave the
// fragment as is.
func Apply(h Highlighter, fragment string) string {
	return ApplyUnder(h, fragment, "")
}

// ApplyUnder is Apply limited to the element with id rootID.
func ApplyUnder(h Highlighter, fragment, rootID string) string {
	if h == nil {
		return fragment
	}
	out, err := h.HighlightUnder(fragment, rootID)
	if err != nil {
		return fragment
	}
	return out
}

// Chroma highlights code blocks with chroma using CSS classes.
type Chroma struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewChroma creates a highlighter for the named chroma style. Unknown styles
// fall back to chroma's default.
func NewChroma(styleName string) *Chroma {
	return &Chroma{
		style: styles.Get(styleName),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
		),
	}
}

// WriteCSS writes the stylesheet for the highlighter's classes.
func (c *Chroma) WriteCSS(w io.Writer) error {
	return c.formatter.WriteCSS(w, c.style)
}

// CSSHandler serves the highlighter stylesheet.
func (c *Chroma) CSSHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		if err := c.WriteCSS(w); err != nil {
			http.Error(w, "failed to render stylesheet", http.StatusInternalServerError)
		}
	})
}

// HighlightUnder highlights the language-tagged code blocks of fragment, or
// only those below the element with id rootID when it is set.
func (c *Chroma) HighlightUnder(fragment, rootID string) (string, error) {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}

	changed := false
	for _, n := range scope(nodes, rootID) {
		walk(n, func(el *html.Node) bool {
			if el.DataAtom != atom.Code {
				return true
			}
			lang := language(el)
			if lang == "" {
				return false
			}
			lexer := lexers.Get(lang)
			if lexer == nil {
				return false
			}
			if err := c.replaceWithTokens(el, lexer); err == nil {
				changed = true
			}
			return false
		})
	}

	if !changed {
		return fragment, nil
	}
	return render(nodes)
}

func (c *Chroma) replaceWithTokens(el *html.Node, lexer chroma.Lexer) error {
	iter, err := lexer.Tokenise(nil, textContent(el))
	if err != nil {
		return fmt.Errorf("tokenise: %w", err)
	}
	var buf bytes.Buffer
	if err := c.formatter.Format(&buf, c.style, iter); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	for child := el.FirstChild; child != nil; {
		next := child.NextSibling
		el.RemoveChild(child)
		child = next
	}
	el.AppendChild(&html.Node{Type: html.RawNode, Data: buf.String()})
	return nil
}

func language(n *html.Node) string {
	for _, cls := range strings.Fields(attr(n, "class")) {
		if strings.HasPrefix(cls, languageClassPrefix) {
			return strings.TrimPrefix(cls, languageClassPrefix)
		}
	}
	return ""
}

func parseFragment(fragment string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	return nodes, nil
}

func render(nodes []*html.Node) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("render fragment: %w", err)
		}
	}
	return buf.String(), nil
}

// scope returns the subtree rooted at the element with id rootID, or nodes
// itself when rootID is empty. A missing root yields nothing.
func scope(nodes []*html.Node, rootID string) []*html.Node {
	if rootID == "" {
		return nodes
	}
	var root *html.Node
	for _, n := range nodes {
		walk(n, func(el *html.Node) bool {
			if root != nil {
				return false
			}
			if attr(el, "id") == rootID {
				root = el
				return false
			}
			return true
		})
	}
	if root == nil {
		return nil
	}
	return []*html.Node{root}
}

// walk visits n and its descendants depth first. When visit returns false
// the children of that node are skipped.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if n.Type == html.ElementNode && !visit(n) {
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child, visit)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, cls := range strings.Fields(attr(n, "class")) {
		if cls == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		switch n.Type {
		case html.TextNode, html.RawNode:
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)
	return sb.String()
}
