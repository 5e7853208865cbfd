package highlight

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// goMarkers are lexical hints that a theory block holds Go source.
var goMarkers = []string{
	"func ", "var ", "package ", "import ", "//", "const ",
	"if ", "for ", "map[", "make(", "fmt.", ":=",
}

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	commentSpace = regexp.MustCompile(`\s*//\s*`)
)

// LooksLikeGo reports whether text contains any Go marker.
func LooksLikeGo(text string) bool {
	for _, m := range goMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// WrapTheoryCode converts bare ".theory-code" blocks below the element with
// id sectionID that look like Go into <pre><code class="language-go"> blocks
// so they can be highlighted. An empty sectionID covers the whole fragment.
// Blocks that already contain a <pre> are left alone, and a fragment with
// nothing to wrap is returned unchanged.
func WrapTheoryCode(fragment, sectionID string) (string, error) {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}

	changed := false
	for _, n := range scope(nodes, sectionID) {
		walk(n, func(el *html.Node) bool {
			if !hasClass(el, "theory-code") {
				return true
			}
			if containsPre(el) {
				return false
			}
			content := strings.TrimSpace(textContent(el))
			if !LooksLikeGo(content) {
				return false
			}
			clean := spaceRun.ReplaceAllString(content, " ")
			clean = strings.TrimSpace(commentSpace.ReplaceAllString(clean, " // "))

			for child := el.FirstChild; child != nil; {
				next := child.NextSibling
				el.RemoveChild(child)
				child = next
			}
			code := &html.Node{
				Type:     html.ElementNode,
				Data:     "code",
				DataAtom: atom.Code,
				Attr:     []html.Attribute{{Key: "class", Val: "language-go"}},
			}
			code.AppendChild(&html.Node{Type: html.TextNode, Data: clean})
			pre := &html.Node{Type: html.ElementNode, Data: "pre", DataAtom: atom.Pre}
			pre.AppendChild(code)
			el.AppendChild(pre)
			changed = true
			return false
		})
	}

	if !changed {
		return fragment, nil
	}
	return render(nodes)
}

func containsPre(n *html.Node) bool {
	found := false
	walk(n, func(el *html.Node) bool {
		if el.DataAtom == atom.Pre {
			found = true
		}
		return !found
	})
	return found
}
