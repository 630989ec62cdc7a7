package feed

import (
	"strings"

	"golang.org/x/net/html"
)

// stripMarkup flattens HTML or JATS-flavored XML embedded in an abstract
// (Crossref and Europe PMC ship these) down to plain text with collapsed
// whitespace. Plain strings pass through untouched apart from the collapse.
func stripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') {
		return normalizeSpace(s)
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return normalizeSpace(s)
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return normalizeSpace(sb.String())
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
