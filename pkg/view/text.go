package view

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// block-level elements that produce a line break in the text rendition
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "tr": true,
}

// HTMLToText reduces record rich-text HTML to plain terminal text. The
// content is user generated, so it is sanitized first and then stripped,
// keeping block structure as line breaks.
func HTMLToText(richHTML string) string {
	sanitized := bluemonday.UGCPolicy().Sanitize(richHTML)

	doc, err := html.Parse(strings.NewReader(sanitized))
	if err != nil {
		// sanitized input that still fails to parse is rendered as-is
		return strings.TrimSpace(sanitized)
	}

	b := &strings.Builder{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			b.WriteString("\n")
		}
	}
	walk(doc)

	return collapseBlankLines(b.String())
}

// collapseBlankLines trims trailing space and squeezes runs of blank
// lines down to one
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
