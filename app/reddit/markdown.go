package reddit

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// htmlToMarkdown renders the rendered-post HTML of a feed entry back into
// the markdown subset the tokenizer understands.
func htmlToMarkdown(sel *goquery.Selection) string {
	var b strings.Builder
	renderChildren(&b, sel)
	return strings.TrimSpace(collapseBlankLines(b.String()))
}

func renderChildren(b *strings.Builder, sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		render(b, child)
	})
}

func render(b *strings.Builder, sel *goquery.Selection) {
	node := sel.Get(0)

	switch node.Type {
	case html.TextNode:
		b.WriteString(node.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	switch node.Data {
	case "pre":
		b.WriteString("\n\n```\n")
		b.WriteString(strings.TrimRight(sel.Text(), "\n"))
		b.WriteString("\n```\n\n")

	case "code":
		fmt.Fprintf(b, "`%s`", sel.Text())

	case "a":
		href, _ := sel.Attr("href")
		label := strings.TrimSpace(sel.Text())
		if label == "" || label == href {
			b.WriteString(href)
		} else {
			fmt.Fprintf(b, "[%s](%s)", label, href)
		}

	case "p", "div", "table", "ul", "ol":
		b.WriteString("\n\n")
		renderChildren(b, sel)
		b.WriteString("\n\n")

	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(node.Data[1] - '0')
		fmt.Fprintf(b, "\n\n%s %s\n\n", strings.Repeat("#", level), strings.TrimSpace(sel.Text()))

	case "li":
		b.WriteString("\n- ")
		renderChildren(b, sel)

	case "blockquote":
		var inner strings.Builder
		renderChildren(&inner, sel)
		b.WriteString("\n\n")
		for _, line := range strings.Split(strings.TrimSpace(inner.String()), "\n") {
			b.WriteString("> " + line + "\n")
		}
		b.WriteString("\n")

	case "br":
		b.WriteString("\n")

	case "hr":
		b.WriteString("\n\n---\n\n")

	case "img", "script", "style":

	default:
		renderChildren(b, sel)
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return strings.Join(out, "\n")
}
