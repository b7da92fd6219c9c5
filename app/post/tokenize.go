package post

import (
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Token is one semantic piece of a post body: Code, Link or Text.
type Token interface {
	isToken()
}

type Code struct {
	Lang Lang
	Body string
}

// Link is an explicit markdown link or a bare URL. Label is empty for
// bare URLs.
type Link struct {
	Label string
	URL   string
}

type Text struct {
	Body string
}

func (Code) isToken() {}
func (Link) isToken() {}
func (Text) isToken() {}

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
	),
)

// Tokenize parses a markdown body into code, link and text tokens in
// source order. Structural markup is dropped.
func Tokenize(body string) []Token {
	source := []byte(body)
	doc := markdown.Parser().Parse(text.NewReader(source))

	t := &tokenizer{source: source}
	_ = ast.Walk(doc, t.visit)
	t.flush()

	return t.tokens
}

type tokenizer struct {
	source  []byte
	tokens  []Token
	pending strings.Builder
}

// visit collects leaf text into a pending run. The run is cut at block,
// emphasis and strikethrough boundaries so each styled span is judged on
// its own.
func (t *tokenizer) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.(type) {
	case *ast.Emphasis, *east.Strikethrough:
		t.flush()
	default:
		if n.Type() == ast.TypeBlock {
			t.flush()
		}
	}
	if !entering {
		return ast.WalkContinue, nil
	}

	switch node := n.(type) {
	case *ast.FencedCodeBlock:
		lang := LangNone
		if tag := node.Language(t.source); tag != nil {
			lang = ParseLang(string(tag))
		}
		t.tokens = append(t.tokens, Code{Lang: lang, Body: t.lines(node.Lines())})
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		t.tokens = append(t.tokens, Code{Lang: LangNone, Body: t.lines(node.Lines())})
		return ast.WalkSkipChildren, nil

	case *ast.CodeSpan:
		t.flush()
		t.tokens = append(t.tokens, Code{Lang: LangNone, Body: t.inlineText(node)})
		return ast.WalkSkipChildren, nil

	case *ast.Link:
		t.flush()
		t.tokens = append(t.tokens, Link{Label: t.inlineText(node), URL: string(node.Destination)})
		return ast.WalkSkipChildren, nil

	case *ast.AutoLink:
		t.flush()
		t.tokens = append(t.tokens, Link{URL: string(node.URL(t.source))})
		return ast.WalkSkipChildren, nil

	case *ast.Image, *ast.RawHTML, *ast.HTMLBlock:
		return ast.WalkSkipChildren, nil

	case *ast.Text:
		t.pending.Write(node.Segment.Value(t.source))
		if node.SoftLineBreak() || node.HardLineBreak() {
			t.flush()
		}

	case *ast.String:
		t.pending.Write(node.Value)
	}

	return ast.WalkContinue, nil
}

// flush turns the pending text run into a token. A run that is a single
// word parsing as an absolute URL becomes a bare Link.
func (t *tokenizer) flush() {
	run := t.pending.String()
	t.pending.Reset()

	trimmed := strings.TrimSpace(run)
	if trimmed == "" {
		return
	}

	if len(strings.Fields(trimmed)) == 1 && IsAbsoluteURL(trimmed) {
		t.tokens = append(t.tokens, Link{URL: trimmed})
		return
	}

	t.tokens = append(t.tokens, Text{Body: run})
}

func (t *tokenizer) lines(segments *text.Segments) string {
	lines := make([]string, 0, segments.Len())
	for i := 0; i < segments.Len(); i++ {
		segment := segments.At(i)
		line := string(segment.Value(t.source))
		line = strings.TrimRight(line, "\r\n")
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (t *tokenizer) inlineText(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := child.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(t.source))
			if c.SoftLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// IsAbsoluteURL reports whether s parses as a URL with a scheme and host
func IsAbsoluteURL(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}
