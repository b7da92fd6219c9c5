package heuristic

import (
	"errors"
	"fmt"
	"strings"
	"text/scanner"
	"unicode"
)

type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenPunct
	tokenLiteral
	tokenGroup
)

// token is one node of a token tree. Groups own the tokens between their
// delimiters.
type token struct {
	kind tokenKind
	text string

	// punct only: joint means the next rune is punctuation with no gap,
	// adjacent means there was no gap before it.
	joint    bool
	adjacent bool

	delim  rune
	stream []token
}

func (t token) isPunct(ch rune) bool {
	return t.kind == tokenPunct && t.text == string(ch)
}

func (t token) emptyParens() bool {
	return t.kind == tokenGroup && t.delim == '(' && len(t.stream) == 0
}

var errUnbalanced = errors.New("unbalanced delimiters")

const punctuation = "=<>!~+-*/%^&|@.,;:#$?"

var closers = map[rune]rune{'(': ')', '[': ']', '{': '}'}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentRune(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch)
}

// scanString consumes a double-quoted literal after its opening quote.
// Escapes are skipped without being validated.
func scanString(s *scanner.Scanner) error {
	for {
		switch s.Next() {
		case scanner.EOF:
			return errors.New("unterminated string literal")
		case '\\':
			if s.Next() == scanner.EOF {
				return errors.New("unterminated string literal")
			}
		case '"':
			return nil
		}
	}
}

// scanQuote consumes what follows a single quote. It reports whether the
// quote opened a lifetime, in which case the label is returned.
func scanQuote(s *scanner.Scanner) (lifetime bool, label string, err error) {
	first := s.Peek()
	switch {
	case first == scanner.EOF || first == '\n':
		return false, "", errors.New("unterminated char literal")

	case first == '\\':
		s.Next()
		s.Next()
		for {
			switch s.Next() {
			case '\'':
				return false, "", nil
			case scanner.EOF, '\n':
				return false, "", errors.New("unterminated char literal")
			}
		}
	}

	s.Next()
	if s.Peek() == '\'' {
		s.Next()
		return false, "", nil
	}
	if !isIdentStart(first) {
		return false, "", errors.New("unterminated char literal")
	}

	var b strings.Builder
	b.WriteRune(first)
	for isIdentRune(s.Peek()) {
		b.WriteRune(s.Next())
	}
	return true, b.String(), nil
}

// lex parses text into a token tree. It fails on anything that is not a
// plausible expression token: unterminated literals, stray characters and
// unbalanced delimiters. Quoted literals are scanned leniently so that any
// escape is accepted, and a quote followed by an identifier with no closing
// quote is a lifetime: a joint quote punct followed by the identifier.
func lex(text string) ([]token, error) {
	var s scanner.Scanner
	s.Init(strings.NewReader(text))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanComments | scanner.SkipComments
	s.Whitespace = scanner.GoWhitespace

	var scanErr string
	s.Error = func(_ *scanner.Scanner, msg string) {
		if scanErr == "" {
			scanErr = msg
		}
	}

	type frame struct {
		delim  rune
		stream []token
	}
	stack := []frame{{}}
	prevEnd := -1

	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		if scanErr != "" {
			break
		}

		start := s.Position.Offset
		adjacent := start == prevEnd
		prevEnd = s.Pos().Offset

		top := &stack[len(stack)-1]

		switch tok {
		case scanner.Ident:
			top.stream = append(top.stream, token{kind: tokenIdent, text: s.TokenText()})

		case scanner.Int, scanner.Float:
			top.stream = append(top.stream, token{kind: tokenLiteral, text: s.TokenText()})

		case '"':
			if err := scanString(&s); err != nil {
				return nil, err
			}
			prevEnd = s.Pos().Offset
			top.stream = append(top.stream, token{kind: tokenLiteral, text: text[start:prevEnd]})

		case '\'':
			lifetime, label, err := scanQuote(&s)
			if err != nil {
				return nil, err
			}
			prevEnd = s.Pos().Offset
			if !lifetime {
				top.stream = append(top.stream, token{kind: tokenLiteral, text: text[start:prevEnd]})
				break
			}
			top.stream = append(top.stream,
				token{kind: tokenPunct, text: "'", joint: true, adjacent: adjacent},
				token{kind: tokenIdent, text: label})

		case '(', '[', '{':
			stack = append(stack, frame{delim: tok})

		case ')', ']', '}':
			if len(stack) == 1 || closers[top.delim] != tok {
				return nil, errUnbalanced
			}
			group := token{kind: tokenGroup, delim: top.delim, stream: top.stream}
			stack = stack[:len(stack)-1]
			parent := &stack[len(stack)-1]
			parent.stream = append(parent.stream, group)

		default:
			if !strings.ContainsRune(punctuation, tok) {
				return nil, fmt.Errorf("unexpected character %q at offset %d", tok, start)
			}
			top.stream = append(top.stream, token{
				kind:     tokenPunct,
				text:     string(tok),
				joint:    strings.ContainsRune(punctuation, s.Peek()),
				adjacent: adjacent,
			})
		}
	}

	if scanErr != "" {
		return nil, fmt.Errorf("failed to scan: %s", scanErr)
	}
	if len(stack) != 1 {
		return nil, errUnbalanced
	}

	return stack[0].stream, nil
}
