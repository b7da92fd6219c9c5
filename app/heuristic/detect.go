package heuristic

type state int

const (
	stateIdle state = iota
	stateSawDot
	stateSawMethodIdent
	stateSawIdent
	stateSawIdentColon
	stateSawIdentDoubleColon
	stateSawIdentBang
	stateFinal
	stateLimbo
)

type machine struct {
	state     state
	ident     string
	heuristic Heuristic
}

func (m *machine) finish(h Heuristic) {
	m.state = stateFinal
	m.heuristic = h
}

func (m *machine) move(s state, ident string) {
	m.state = s
	m.ident = ident
}

// munch feeds one token to the machine. Limbo swallows everything except a
// keyword, which finishes the machine from any state but Final.
func (m *machine) munch(t token) {
	if m.state == stateFinal {
		return
	}
	if t.kind == tokenIdent && IsKeyword(t.text) {
		m.finish(keyword(t.text))
		return
	}
	if m.state == stateLimbo {
		return
	}

	switch t.kind {
	case tokenGroup:
		switch {
		case t.delim == '{':
			m.finish(Heuristic{Kind: KindCurlyBracePair})
		case t.emptyParens() && m.state == stateSawIdent:
			m.finish(emptyFunction(m.ident))
		case t.emptyParens() && m.state == stateSawIdentBang:
			m.finish(emptyMacro(m.ident))
		case t.emptyParens() && m.state == stateSawMethodIdent:
			m.finish(emptyMethod(m.ident))
		default:
			m.move(stateLimbo, "")
		}

	case tokenIdent:
		switch {
		case m.state == stateSawIdentDoubleColon:
			m.finish(doubleColon(m.ident, t.text))
		case m.state == stateSawDot:
			m.move(stateSawMethodIdent, t.text)
		default:
			m.move(stateSawIdent, t.text)
		}

	case tokenPunct:
		switch {
		case m.state == stateSawIdent && t.isPunct('!') && t.adjacent && !t.joint:
			m.move(stateSawIdentBang, m.ident)
		case m.state == stateSawIdent && t.isPunct(':') && t.joint:
			m.move(stateSawIdentColon, m.ident)
		case m.state == stateSawIdentColon && t.isPunct(':') && !t.joint:
			m.move(stateSawIdentDoubleColon, m.ident)
		case m.state != stateSawIdentColon && t.isPunct('.') && !t.joint:
			m.move(stateSawDot, "")
		default:
			m.move(stateLimbo, "")
		}

	default:
		m.move(stateLimbo, "")
	}
}

// Detect parses text as a token tree and runs the state machine over it,
// descending into every bracketed group with a fresh machine. Text that
// does not parse yields no heuristic.
func Detect(text string) (Heuristic, bool) {
	stream, err := lex(text)
	if err != nil {
		return Heuristic{}, false
	}
	return detect(stream)
}

func detect(stream []token) (Heuristic, bool) {
	m := &machine{}

	for _, t := range stream {
		m.munch(t)
		if m.state == stateFinal {
			return m.heuristic, true
		}

		if t.kind == tokenGroup {
			if h, ok := detect(t.stream); ok {
				return h, true
			}
		}
	}

	return Heuristic{}, false
}
