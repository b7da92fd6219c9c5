// Package heuristic guesses whether a short text fragment is Rust source
// code by looking for syntactic fingerprints that rarely show up in prose.
package heuristic

import "fmt"

type Kind int

const (
	KindKeyword Kind = iota
	KindCurlyBracePair
	KindDoubleColon
	KindEmptyFunction
	KindEmptyMethod
	KindEmptyFunctionlikeMacro
)

var kindNames = map[Kind]string{
	KindKeyword:                "Keyword",
	KindCurlyBracePair:         "CurlyBracePair",
	KindDoubleColon:            "DoubleColon",
	KindEmptyFunction:          "EmptyFunction",
	KindEmptyMethod:            "EmptyMethod",
	KindEmptyFunctionlikeMacro: "EmptyFunctionlikeMacro",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Heuristic is the evidence that matched. Snippet is the matched keyword
// or the reconstructed call/path shape, e.g. "a::b", "f()", ".m()", "m!()".
type Heuristic struct {
	Kind    Kind
	Snippet string
}

func (h Heuristic) String() string {
	if h.Snippet == "" {
		return h.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", h.Kind, h.Snippet)
}

func keyword(word string) Heuristic {
	return Heuristic{Kind: KindKeyword, Snippet: word}
}

func doubleColon(left, right string) Heuristic {
	return Heuristic{Kind: KindDoubleColon, Snippet: left + "::" + right}
}

func emptyFunction(ident string) Heuristic {
	return Heuristic{Kind: KindEmptyFunction, Snippet: ident + "()"}
}

func emptyMethod(ident string) Heuristic {
	return Heuristic{Kind: KindEmptyMethod, Snippet: "." + ident + "()"}
}

func emptyMacro(ident string) Heuristic {
	return Heuristic{Kind: KindEmptyFunctionlikeMacro, Snippet: ident + "!()"}
}

// keywords are identifiers that are unlikely to appear in posts about the
// game of the same name.
var keywords = map[string]struct{}{
	"BTreeMap":  {},
	"derive":    {},
	"enum":      {},
	"Eq":        {},
	"f32":       {},
	"f64":       {},
	"fn":        {},
	"HashMap":   {},
	"i8":        {},
	"i16":       {},
	"i32":       {},
	"i64":       {},
	"i128":      {},
	"impl":      {},
	"PartialEq": {},
	"println":   {},
	"RwLock":    {},
	"Self":      {},
	"u8":        {},
	"u16":       {},
	"u32":       {},
	"u64":       {},
	"u128":      {},
	"Vec":       {},
	"vec":       {},
}

func IsKeyword(ident string) bool {
	_, ok := keywords[ident]
	return ok
}
