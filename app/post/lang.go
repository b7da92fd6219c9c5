package post

// Lang is a code block language recognized from a fence info string.
type Lang int

const (
	LangNone Lang = iota
	LangBash
	LangC
	LangCpp
	LangGo
	LangJavascript
	LangPython
	LangRust
	LangShell
)

var langNames = map[Lang]string{
	LangNone:       "none",
	LangBash:       "bash",
	LangC:          "c",
	LangCpp:        "cpp",
	LangGo:         "go",
	LangJavascript: "javascript",
	LangPython:     "python",
	LangRust:       "rust",
	LangShell:      "shell",
}

// ParseLang maps a fence tag to a Lang. Unrecognized tags map to LangNone.
func ParseLang(tag string) Lang {
	switch tag {
	case "bash":
		return LangBash
	case "c":
		return LangC
	case "cpp":
		return LangCpp
	case "go":
		return LangGo
	case "js":
		return LangJavascript
	case "python", "py":
		return LangPython
	case "rust", "rs":
		return LangRust
	case "sh":
		return LangShell
	default:
		return LangNone
	}
}

func (l Lang) String() string {
	if name, ok := langNames[l]; ok {
		return name
	}
	return "unknown"
}
