package post

// Truncate shortens s to at most n runes, ending in "..." when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	keep := max(n-3, 0)
	return string(runes[:keep]) + "..."
}
