package util

import "strings"

// SanitizeText strips control characters from extracted document text before
// it reaches Postgres or the analysis pipeline. PDF extraction in particular
// can emit NUL bytes, which Postgres text columns reject. Newlines and tabs
// survive because section splitting and the heading heuristic depend on them.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return r
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(cleaned)
}
