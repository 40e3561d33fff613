package providers

import (
	"context"
	"regexp"
	"strings"
	"unicode"
)

var wordRe = regexp.MustCompile(`[A-Za-z][A-Za-z'-]*`)

// HeuristicConceptSource is the in-process noun-phrase extractor used when no
// external NER service is configured but degraded frequency scoring is not
// wanted. It proposes capitalized runs as entities and repeated longer words
// as generic terms.
type HeuristicConceptSource struct {
	maxRunWords int
}

func NewHeuristicConceptSource() *HeuristicConceptSource {
	return &HeuristicConceptSource{maxRunWords: 4}
}

func (h *HeuristicConceptSource) Candidates(ctx context.Context, text string) ([]Candidate, error) {
	_ = ctx
	words := wordRe.FindAllString(text, -1)

	seen := map[string]struct{}{}
	out := make([]Candidate, 0, 32)
	add := func(term, category string) {
		key := strings.ToLower(term)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, Candidate{Term: term, Category: category})
	}

	// Capitalized runs ("Krebs Cycle", "Mitochondria") read as entities.
	run := make([]string, 0, h.maxRunWords)
	flush := func() {
		if len(run) >= 1 && len(run) <= h.maxRunWords {
			add(strings.Join(run, " "), "ENTITY")
		}
		run = run[:0]
	}
	for i, w := range words {
		if isCapitalized(w) && len(w) > 1 {
			// A capitalized word at position 0 of the text is likely just
			// sentence case; keep it only when the run continues.
			if i == 0 && len(run) == 0 {
				run = append(run, w)
				continue
			}
			run = append(run, w)
			continue
		}
		flush()
	}
	flush()

	// Repeated longer words are generic term candidates. Emission follows
	// first-occurrence order so downstream tie-breaking stays deterministic.
	freq := map[string]int{}
	for _, w := range words {
		if len(w) >= 5 {
			freq[strings.ToLower(w)]++
		}
	}
	for _, w := range words {
		if len(w) >= 5 && freq[strings.ToLower(w)] >= 2 {
			add(w, "TERM")
		}
	}
	return out, nil
}

func isCapitalized(w string) bool {
	r := []rune(w)
	return len(r) > 0 && unicode.IsUpper(r[0])
}
