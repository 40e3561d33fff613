package analysis

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"studyforge/internal/models"
	"studyforge/internal/parser"
	"studyforge/internal/providers"
)

var definitionCues = []string{"is defined as", "refers to", "means", "is the", "are the"}

var definitionCueRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(definitionCues))
	for i, cue := range definitionCues {
		res[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(cue) + `\b`)
	}
	return res
}()

var exampleIndicators = []string{"for example", "for instance", "e.g.", "such as", "namely", "like"}

const (
	nerCutoff      = 0.1
	fallbackCutoff = 0.001
	maxExamples    = 5
)

// Extractor turns a normalized document into scored concepts. Candidates come
// from the configured concept source; with no source it degrades to a
// frequency heuristic over longer words and reports that via the fallback
// flag.
type Extractor struct {
	source providers.ConceptSource
	log    *zap.SugaredLogger
}

func NewExtractor(source providers.ConceptSource, log *zap.SugaredLogger) *Extractor {
	return &Extractor{source: source, log: log}
}

// HasConceptSource reports whether the preferred candidate path is available.
func (e *Extractor) HasConceptSource() bool { return e.source != nil }

func (e *Extractor) Extract(ctx context.Context, doc models.NormalizedDocument) ([]models.Concept, bool, error) {
	body := parser.FullText(doc)
	if strings.TrimSpace(body) == "" {
		return []models.Concept{}, e.source == nil, nil
	}
	lower := strings.ToLower(body)
	words := len(strings.Fields(body))
	headingLines := headingRegion(body)

	candidates, fallback := e.candidates(ctx, body, lower)
	candidates = dedupeCandidates(candidates)

	concepts := make([]models.Concept, 0, len(candidates))
	for _, cand := range candidates {
		term := strings.TrimSpace(cand.Term)
		if len(term) < 2 || len(strings.Fields(term)) > 10 {
			continue
		}
		termLower := strings.ToLower(term)
		freq := countWholeWord(lower, termLower)

		var score float64
		if fallback {
			if words > 0 {
				score = float64(freq) / float64(words)
			}
			if score <= fallbackCutoff {
				continue
			}
		} else {
			score = importanceScore(lower, termLower, freq, headingLines)
			if score <= nerCutoff {
				continue
			}
		}

		concepts = append(concepts, models.Concept{
			Term:            term,
			Definition:      findDefinition(body, term),
			ImportanceScore: score,
			Category:        cand.Category,
			Examples:        findExamples(body, lower, termLower),
			RelatedConcepts: []string{},
			PageReference:   pageReference(doc, termLower),
		})
	}

	sort.SliceStable(concepts, func(i, j int) bool {
		return concepts[i].ImportanceScore > concepts[j].ImportanceScore
	})
	return concepts, fallback, nil
}

func (e *Extractor) candidates(ctx context.Context, body, lower string) ([]providers.Candidate, bool) {
	if e.source != nil {
		cands, err := e.source.Candidates(ctx, body)
		if err == nil {
			return cands, false
		}
		e.log.Warnw("concept source failed, using frequency fallback", "error", err)
	}
	return frequencyCandidates(lower), true
}

// frequencyCandidates is the degraded path: every word of length >= 4,
// emitted once in first-occurrence order.
func frequencyCandidates(lower string) []providers.Candidate {
	seen := map[string]struct{}{}
	out := make([]providers.Candidate, 0, 64)
	for _, w := range tokenRe.FindAllString(lower, -1) {
		if len(w) < 4 {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, providers.Candidate{Term: w, Category: "TERM"})
	}
	return out
}

var tokenRe = regexp.MustCompile(`[A-Za-z][A-Za-z'-]*`)

// dedupeCandidates collapses near-duplicate terms (plural forms, case
// variants). Two terms merge when their lengths differ by at most two
// characters and their character overlap exceeds 0.8; the earlier candidate
// wins.
func dedupeCandidates(cands []providers.Candidate) []providers.Candidate {
	out := make([]providers.Candidate, 0, len(cands))
	kept := make([]string, 0, len(cands))
	for _, c := range cands {
		cl := strings.ToLower(strings.TrimSpace(c.Term))
		if cl == "" {
			continue
		}
		dup := false
		for _, k := range kept {
			if abs(len(cl)-len(k)) <= 2 && charOverlap(cl, k) > 0.8 {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		kept = append(kept, cl)
		out = append(out, c)
	}
	return out
}

func charOverlap(a, b string) float64 {
	setA := map[rune]struct{}{}
	for _, r := range a {
		setA[r] = struct{}{}
	}
	setB := map[rune]struct{}{}
	for _, r := range b {
		setB[r] = struct{}{}
	}
	inter := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// importanceScore follows a frequency base damped at 0.5, scaled by where the
// term first appears, plus a boost for terms showing up in the heading region.
// The result is capped at 1.
func importanceScore(lower, termLower string, freq int, headingLines []string) float64 {
	base := float64(freq) / 10.0
	if base > 0.5 {
		base = 0.5
	}

	position := 0.5
	if idx := indexWholeWord(lower, termLower); idx >= 0 && len(lower) > 0 {
		rel := float64(idx) / float64(len(lower))
		switch {
		case rel <= 0.3:
			position = 1.0
		case rel <= 0.6:
			position = 0.7
		}
	}

	boost := 0.0
	for _, line := range headingLines {
		if strings.Contains(line, termLower) {
			boost = 0.2
			break
		}
	}

	score := base*position + boost
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// headingRegion returns the first 10 lines shorter than 100 characters,
// lowercased.
func headingRegion(body string) []string {
	lines := strings.Split(body, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" && len(l) < 100 {
			out = append(out, strings.ToLower(l))
		}
	}
	return out
}

func countWholeWord(lower, termLower string) int {
	re, err := wholeWordRe(termLower)
	if err != nil {
		return strings.Count(lower, termLower)
	}
	return len(re.FindAllStringIndex(lower, -1))
}

func indexWholeWord(lower, termLower string) int {
	re, err := wholeWordRe(termLower)
	if err != nil {
		return strings.Index(lower, termLower)
	}
	loc := re.FindStringIndex(lower)
	if loc == nil {
		return -1
	}
	return loc[0]
}

func wholeWordRe(termLower string) (*regexp.Regexp, error) {
	return regexp.Compile(`\b` + regexp.QuoteMeta(termLower) + `\b`)
}

// findDefinition scans a window around the term's first occurrence for
// definitional cue phrases; failing that it returns surrounding context, and
// failing that a placeholder. All offsets are byte positions in body, found
// case-insensitively, so the lowercased copy never leaks indices here (its
// length can differ for runes whose lowercase form changes byte width).
func findDefinition(body, term string) string {
	termRe, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
	if err != nil {
		return term + " is a key concept in this document."
	}
	loc := termRe.FindStringIndex(body)
	if loc == nil {
		return term + " is a key concept in this document."
	}
	idx := loc[0]

	winStart := idx - 200
	if winStart < 0 {
		winStart = 0
	}
	winEnd := loc[1] + 200
	if winEnd > len(body) {
		winEnd = len(body)
	}
	window := body[winStart:winEnd]
	for _, cue := range definitionCueRes {
		cueLoc := cue.FindStringIndex(window)
		if cueLoc == nil {
			continue
		}
		// The term is in the window by construction; start the excerpt at
		// whichever of term or cue comes first.
		start := winStart + cueLoc[0]
		if idx < start {
			start = idx
		}
		return sentenceFrom(body, start, 250)
	}

	ctxStart := idx - 10
	if ctxStart < 0 {
		ctxStart = 0
	}
	ctxEnd := loc[1] + 100
	if ctxEnd > len(body) {
		ctxEnd = len(body)
	}
	return strings.TrimSpace(body[ctxStart:ctxEnd])
}

// sentenceFrom returns body starting at start through the next sentence
// terminator, bounded by maxLen.
func sentenceFrom(body string, start, maxLen int) string {
	end := start + maxLen
	if end > len(body) {
		end = len(body)
	}
	segment := body[start:end]
	if dot := strings.IndexAny(segment, ".!?"); dot >= 0 {
		segment = segment[:dot+1]
	}
	return strings.TrimSpace(segment)
}

func findExamples(body, lower, termLower string) []string {
	examples := make([]string, 0, maxExamples)
	for _, sentence := range splitSentences(body) {
		sl := strings.ToLower(sentence)
		if !strings.Contains(sl, termLower) {
			continue
		}
		for _, ind := range exampleIndicators {
			if strings.Contains(sl, ind) {
				snippet := strings.TrimSpace(sentence)
				if len(snippet) > 150 {
					snippet = snippet[:150]
				}
				examples = append(examples, snippet)
				break
			}
		}
		if len(examples) >= maxExamples {
			break
		}
	}
	return examples
}

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]?`)

func splitSentences(body string) []string {
	return sentenceRe.FindAllString(body, -1)
}

func pageReference(doc models.NormalizedDocument, termLower string) string {
	for _, s := range doc.Sections {
		if strings.Contains(strings.ToLower(s.Content), termLower) {
			return strconv.Itoa(s.Position.Page)
		}
	}
	return "1"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
