package analysis

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"studyforge/internal/models"
	"studyforge/internal/parser"
	"studyforge/internal/providers"
)

const (
	similarityCutoff = 0.5
	proximityWindow  = 100
)

// Relationship type detection tests these anchored patterns in a fixed
// priority order. Several can match the same window; the first wins. Each
// pattern requires both concept terms around the linking phrase so that a
// phrase connecting two unrelated words nearby never tags the pair.
var relationRules = []struct {
	relType models.RelationType
	links   func(window, from, to string) bool
}{
	{models.RelCauses, func(w, from, to string) bool {
		return phraseLinks(w, from, "causes", to) || phraseLinks(w, to, "caused by", from)
	}},
	{models.RelPartOf, func(w, from, to string) bool {
		return phraseLinks(w, from, "part of", to) || phraseLinks(w, to, "contains", from)
	}},
	{models.RelIsA, func(w, from, to string) bool {
		return phraseLinks(w, from, "is a", to) || phraseLinks(w, from, "type of", to)
	}},
	{models.RelContrastsWith, func(w, from, to string) bool {
		return phraseLinks(w, from, "contrasts with", to) || phraseLinks(w, from, "opposite of", to)
	}},
}

// phraseLinks reports whether the window reads "a <phrase> b", allowing at
// most two filler words between each term and the phrase.
func phraseLinks(window, a, phrase, b string) bool {
	const gap = `(?:[\s,;:]+[\w'-]+){0,2}[\s,;:]+`
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(a) + gap + regexp.QuoteMeta(phrase) + gap + regexp.QuoteMeta(b) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(window)
}

// Classifier derives typed relationships between concept pairs using
// embedding similarity as a gate and phrase patterns in the surrounding text
// to pick the type.
type Classifier struct {
	embedder providers.EmbeddingProvider
	log      *zap.SugaredLogger
}

func NewClassifier(embedder providers.EmbeddingProvider, log *zap.SugaredLogger) *Classifier {
	return &Classifier{embedder: embedder, log: log}
}

func (c *Classifier) Classify(ctx context.Context, concepts []models.Concept, doc models.NormalizedDocument) ([]models.Relationship, error) {
	if len(concepts) < 2 {
		return []models.Relationship{}, nil
	}

	terms := make([]string, len(concepts))
	for i, concept := range concepts {
		terms[i] = concept.Term
	}
	vectors, _, err := c.embedder.Embed(ctx, providers.EmbedRequest{Inputs: terms})
	if err != nil || len(vectors) != len(terms) {
		// A missing embedding signal degrades to no relationships rather
		// than failing the analysis.
		c.log.Warnw("embedding unavailable, skipping relationship classification", "error", err)
		return []models.Relationship{}, nil
	}

	body := parser.FullText(doc)
	lower := strings.ToLower(body)

	rels := make([]models.Relationship, 0, len(concepts))
	for i := 0; i < len(concepts); i++ {
		for j := i + 1; j < len(concepts); j++ {
			sim := providers.Cosine(vectors[i], vectors[j])
			if sim <= similarityCutoff {
				continue
			}
			from, to := concepts[i].Term, concepts[j].Term
			rels = append(rels, models.Relationship{
				From:        from,
				To:          to,
				Type:        detectType(lower, strings.ToLower(from), strings.ToLower(to)),
				Strength:    sim,
				Description: from + " is related to " + to,
			})
		}
	}
	return rels, nil
}

func detectType(lower, fromLower, toLower string) models.RelationType {
	idxFrom := strings.Index(lower, fromLower)
	idxTo := strings.Index(lower, toLower)
	if idxFrom < 0 || idxTo < 0 {
		return models.RelRelatedTo
	}

	start, end := idxFrom, idxTo+len(toLower)
	if idxTo < idxFrom {
		start, end = idxTo, idxFrom+len(fromLower)
	}
	end += proximityWindow
	if end > len(lower) {
		end = len(lower)
	}
	window := lower[start:end]

	for _, rule := range relationRules {
		if rule.links(window, fromLower, toLower) {
			return rule.relType
		}
	}

	distance := idxFrom - idxTo
	if distance < 0 {
		distance = -distance
	}
	if distance < proximityWindow {
		return models.RelAssociatedWith
	}
	return models.RelRelatedTo
}
