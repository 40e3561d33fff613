package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"studyforge/internal/cache"
	"studyforge/internal/models"
)

// Analyzer runs the full content-analysis pipeline for one document:
// extraction, relationship classification, graph and map construction, and
// chunking. Results are cached per document id; a hit short-circuits every
// sub-step.
type Analyzer struct {
	extractor   *Extractor
	classifier  *Classifier
	store       cache.Store
	chunkBudget int
	log         *zap.SugaredLogger
}

func NewAnalyzer(extractor *Extractor, classifier *Classifier, store cache.Store, chunkBudget int, log *zap.SugaredLogger) *Analyzer {
	if chunkBudget <= 0 {
		chunkBudget = DefaultChunkBudget
	}
	return &Analyzer{
		extractor:   extractor,
		classifier:  classifier,
		store:       store,
		chunkBudget: chunkBudget,
		log:         log,
	}
}

// Analyze returns the analysis for a document, computing and caching it on a
// miss. The second return reports whether the result came from cache. Errors
// propagate uncached.
func (a *Analyzer) Analyze(ctx context.Context, doc models.NormalizedDocument) (models.AnalysisResult, bool, error) {
	return cache.GetOrCompute(ctx, a.store, a.log, cache.AnalysisKey(doc.DocumentID), cache.AnalysisTTL,
		func(ctx context.Context) (models.AnalysisResult, error) {
			return a.run(ctx, doc)
		})
}

func (a *Analyzer) run(ctx context.Context, doc models.NormalizedDocument) (models.AnalysisResult, error) {
	concepts, fallback, err := a.extractor.Extract(ctx, doc)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("extract concepts: %w", err)
	}
	relationships, err := a.classifier.Classify(ctx, concepts, doc)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("classify relationships: %w", err)
	}

	a.log.Infow("content analyzed",
		"document_id", doc.DocumentID,
		"concepts", len(concepts),
		"relationships", len(relationships),
		"fallback", fallback,
	)

	return models.AnalysisResult{
		Concepts:       concepts,
		Relationships:  relationships,
		KnowledgeGraph: BuildGraph(concepts, relationships),
		ConceptMap:     BuildConceptMap(concepts, relationships),
		ContentChunks:  Chunk(doc, a.chunkBudget),
		Fallback:       fallback,
	}, nil
}
