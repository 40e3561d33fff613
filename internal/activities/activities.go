package activities

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"studyforge/internal/analysis"
	"studyforge/internal/cache"
	"studyforge/internal/config"
	"studyforge/internal/generator"
	"studyforge/internal/models"
	"studyforge/internal/parser"
	"studyforge/internal/providers"
	"studyforge/internal/retry"
	"studyforge/internal/storage"
	"studyforge/internal/util"
)

type Activities struct {
	cfg       config.Config
	docRepo   *storage.DocumentRepo
	guideRepo *storage.StudyGuideRepo
	concepts  *storage.ConceptRepo
	docCache  *cache.DocumentCache
	analyzer  *analysis.Analyzer
	generator *generator.Generator
	executor  *retry.Executor
	log       *zap.SugaredLogger
}

func New(cfg config.Config, db *storage.DB, store cache.Store, log *zap.SugaredLogger) (*Activities, error) {
	pm, err := providers.NewManager(cfg.LLMProviders, cfg.EmbedProviders, cfg.ConceptProviders, cfg.EmbedDim, log)
	if err != nil {
		return nil, err
	}
	docCache := cache.NewDocumentCache(store)
	analyzer := analysis.NewAnalyzer(
		analysis.NewExtractor(pm.Concepts(), log),
		analysis.NewClassifier(pm.Embedder(), log),
		store, cfg.ChunkBudget, log,
	)
	exec := retry.NewExecutor(log)
	exec.MaxRetries = cfg.MaxRetries
	return &Activities{
		cfg:       cfg,
		docRepo:   storage.NewDocumentRepo(db),
		guideRepo: storage.NewStudyGuideRepo(db),
		concepts:  storage.NewConceptRepo(db),
		docCache:  docCache,
		analyzer:  analyzer,
		generator: generator.NewGenerator(pm.LLM(), docCache, log),
		executor:  exec,
		log:       log,
	}, nil
}

// ParseDocumentActivity normalizes the uploaded file, serving repeat parses
// from cache. The parse call itself goes through the retry executor since
// file extraction is the first fallible external step.
func (a *Activities) ParseDocumentActivity(ctx context.Context, in ParseDocumentInput) (ParseDocumentOutput, error) {
	if cached, ok, err := a.docCache.GetParsedDocument(ctx, in.DocumentID); err != nil {
		a.log.Warnw("parsed doc cache read failed", "document_id", in.DocumentID, "error", err)
	} else if ok {
		return ParseDocumentOutput{Document: cached, CacheHit: true}, nil
	}

	var doc models.NormalizedDocument
	err := a.executor.Do(ctx, "parse_document", func(ctx context.Context) error {
		var parseErr error
		doc, parseErr = parser.Normalize(ctx, in.DocumentID, in.FilePath)
		return parseErr
	})
	if err != nil {
		return ParseDocumentOutput{}, fmt.Errorf("parse document %s: %w", in.DocumentID, err)
	}

	if err := a.docCache.SetParsedDocument(ctx, doc); err != nil {
		a.log.Warnw("parsed doc cache write failed", "document_id", in.DocumentID, "error", err)
	}
	return ParseDocumentOutput{Document: doc}, nil
}

func (a *Activities) AnalyzeContentActivity(ctx context.Context, in AnalyzeContentInput) (AnalyzeContentOutput, error) {
	result, hit, err := a.analyzer.Analyze(ctx, in.Document)
	if err != nil {
		return AnalyzeContentOutput{}, fmt.Errorf("analyze document %s: %w", in.Document.DocumentID, err)
	}
	if a.cfg.ArtifactRoot != "" && !hit {
		a.writeAnalysisArtifact(in.Document.DocumentID, result)
	}
	return AnalyzeContentOutput{Analysis: result, CacheHit: hit}, nil
}

func (a *Activities) GenerateStudyGuideActivity(ctx context.Context, in GenerateStudyGuideInput) (GenerateStudyGuideOutput, error) {
	var (
		guide models.StudyGuideContent
		hit   bool
	)
	err := a.executor.Do(ctx, "generate_study_guide", func(ctx context.Context) error {
		var genErr error
		guide, hit, genErr = a.generator.Generate(ctx, in.Document, in.Analysis, in.DetailLevel)
		return genErr
	})
	if err != nil {
		return GenerateStudyGuideOutput{}, fmt.Errorf("generate study guide for %s: %w", in.Document.DocumentID, err)
	}
	return GenerateStudyGuideOutput{Guide: guide, CacheHit: hit}, nil
}

func (a *Activities) PersistStudyGuideActivity(ctx context.Context, in PersistStudyGuideInput) (PersistStudyGuideOutput, error) {
	var studyGuideID string
	err := a.executor.Do(ctx, "persist_study_guide", func(ctx context.Context) error {
		if err := a.concepts.ReplaceConcepts(ctx, in.DocumentID, in.Concepts, in.Relationships); err != nil {
			return err
		}
		id, err := a.guideRepo.InsertStudyGuide(ctx, in.DocumentID, in.Guide)
		if err != nil {
			return err
		}
		studyGuideID = id
		return nil
	})
	if err != nil {
		return PersistStudyGuideOutput{}, fmt.Errorf("persist study guide for %s: %w", in.DocumentID, err)
	}
	return PersistStudyGuideOutput{StudyGuideID: studyGuideID}, nil
}

func (a *Activities) UpdateDocumentStatusActivity(ctx context.Context, in UpdateDocumentStatusInput) error {
	if err := a.docRepo.UpdateDocumentStatus(ctx, in.DocumentID, in.Status, in.FailReason); err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

func (a *Activities) writeAnalysisArtifact(documentID string, result models.AnalysisResult) {
	dir := filepath.Join(a.cfg.ArtifactRoot, documentID)
	if err := util.EnsureDir(dir); err != nil {
		a.log.Warnw("artifact dir create failed", "document_id", documentID, "error", err)
		return
	}
	path := util.SafeJoin(dir, "analysis.json")
	if err := util.WriteJSONAtomic(path, result); err != nil {
		a.log.Warnw("analysis artifact write failed", "document_id", documentID, "error", err)
	}
	if err := util.WriteJSONLinesAtomic(util.SafeJoin(dir, "concepts.jsonl"), result.Concepts); err != nil {
		a.log.Warnw("concept artifact write failed", "document_id", documentID, "error", err)
	}
}
