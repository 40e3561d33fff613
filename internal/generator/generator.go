package generator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"studyforge/internal/cache"
	"studyforge/internal/models"
	"studyforge/internal/providers"
)

// Detail levels accepted by the generator.
const (
	DetailBrief    = "brief"
	DetailStandard = "standard"
	DetailDetailed = "detailed"
)

// Bloom's taxonomy levels covered per detail level, in ascending cognitive
// demand.
var bloomLevels = []string{"remember", "understand", "apply", "analyze", "evaluate", "create"}

type detailProfile struct {
	bloomCount    int
	summaryBudget int
	questionCount int
	flashcards    int
}

var profiles = map[string]detailProfile{
	DetailBrief:    {bloomCount: 2, summaryBudget: 300, questionCount: 5, flashcards: 5},
	DetailStandard: {bloomCount: 4, summaryBudget: 600, questionCount: 10, flashcards: 10},
	DetailDetailed: {bloomCount: 6, summaryBudget: 1200, questionCount: 15, flashcards: 20},
}

// Generator turns an analysis result into study guide content: Bloom-level
// summaries, practice questions, and flashcards. Output is cached per
// document and detail level.
type Generator struct {
	llm   providers.LLMProvider
	cache *cache.DocumentCache
	log   *zap.SugaredLogger
}

func NewGenerator(llm providers.LLMProvider, docCache *cache.DocumentCache, log *zap.SugaredLogger) *Generator {
	return &Generator{llm: llm, cache: docCache, log: log}
}

// Generate builds the study guide for a document. The bool reports a cache
// hit.
func (g *Generator) Generate(ctx context.Context, doc models.NormalizedDocument, analysis models.AnalysisResult, detailLevel string) (models.StudyGuideContent, bool, error) {
	if _, ok := profiles[detailLevel]; !ok {
		detailLevel = DetailStandard
	}

	if cached, ok, err := g.cache.GetStudyGuide(ctx, doc.DocumentID, detailLevel); err != nil {
		g.log.Warnw("study guide cache read failed", "document_id", doc.DocumentID, "error", err)
	} else if ok {
		return cached, true, nil
	}

	guide, err := g.build(ctx, doc, analysis, detailLevel)
	if err != nil {
		return models.StudyGuideContent{}, false, err
	}
	if err := g.cache.SetStudyGuide(ctx, doc.DocumentID, guide); err != nil {
		g.log.Warnw("study guide cache write failed", "document_id", doc.DocumentID, "error", err)
	}
	return guide, false, nil
}

func (g *Generator) build(ctx context.Context, doc models.NormalizedDocument, analysis models.AnalysisResult, detailLevel string) (models.StudyGuideContent, error) {
	profile := profiles[detailLevel]

	summaries, err := g.summaries(ctx, analysis, profile)
	if err != nil {
		return models.StudyGuideContent{}, fmt.Errorf("generate summaries: %w", err)
	}
	questions, err := g.questions(ctx, analysis, profile)
	if err != nil {
		return models.StudyGuideContent{}, fmt.Errorf("generate questions: %w", err)
	}

	cm := analysis.ConceptMap
	return models.StudyGuideContent{
		Title:           guideTitle(doc),
		DetailLevel:     detailLevel,
		SummarySections: summaries,
		Questions:       questions,
		Concepts:        analysis.Concepts,
		ConceptMap:      &cm,
		Flashcards:      flashcardsFrom(analysis.Concepts, profile.flashcards),
	}, nil
}

func (g *Generator) summaries(ctx context.Context, analysis models.AnalysisResult, profile detailProfile) ([]models.SummarySection, error) {
	material := chunkExcerpts(analysis.ContentChunks, 3)
	out := make([]models.SummarySection, 0, profile.bloomCount)
	for _, level := range bloomLevels[:profile.bloomCount] {
		resp, _, err := g.llm.Generate(ctx, providers.GenerateRequest{
			Operation: "summary:" + level,
			Prompt: fmt.Sprintf(
				"Write a summary of the material at the %q level of Bloom's taxonomy, at most %d words.",
				level, profile.summaryBudget),
			Context: material,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, models.SummarySection{
			BloomLevel: level,
			Title:      strings.ToUpper(level[:1]) + level[1:],
			Content:    strings.TrimSpace(resp.Text),
		})
	}
	return out, nil
}

func (g *Generator) questions(ctx context.Context, analysis models.AnalysisResult, profile detailProfile) ([]models.Question, error) {
	terms := topTerms(analysis.Concepts, profile.questionCount)
	if len(terms) == 0 {
		return []models.Question{}, nil
	}
	resp, _, err := g.llm.Generate(ctx, providers.GenerateRequest{
		Operation: "questions",
		Prompt: fmt.Sprintf(
			"Write %d practice questions covering these concepts: %s. "+
				`Respond with JSON: {"questions":[{"question_text","question_type","correct_answer","options","difficulty","topic"}]}.`,
			profile.questionCount, strings.Join(terms, ", ")),
		Context: chunkExcerpts(analysis.ContentChunks, 3),
	})
	if err != nil {
		return nil, err
	}
	questions := ParseQuestionsJSON(resp.Text)
	fillQuestionDefaults(questions, analysis.Concepts)
	return questions, nil
}

func guideTitle(doc models.NormalizedDocument) string {
	if t := doc.Metadata["title"]; t != "" {
		return t
	}
	for _, s := range doc.Sections {
		if s.Type == models.SectionHeading && strings.TrimSpace(s.Content) != "" {
			return strings.TrimSpace(s.Content)
		}
	}
	if name := doc.Metadata["source_path"]; name != "" {
		return "Study Guide: " + name
	}
	return "Study Guide"
}

func flashcardsFrom(concepts []models.Concept, limit int) []models.Flashcard {
	out := make([]models.Flashcard, 0, limit)
	for _, c := range concepts {
		if len(out) >= limit {
			break
		}
		if strings.TrimSpace(c.Definition) == "" {
			continue
		}
		out = append(out, models.Flashcard{Front: c.Term, Back: c.Definition})
	}
	return out
}

func topTerms(concepts []models.Concept, limit int) []string {
	out := make([]string, 0, limit)
	for _, c := range concepts {
		if len(out) >= limit {
			break
		}
		out = append(out, c.Term)
	}
	return out
}

// chunkExcerpts keeps prompt material bounded to the first few chunks.
func chunkExcerpts(chunks []models.ContentChunk, limit int) []string {
	out := make([]string, 0, limit)
	for _, c := range chunks {
		if len(out) >= limit {
			break
		}
		out = append(out, c.Content)
	}
	return out
}
