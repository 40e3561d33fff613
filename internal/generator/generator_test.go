package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studyforge/internal/cache"
	"studyforge/internal/models"
	"studyforge/internal/providers"
)

func testAnalysis() models.AnalysisResult {
	return models.AnalysisResult{
		Concepts: []models.Concept{
			{Term: "mitochondria", Definition: "The powerhouse of the cell.", ImportanceScore: 0.8, PageReference: "1"},
			{Term: "ATP", Definition: "Energy currency.", ImportanceScore: 0.5, PageReference: "2"},
		},
		ContentChunks: []models.ContentChunk{
			{Content: "The mitochondria is the powerhouse of the cell."},
		},
		ConceptMap: models.ConceptMap{TotalConcepts: 2},
	}
}

func testDoc() models.NormalizedDocument {
	return models.NormalizedDocument{
		DocumentID: "doc-gen",
		Metadata:   map[string]string{"source_path": "cells.pdf"},
		Sections: []models.Section{
			{Type: models.SectionHeading, Content: "Cell Biology", Position: models.Position{Page: 1}},
		},
	}
}

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	docCache := cache.NewDocumentCache(cache.NewMemoryStore())
	return NewGenerator(providers.NewMockProvider(64), docCache, zap.NewNop().Sugar())
}

func TestGenerateStudyGuide(t *testing.T) {
	g := newTestGenerator(t)

	guide, hit, err := g.Generate(context.Background(), testDoc(), testAnalysis(), DetailStandard)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, "Cell Biology", guide.Title)
	require.Equal(t, DetailStandard, guide.DetailLevel)

	require.Len(t, guide.SummarySections, 4)
	require.Equal(t, "remember", guide.SummarySections[0].BloomLevel)
	require.Equal(t, "analyze", guide.SummarySections[3].BloomLevel)
	for _, s := range guide.SummarySections {
		require.NotEmpty(t, s.Content)
	}

	require.NotEmpty(t, guide.Questions)
	for _, q := range guide.Questions {
		require.NotEmpty(t, q.ID)
		require.NotEmpty(t, q.QuestionType)
		require.NotEmpty(t, q.Difficulty)
	}

	require.Len(t, guide.Flashcards, 2)
	require.Equal(t, "mitochondria", guide.Flashcards[0].Front)
	require.NotNil(t, guide.ConceptMap)
}

func TestGenerateServedFromCache(t *testing.T) {
	g := newTestGenerator(t)
	ctx := context.Background()

	_, hit, err := g.Generate(ctx, testDoc(), testAnalysis(), DetailBrief)
	require.NoError(t, err)
	require.False(t, hit)

	again, hit, err := g.Generate(ctx, testDoc(), testAnalysis(), DetailBrief)
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, again.SummarySections, 2)
}

func TestGenerateUnknownDetailLevelDefaults(t *testing.T) {
	g := newTestGenerator(t)
	guide, _, err := g.Generate(context.Background(), testDoc(), testAnalysis(), "extreme")
	require.NoError(t, err)
	require.Equal(t, DetailStandard, guide.DetailLevel)
}

func TestParseQuestionsJSON(t *testing.T) {
	raw := "```json\n{\"questions\":[{\"question_text\":\"What is ATP?\",\"question_type\":\"short_answer\",\"correct_answer\":\"Energy currency\",\"difficulty\":\"easy\",\"topic\":\"ATP\"}]}\n```"
	qs := ParseQuestionsJSON(raw)
	require.Len(t, qs, 1)
	require.Equal(t, "What is ATP?", qs[0].QuestionText)

	require.Empty(t, ParseQuestionsJSON("not json at all"))
	require.Empty(t, ParseQuestionsJSON(""))
	require.Empty(t, ParseQuestionsJSON(`{"questions":[{"question_text":"  "}]}`))
}

func TestFillQuestionDefaults(t *testing.T) {
	qs := []models.Question{{QuestionText: "What do mitochondria do?", Topic: "mitochondria"}}
	fillQuestionDefaults(qs, testAnalysis().Concepts)
	require.NotEmpty(t, qs[0].ID)
	require.Equal(t, "short_answer", qs[0].QuestionType)
	require.Equal(t, "medium", qs[0].Difficulty)
	require.Equal(t, "1", qs[0].PageReference)
}
