package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"studyforge/internal/models"
)

// TTLs mirror the cost of recomputing each artifact: parses and analyses are
// moderately expensive, generated study guides are the most expensive.
const (
	ParsedDocTTL  = 2 * time.Hour
	AnalysisTTL   = 2 * time.Hour
	StudyGuideTTL = 12 * time.Hour
)

func ParsedDocKey(documentID string) string {
	return "parsed_doc:" + documentID
}

func AnalysisKey(documentID string) string {
	return "analyzed_content:" + documentID
}

func StudyGuideKey(documentID, detailLevel string) string {
	return "study_guide:" + documentID + ":" + detailLevel
}

// DocumentCache wraps a Store with the typed document-pipeline entries.
type DocumentCache struct {
	store Store
}

func NewDocumentCache(store Store) *DocumentCache {
	return &DocumentCache{store: store}
}

func (c *DocumentCache) Store() Store { return c.store }

func (c *DocumentCache) GetParsedDocument(ctx context.Context, documentID string) (models.NormalizedDocument, bool, error) {
	var doc models.NormalizedDocument
	ok, err := c.getJSON(ctx, ParsedDocKey(documentID), &doc)
	return doc, ok, err
}

func (c *DocumentCache) SetParsedDocument(ctx context.Context, doc models.NormalizedDocument) error {
	return c.setJSON(ctx, ParsedDocKey(doc.DocumentID), doc, ParsedDocTTL)
}

func (c *DocumentCache) GetAnalysis(ctx context.Context, documentID string) (models.AnalysisResult, bool, error) {
	var res models.AnalysisResult
	ok, err := c.getJSON(ctx, AnalysisKey(documentID), &res)
	return res, ok, err
}

func (c *DocumentCache) SetAnalysis(ctx context.Context, documentID string, res models.AnalysisResult) error {
	return c.setJSON(ctx, AnalysisKey(documentID), res, AnalysisTTL)
}

func (c *DocumentCache) GetStudyGuide(ctx context.Context, documentID, detailLevel string) (models.StudyGuideContent, bool, error) {
	var guide models.StudyGuideContent
	ok, err := c.getJSON(ctx, StudyGuideKey(documentID, detailLevel), &guide)
	return guide, ok, err
}

func (c *DocumentCache) SetStudyGuide(ctx context.Context, documentID string, guide models.StudyGuideContent) error {
	return c.setJSON(ctx, StudyGuideKey(documentID, guide.DetailLevel), guide, StudyGuideTTL)
}

// InvalidateDocument drops every cached artifact derived from a document.
func (c *DocumentCache) InvalidateDocument(ctx context.Context, documentID string) (int, error) {
	removed := 0
	for _, pattern := range []string{
		ParsedDocKey(documentID),
		AnalysisKey(documentID),
		StudyGuideKey(documentID, "*"),
	} {
		n, err := c.store.ClearPattern(ctx, pattern)
		if err != nil {
			return removed, err
		}
		removed += n
	}
	return removed, nil
}

func (c *DocumentCache) getJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *DocumentCache) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cached %s: %w", key, err)
	}
	return c.store.Set(ctx, key, raw, ttl)
}
