package activities

import "studyforge/internal/models"

type ParseDocumentInput struct {
	DocumentID string `json:"document_id"`
	FilePath   string `json:"file_path"`
}

type ParseDocumentOutput struct {
	Document models.NormalizedDocument `json:"document"`
	CacheHit bool                      `json:"cache_hit"`
}

type AnalyzeContentInput struct {
	Document models.NormalizedDocument `json:"document"`
}

type AnalyzeContentOutput struct {
	Analysis models.AnalysisResult `json:"analysis"`
	CacheHit bool                  `json:"cache_hit"`
}

type GenerateStudyGuideInput struct {
	Document    models.NormalizedDocument `json:"document"`
	Analysis    models.AnalysisResult     `json:"analysis"`
	DetailLevel string                    `json:"detail_level"`
}

type GenerateStudyGuideOutput struct {
	Guide    models.StudyGuideContent `json:"guide"`
	CacheHit bool                     `json:"cache_hit"`
}

type PersistStudyGuideInput struct {
	DocumentID    string                   `json:"document_id"`
	Guide         models.StudyGuideContent `json:"guide"`
	Concepts      []models.Concept         `json:"concepts"`
	Relationships []models.Relationship    `json:"relationships"`
}

type PersistStudyGuideOutput struct {
	StudyGuideID string `json:"study_guide_id"`
}

type UpdateDocumentStatusInput struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	FailReason string `json:"fail_reason,omitempty"`
}
