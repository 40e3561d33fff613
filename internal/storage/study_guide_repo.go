package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studyforge/internal/models"
)

type StudyGuideRepo struct {
	db *DB
}

func NewStudyGuideRepo(db *DB) *StudyGuideRepo {
	return &StudyGuideRepo{db: db}
}

// InsertStudyGuide persists guide content as JSON and returns the new
// durable study guide id.
func (r *StudyGuideRepo) InsertStudyGuide(ctx context.Context, documentID string, content models.StudyGuideContent) (string, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("encode study guide content: %w", err)
	}
	id := uuid.NewString()
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO study_guides (study_guide_id, document_id, title, detail_level, question_count, concept_count, content)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, documentID, content.Title, content.DetailLevel,
		len(content.Questions), len(content.Concepts), raw,
	)
	if err != nil {
		return "", fmt.Errorf("insert study guide: %w", err)
	}
	return id, nil
}

func (r *StudyGuideRepo) GetStudyGuide(ctx context.Context, studyGuideID string) (models.StudyGuide, models.StudyGuideContent, error) {
	var (
		guide models.StudyGuide
		raw   []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
SELECT study_guide_id, document_id, title, detail_level, question_count, concept_count, content, created_at
FROM study_guides
WHERE study_guide_id=$1`, studyGuideID).Scan(
		&guide.StudyGuideID, &guide.DocumentID, &guide.Title, &guide.DetailLevel,
		&guide.QuestionCount, &guide.ConceptCount, &raw, &guide.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.StudyGuide{}, models.StudyGuideContent{}, ErrNotFound
	}
	if err != nil {
		return models.StudyGuide{}, models.StudyGuideContent{}, fmt.Errorf("get study guide: %w", err)
	}
	var content models.StudyGuideContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return models.StudyGuide{}, models.StudyGuideContent{}, fmt.Errorf("decode study guide content: %w", err)
	}
	return guide, content, nil
}

// GetLatestForDocument returns the most recent guide for a document.
func (r *StudyGuideRepo) GetLatestForDocument(ctx context.Context, documentID string) (models.StudyGuide, models.StudyGuideContent, error) {
	var id string
	err := r.db.Pool.QueryRow(ctx, `
SELECT study_guide_id
FROM study_guides
WHERE document_id=$1
ORDER BY created_at DESC
LIMIT 1`, documentID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.StudyGuide{}, models.StudyGuideContent{}, ErrNotFound
	}
	if err != nil {
		return models.StudyGuide{}, models.StudyGuideContent{}, fmt.Errorf("find study guide: %w", err)
	}
	return r.GetStudyGuide(ctx, id)
}
