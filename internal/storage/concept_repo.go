package storage

import (
	"context"
	"fmt"

	"studyforge/internal/models"
)

type ConceptRepo struct {
	db *DB
}

func NewConceptRepo(db *DB) *ConceptRepo {
	return &ConceptRepo{db: db}
}

// ReplaceConcepts swaps a document's concept and relationship rows for the
// latest analysis in one transaction.
func (r *ConceptRepo) ReplaceConcepts(ctx context.Context, documentID string, concepts []models.Concept, relationships []models.Relationship) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin concept tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM concept_relationships WHERE document_id=$1`, documentID); err != nil {
		return fmt.Errorf("clear relationships: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM concepts WHERE document_id=$1`, documentID); err != nil {
		return fmt.Errorf("clear concepts: %w", err)
	}

	for _, c := range concepts {
		if _, err := tx.Exec(ctx, `
INSERT INTO concepts (document_id, term, definition, importance_score, category, page_reference)
VALUES ($1, $2, $3, $4, $5, $6)`,
			documentID, c.Term, c.Definition, c.ImportanceScore, c.Category, c.PageReference,
		); err != nil {
			return fmt.Errorf("insert concept: %w", err)
		}
	}
	for _, rel := range relationships {
		if _, err := tx.Exec(ctx, `
INSERT INTO concept_relationships (document_id, from_term, to_term, relation_type, strength, description)
VALUES ($1, $2, $3, $4, $5, $6)`,
			documentID, rel.From, rel.To, string(rel.Type), rel.Strength, rel.Description,
		); err != nil {
			return fmt.Errorf("insert relationship: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit concept tx: %w", err)
	}
	return nil
}

// GetGraph rebuilds the knowledge graph for a document from its stored rows.
func (r *ConceptRepo) GetGraph(ctx context.Context, documentID string) (models.KnowledgeGraph, error) {
	var graph models.KnowledgeGraph

	rows, err := r.db.Pool.Query(ctx, `
SELECT term, COALESCE(definition,''), importance_score, COALESCE(category,'')
FROM concepts
WHERE document_id=$1
ORDER BY importance_score DESC`, documentID)
	if err != nil {
		return graph, fmt.Errorf("query concepts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var n models.GraphNode
		if err := rows.Scan(&n.Label, &n.Definition, &n.Importance, &n.Category); err != nil {
			return graph, fmt.Errorf("scan concept: %w", err)
		}
		n.ID = n.Label
		graph.Nodes = append(graph.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return graph, fmt.Errorf("iterate concepts: %w", err)
	}

	relRows, err := r.db.Pool.Query(ctx, `
SELECT from_term, to_term, relation_type, strength, COALESCE(description,'')
FROM concept_relationships
WHERE document_id=$1`, documentID)
	if err != nil {
		return graph, fmt.Errorf("query relationships: %w", err)
	}
	defer relRows.Close()
	for relRows.Next() {
		var e models.GraphEdge
		var relType string
		if err := relRows.Scan(&e.From, &e.To, &relType, &e.Strength, &e.Description); err != nil {
			return graph, fmt.Errorf("scan relationship: %w", err)
		}
		e.Label = models.RelationType(relType)
		graph.Edges = append(graph.Edges, e)
	}
	if err := relRows.Err(); err != nil {
		return graph, fmt.Errorf("iterate relationships: %w", err)
	}
	return graph, nil
}
