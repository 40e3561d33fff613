package analysis

import (
	"sort"

	"studyforge/internal/models"
)

const (
	conceptMapLimit  = 20
	definitionCutoff = 100
)

// BuildGraph projects concepts and relationships into graph form. Pure
// function, rebuilt on every analysis.
func BuildGraph(concepts []models.Concept, relationships []models.Relationship) models.KnowledgeGraph {
	nodes := make([]models.GraphNode, 0, len(concepts))
	for _, c := range concepts {
		nodes = append(nodes, models.GraphNode{
			ID:         c.Term,
			Label:      c.Term,
			Definition: c.Definition,
			Importance: c.ImportanceScore,
			Category:   c.Category,
		})
	}
	edges := make([]models.GraphEdge, 0, len(relationships))
	for _, r := range relationships {
		edges = append(edges, models.GraphEdge{
			From:        r.From,
			To:          r.To,
			Label:       r.Type,
			Strength:    r.Strength,
			Description: r.Description,
		})
	}
	return models.KnowledgeGraph{Nodes: nodes, Edges: edges}
}

// BuildConceptMap selects the top concepts by importance for visualization,
// keeping only relationships whose both endpoints survive the cut.
func BuildConceptMap(concepts []models.Concept, relationships []models.Relationship) models.ConceptMap {
	top := make([]models.Concept, len(concepts))
	copy(top, concepts)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].ImportanceScore > top[j].ImportanceScore
	})
	if len(top) > conceptMapLimit {
		top = top[:conceptMapLimit]
	}

	selected := make(map[string]struct{}, len(top))
	nodes := make([]models.ConceptMapNode, 0, len(top))
	for _, c := range top {
		selected[c.Term] = struct{}{}
		nodes = append(nodes, models.ConceptMapNode{
			ID:         c.Term,
			Label:      c.Term,
			Importance: c.ImportanceScore,
			Definition: truncateDefinition(c.Definition),
		})
	}

	edges := make([]models.Relationship, 0, len(relationships))
	for _, r := range relationships {
		if _, okFrom := selected[r.From]; !okFrom {
			continue
		}
		if _, okTo := selected[r.To]; !okTo {
			continue
		}
		edges = append(edges, r)
	}

	return models.ConceptMap{
		Nodes:              nodes,
		Edges:              edges,
		TotalConcepts:      len(concepts),
		TopConceptsCount:   len(nodes),
		RelationshipsCount: len(edges),
	}
}

func truncateDefinition(def string) string {
	if len(def) <= definitionCutoff {
		return def
	}
	return def[:definitionCutoff] + "..."
}
