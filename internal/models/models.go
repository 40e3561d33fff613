package models

import "time"

// Section types produced by the document parsers.
const (
	SectionHeading   = "heading"
	SectionParagraph = "paragraph"
	SectionTable     = "table"
	SectionImage     = "image"
)

type Position struct {
	Page  int `json:"page"`
	Order int `json:"order"`
}

type Section struct {
	Type     string   `json:"type"`
	Level    int      `json:"level"`
	Content  string   `json:"content"`
	Position Position `json:"position"`
}

// NormalizedDocument is the format-independent representation of an uploaded
// file: ordered, positioned sections in canonical reading order.
type NormalizedDocument struct {
	DocumentID string            `json:"document_id"`
	Metadata   map[string]string `json:"metadata"`
	Sections   []Section         `json:"sections"`
}

type Concept struct {
	Term            string   `json:"term"`
	Definition      string   `json:"definition"`
	ImportanceScore float64  `json:"importance_score"`
	Category        string   `json:"category"`
	Examples        []string `json:"examples"`
	RelatedConcepts []string `json:"related_concepts"`
	PageReference   string   `json:"page_reference"`
}

type RelationType string

const (
	RelCauses         RelationType = "causes"
	RelPartOf         RelationType = "part_of"
	RelIsA            RelationType = "is_a"
	RelContrastsWith  RelationType = "contrasts_with"
	RelAssociatedWith RelationType = "associated_with"
	RelRelatedTo      RelationType = "related_to"
)

type Relationship struct {
	From        string       `json:"from"`
	To          string       `json:"to"`
	Type        RelationType `json:"type"`
	Strength    float64      `json:"strength"`
	Description string       `json:"description"`
}

type GraphNode struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Definition string  `json:"definition"`
	Importance float64 `json:"importance"`
	Category   string  `json:"category"`
}

type GraphEdge struct {
	From        string       `json:"from"`
	To          string       `json:"to"`
	Label       RelationType `json:"label"`
	Strength    float64      `json:"strength"`
	Description string       `json:"description"`
}

// KnowledgeGraph is purely derived from concepts and relationships; it is
// rebuilt on each analysis and never mutated in place.
type KnowledgeGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

type ConceptMapNode struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Importance float64 `json:"importance"`
	Definition string  `json:"definition"`
}

// ConceptMap is the bounded visualization subset of the knowledge graph:
// the top concepts by importance plus only the relationships whose both
// endpoints survived the cut.
type ConceptMap struct {
	Nodes              []ConceptMapNode `json:"nodes"`
	Edges              []Relationship   `json:"edges"`
	TotalConcepts      int              `json:"total_concepts"`
	TopConceptsCount   int              `json:"top_concepts_count"`
	RelationshipsCount int              `json:"relationships_count"`
}

type ChunkMetadata struct {
	Position Position `json:"position"`
	Type     string   `json:"type"`
}

type ContentChunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// AnalysisResult is the unit cached per document id.
type AnalysisResult struct {
	Concepts       []Concept      `json:"concepts"`
	Relationships  []Relationship `json:"relationships"`
	KnowledgeGraph KnowledgeGraph `json:"knowledge_graph"`
	ConceptMap     ConceptMap     `json:"concept_map"`
	ContentChunks  []ContentChunk `json:"content_chunks"`
	// Fallback marks that concept candidates came from the degraded
	// frequency heuristic rather than the NER provider.
	Fallback bool `json:"fallback"`
}

type Document struct {
	DocumentID   string    `json:"document_id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	FilePath     string    `json:"file_path"`
	FileSize     int64     `json:"file_size"`
	FileType     string    `json:"file_type"`
	Checksum     string    `json:"checksum"`
	Status       string    `json:"status"`
	FailReason   string    `json:"fail_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SummarySection struct {
	BloomLevel string `json:"bloom_level"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

type Question struct {
	ID            string   `json:"id"`
	QuestionText  string   `json:"question_text"`
	QuestionType  string   `json:"question_type"`
	CorrectAnswer string   `json:"correct_answer"`
	Options       []string `json:"options,omitempty"`
	Difficulty    string   `json:"difficulty"`
	Topic         string   `json:"topic"`
	PageReference string   `json:"page_reference"`
}

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type StudyGuideContent struct {
	Title           string           `json:"title"`
	DetailLevel     string           `json:"detail_level"`
	SummarySections []SummarySection `json:"summary_sections"`
	Questions       []Question       `json:"questions"`
	Concepts        []Concept        `json:"concepts"`
	ConceptMap      *ConceptMap      `json:"concept_map,omitempty"`
	Flashcards      []Flashcard      `json:"flashcards"`
}

type StudyGuide struct {
	StudyGuideID  string    `json:"study_guide_id"`
	DocumentID    string    `json:"document_id"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	DetailLevel   string    `json:"detail_level"`
	QuestionCount int       `json:"question_count"`
	ConceptCount  int       `json:"concept_count"`
	CreatedAt     time.Time `json:"created_at"`
}
