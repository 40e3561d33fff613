package analysis

import (
	"strings"

	"studyforge/internal/models"
)

const DefaultChunkBudget = 1000

// Chunk groups whole sections into generation-sized pieces. Sections are
// never split: a section larger than the whole budget becomes a chunk of its
// own.
func Chunk(doc models.NormalizedDocument, budget int) []models.ContentChunk {
	if budget <= 0 {
		budget = DefaultChunkBudget
	}

	chunks := make([]models.ContentChunk, 0, 8)
	var buf strings.Builder
	var bufSize int
	var bufStart models.Section
	var last models.Section
	hasContent := false

	flush := func(tag models.Section) {
		if buf.Len() == 0 {
			return
		}
		chunks = append(chunks, models.ContentChunk{
			Content: buf.String(),
			Metadata: models.ChunkMetadata{
				Position: tag.Position,
				Type:     tag.Type,
			},
		})
		buf.Reset()
		bufSize = 0
	}

	for _, sec := range doc.Sections {
		if strings.TrimSpace(sec.Content) == "" {
			continue
		}
		hasContent = true
		last = sec
		size := len(strings.Fields(sec.Content))
		if buf.Len() > 0 && bufSize+size > budget {
			flush(bufStart)
		}
		if buf.Len() == 0 {
			bufStart = sec
		} else {
			buf.WriteString(" ")
		}
		buf.WriteString(sec.Content)
		bufSize += size
	}
	flush(last)

	if !hasContent {
		return []models.ContentChunk{}
	}
	return chunks
}
