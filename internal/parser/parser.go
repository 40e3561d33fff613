package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"studyforge/internal/models"
)

var ErrNoExtractableText = errors.New("document contains no extractable text")

// Parser normalizes one source format into the shared document shape.
type Parser interface {
	// Parse reads the file at path and returns sections in reading order.
	Parse(ctx context.Context, path string) ([]models.Section, map[string]string, error)
}

// ForFile picks a parser by file extension. Unsupported extensions are a
// permanent validation failure, not something worth retrying.
func ForFile(path string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return &PDFParser{}, nil
	case ".txt", ".md", ".text":
		return &TextParser{}, nil
	default:
		return nil, fmt.Errorf("validation: unsupported file type %q", filepath.Ext(path))
	}
}

// Normalize runs the right parser and wraps the result with its document id.
func Normalize(ctx context.Context, documentID, path string) (models.NormalizedDocument, error) {
	p, err := ForFile(path)
	if err != nil {
		return models.NormalizedDocument{}, err
	}
	sections, meta, err := p.Parse(ctx, path)
	if err != nil {
		return models.NormalizedDocument{}, err
	}
	if len(sections) == 0 {
		return models.NormalizedDocument{}, ErrNoExtractableText
	}
	if meta == nil {
		meta = map[string]string{}
	}
	meta["source_path"] = filepath.Base(path)
	return models.NormalizedDocument{
		DocumentID: documentID,
		Metadata:   meta,
		Sections:   sections,
	}, nil
}

// FullText joins all section contents for whole-document passes such as
// concept extraction.
func FullText(doc models.NormalizedDocument) string {
	parts := make([]string, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		if s.Content != "" {
			parts = append(parts, s.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}
