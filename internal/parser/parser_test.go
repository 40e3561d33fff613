package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"studyforge/internal/models"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestForFileUnsupported(t *testing.T) {
	_, err := ForFile("notes.docx")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported file type")

	_, err = ForFile("paper.pdf")
	require.NoError(t, err)
	_, err = ForFile("notes.TXT")
	require.NoError(t, err)
}

func TestTextParserSections(t *testing.T) {
	path := writeTemp(t, "notes.md", "# Cell Biology\n\nMitochondria produce ATP.\n\n## Energy\n\nThe gradient drives synthesis.")
	doc, err := Normalize(context.Background(), "doc-1", path)
	require.NoError(t, err)
	require.Equal(t, "doc-1", doc.DocumentID)
	require.Len(t, doc.Sections, 4)

	require.Equal(t, models.SectionHeading, doc.Sections[0].Type)
	require.Equal(t, 1, doc.Sections[0].Level)
	require.Equal(t, "Cell Biology", doc.Sections[0].Content)

	require.Equal(t, models.SectionParagraph, doc.Sections[1].Type)

	require.Equal(t, models.SectionHeading, doc.Sections[2].Type)
	require.Equal(t, 2, doc.Sections[2].Level)
	require.Equal(t, "Energy", doc.Sections[2].Content)

	// Reading order is preserved as a strictly increasing order index.
	for i, s := range doc.Sections {
		require.Equal(t, i, s.Position.Order)
	}
}

func TestTextParserEmptyFile(t *testing.T) {
	path := writeTemp(t, "empty.txt", "   \n\n  ")
	_, err := Normalize(context.Background(), "doc-2", path)
	require.ErrorIs(t, err, ErrNoExtractableText)
}

func TestFullText(t *testing.T) {
	doc := models.NormalizedDocument{Sections: []models.Section{
		{Content: "First."},
		{Content: ""},
		{Content: "Second."},
	}}
	require.Equal(t, "First.\n\nSecond.", FullText(doc))
}
