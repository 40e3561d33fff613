package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"studyforge/internal/models"
	"studyforge/internal/util"
)

// TextParser handles plain text and markdown uploads. Blank lines delimit
// paragraphs; markdown-style hash prefixes and short standalone lines become
// heading sections.
type TextParser struct{}

func (p *TextParser) Parse(ctx context.Context, path string) ([]models.Section, map[string]string, error) {
	_ = ctx
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read text file: %w", err)
	}
	text := util.SanitizeText(string(raw))
	if text == "" {
		return nil, nil, ErrNoExtractableText
	}

	sections := make([]models.Section, 0, 32)
	order := 0
	for _, block := range splitParagraphs(text) {
		sec := models.Section{
			Type:     models.SectionParagraph,
			Content:  block,
			Position: models.Position{Page: 1, Order: order},
		}
		if level, content, ok := markdownHeading(block); ok {
			sec.Type = models.SectionHeading
			sec.Level = level
			sec.Content = content
		} else if looksLikeHeading(block, order == 0) {
			sec.Type = models.SectionHeading
			sec.Level = 1
		}
		sections = append(sections, sec)
		order++
	}
	meta := map[string]string{"format": "text"}
	return sections, meta, nil
}

func markdownHeading(block string) (int, string, bool) {
	if strings.Contains(block, "\n") || !strings.HasPrefix(block, "#") {
		return 0, "", false
	}
	level := 0
	for level < len(block) && block[level] == '#' {
		level++
	}
	if level > 6 {
		return 0, "", false
	}
	content := strings.TrimSpace(block[level:])
	if content == "" {
		return 0, "", false
	}
	return level, content, true
}
