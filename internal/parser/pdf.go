package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"studyforge/internal/models"
	"studyforge/internal/util"
)

// PDFParser extracts text per page and splits each page into paragraph
// sections. Pages with no extractable text are skipped rather than failing
// the whole document.
type PDFParser struct{}

func (p *PDFParser) Parse(ctx context.Context, path string) ([]models.Section, map[string]string, error) {
	_ = ctx
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	sections := make([]models.Section, 0, 64)
	order := 0
	pageCount := r.NumPage()
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = util.SanitizeText(text)
		if text == "" {
			continue
		}
		for _, para := range splitParagraphs(text) {
			sec := models.Section{
				Type:     models.SectionParagraph,
				Content:  para,
				Position: models.Position{Page: pageNum, Order: order},
			}
			if looksLikeHeading(para, order == 0) {
				sec.Type = models.SectionHeading
				sec.Level = 1
			}
			sections = append(sections, sec)
			order++
		}
	}
	if len(sections) == 0 {
		return nil, nil, ErrNoExtractableText
	}
	meta := map[string]string{
		"format": "pdf",
		"pages":  fmt.Sprintf("%d", pageCount),
	}
	return sections, meta, nil
}

func splitParagraphs(text string) []string {
	blocks := strings.Split(text, "\n\n")
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		b = strings.TrimSpace(b)
		if b != "" {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		t := strings.TrimSpace(text)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Short single-line blocks without a trailing period read as headings.
func looksLikeHeading(block string, first bool) bool {
	if strings.Contains(block, "\n") {
		return false
	}
	b := strings.TrimSpace(block)
	if len(b) == 0 || len(b) >= 100 {
		return false
	}
	if strings.HasSuffix(b, ".") {
		return false
	}
	if first {
		return true
	}
	return len(strings.Fields(b)) <= 8
}
