package pdf

import (
	"regexp"
	"strconv"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure Layout implements the interface.
var _ driven.DocumentLayout = Layout{}

// pageMarkerPattern matches the header written by pageMarker.
var pageMarkerPattern = regexp.MustCompile(`\n\n\[Page (\d+)\]\n`)

// Layout exposes the section and page helpers as a driven.DocumentLayout.
type Layout struct{}

// SectionTexts returns the text of every detected section in offset order.
func (Layout) SectionTexts(doc *domain.ExtractedDocument) []domain.SectionText {
	return SectionTexts(doc)
}

// PageMapping returns the inclusive byte range of each page in the full text.
func (Layout) PageMapping(doc *domain.ExtractedDocument) []domain.PageRange {
	return PageMapping(doc)
}

// FromFullText splits full text on its page markers and rebuilds the
// document. Text without markers becomes a single page 1.
func (Layout) FromFullText(fullText string) *domain.ExtractedDocument {
	return NewDocument(ParsePages(fullText), domain.PDFMetadata{}, nil)
}

// ParsePages recovers the pages of text produced by assembleFullText.
func ParsePages(fullText string) []domain.Page {
	locs := pageMarkerPattern.FindAllStringSubmatchIndex(fullText, -1)
	if len(locs) == 0 {
		if fullText == "" {
			return nil
		}
		return []domain.Page{{PageNumber: 1, Text: fullText}}
	}

	pages := make([]domain.Page, 0, len(locs))
	for i, loc := range locs {
		num, err := strconv.Atoi(fullText[loc[2]:loc[3]])
		if err != nil {
			num = i + 1
		}
		end := len(fullText)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		pages = append(pages, domain.Page{PageNumber: num, Text: fullText[loc[1]:end]})
	}
	return pages
}
