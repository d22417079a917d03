package pdf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// sectionPatterns holds the heading pattern of each canonical section,
// in identification order.
var sectionPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{domain.SectionAbstract, regexp.MustCompile(`(?i)abstract`)},
	{domain.SectionIntroduction, regexp.MustCompile(`(?i)introduction`)},
	{domain.SectionMethodology, regexp.MustCompile(`(?i)(methodology|methods|materials)`)},
	{domain.SectionResults, regexp.MustCompile(`(?i)results`)},
	{domain.SectionDiscussion, regexp.MustCompile(`(?i)discussion`)},
	{domain.SectionConclusion, regexp.MustCompile(`(?i)conclusion`)},
	{domain.SectionReferences, regexp.MustCompile(`(?i)references`)},
}

// IdentifySections returns the byte offset of the first heading match of
// each canonical section. Sections without a match are omitted.
func IdentifySections(fullText string) domain.SectionMap {
	sections := make(domain.SectionMap)
	for _, sp := range sectionPatterns {
		if loc := sp.pattern.FindStringIndex(fullText); loc != nil {
			sections[sp.name] = loc[0]
		}
	}
	return sections
}

// ExtractSectionText returns the text from the start of the named section
// to the start of the nearest following section, or to the end of the text
// for the last section. Returns "" when the section is absent.
func ExtractSectionText(fullText string, sections domain.SectionMap, name string) string {
	start, ok := sections[name]
	if !ok || start < 0 || start > len(fullText) {
		return ""
	}

	end := len(fullText)
	for _, off := range sections {
		if off > start && off < end {
			end = off
		}
	}
	return fullText[start:end]
}

// SectionTexts returns the text of every detected section in offset order.
func SectionTexts(doc *domain.ExtractedDocument) []domain.SectionText {
	ordered := doc.Sections.Ordered()
	out := make([]domain.SectionText, 0, len(ordered))
	for _, s := range ordered {
		out = append(out, domain.SectionText{
			Name: s.Name,
			Text: ExtractSectionText(doc.FullText, doc.Sections, s.Name),
		})
	}
	return out
}

// pageMarker is the provenance header written before each page's text.
func pageMarker(pageNumber int) string {
	return fmt.Sprintf("\n\n[Page %d]\n", pageNumber)
}

// assembleFullText joins page texts behind page markers and returns the
// byte range each page occupies in the result.
func assembleFullText(pages []domain.Page) (string, []domain.PageRange) {
	var b strings.Builder
	ranges := make([]domain.PageRange, 0, len(pages))
	for _, p := range pages {
		start := b.Len()
		b.WriteString(pageMarker(p.PageNumber))
		b.WriteString(p.Text)
		ranges = append(ranges, domain.PageRange{
			Page:  p.PageNumber,
			Start: start,
			End:   b.Len() - 1,
		})
	}
	return b.String(), ranges
}

// PageMapping returns the inclusive byte range of each page in the full text.
func PageMapping(doc *domain.ExtractedDocument) []domain.PageRange {
	_, ranges := assembleFullText(doc.Pages)
	return ranges
}

// NewDocument builds an ExtractedDocument from backend output.
func NewDocument(pages []domain.Page, meta domain.PDFMetadata, tables []domain.Table) *domain.ExtractedDocument {
	fullText, _ := assembleFullText(pages)
	return &domain.ExtractedDocument{
		FullText: fullText,
		Pages:    pages,
		Metadata: meta,
		Sections: IdentifySections(fullText),
		Tables:   tables,
	}
}
