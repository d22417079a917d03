package domain

import "sort"

// Canonical section names, in identification order.
const (
	SectionAbstract     = "abstract"
	SectionIntroduction = "introduction"
	SectionMethodology  = "methodology"
	SectionResults      = "results"
	SectionDiscussion   = "discussion"
	SectionConclusion   = "conclusion"
	SectionReferences   = "references"

	// SectionOther labels chunks that carry no section.
	SectionOther = "other"
)

// CanonicalSections returns the section names in identification order.
func CanonicalSections() []string {
	return []string{
		SectionAbstract,
		SectionIntroduction,
		SectionMethodology,
		SectionResults,
		SectionDiscussion,
		SectionConclusion,
		SectionReferences,
	}
}

// IsChunkType returns true if name is a canonical section or "other".
func IsChunkType(name string) bool {
	if name == SectionOther {
		return true
	}
	for _, s := range CanonicalSections() {
		if s == name {
			return true
		}
	}
	return false
}

// ExtractedDocument is the result of reading a PDF.
// It is immutable once produced by an extractor.
type ExtractedDocument struct {
	// FullText is the concatenated text of every page, each page
	// prefixed with a "[Page N]" marker.
	FullText string

	// Pages holds the text of each page in order.
	Pages []Page

	// Metadata holds the PDF info dictionary.
	Metadata PDFMetadata

	// Sections maps canonical section names to byte offsets in FullText.
	Sections SectionMap

	// Tables holds detected tables. Only filled by table-aware extraction.
	Tables []Table
}

// NumPages returns the number of extracted pages.
func (d *ExtractedDocument) NumPages() int {
	return len(d.Pages)
}

// Page is the text of a single PDF page.
type Page struct {
	// PageNumber is 1-based.
	PageNumber int

	Text string
}

// PDFMetadata holds the optional document information fields.
type PDFMetadata struct {
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Keywords     string `json:"keywords,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreationDate string `json:"creation_date,omitempty"`
}

// Table is a grid of cells detected on a page.
type Table struct {
	Page int        `json:"page"`
	Data [][]string `json:"data"`
}

// SectionMap maps section name to start offset.
// Sections that were not found are absent, never zero-filled.
type SectionMap map[string]int

// SectionOffset is one entry of a SectionMap.
type SectionOffset struct {
	Name   string
	Offset int
}

// Ordered returns the sections sorted by offset.
func (m SectionMap) Ordered() []SectionOffset {
	out := make([]SectionOffset, 0, len(m))
	for name, off := range m {
		out = append(out, SectionOffset{Name: name, Offset: off})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Offset == out[j].Offset {
			return out[i].Name < out[j].Name
		}
		return out[i].Offset < out[j].Offset
	})
	return out
}

// SectionText is the text of one named section.
type SectionText struct {
	Name string
	Text string
}

// PageRange maps an inclusive range of byte offsets to a page number.
type PageRange struct {
	Page  int
	Start int
	End   int
}

// Contains reports whether offset lies within the range, ends included.
func (r PageRange) Contains(offset int) bool {
	return offset >= r.Start && offset <= r.End
}
