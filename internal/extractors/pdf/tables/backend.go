// Package tables reads PDFs with a pure Go parser and detects tables from
// the horizontal layout of text rows.
package tables

import (
	"context"
	"fmt"
	"sort"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.PDFBackend = (*Backend)(nil)

// minTableRows is the number of consecutive multi-cell rows that form a table.
const minTableRows = 2

// Backend is the table-aware PDF backend.
type Backend struct{}

// New creates a table-aware backend.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "pdf-tables"
}

// Read extracts page text, metadata and tables. The parser panics on
// broken object references; those are returned as errors.
func (b *Backend) Read(ctx context.Context, path string) (
	pages []domain.Page, meta domain.PDFMetadata, tables []domain.Table, err error,
) {
	defer func() {
		if r := recover(); r != nil {
			pages, meta, tables = nil, domain.PDFMetadata{}, nil
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	f, r, err := lpdf.Open(path)
	if err != nil {
		return nil, domain.PDFMetadata{}, nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	meta = readMetadata(r)

	numPages := r.NumPage()
	pages = make([]domain.Page, 0, numPages)

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, meta, nil, err
		}

		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, domain.Page{PageNumber: i})
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, meta, nil, fmt.Errorf("read page %d: %w", i, err)
		}
		pages = append(pages, domain.Page{PageNumber: i, Text: text})

		rows, err := p.GetTextByRow()
		if err != nil {
			// Text is already captured; tables are optional.
			continue
		}
		tables = append(tables, DetectTables(i, convertRows(rows))...)
	}

	return pages, meta, tables, nil
}

// readMetadata reads the document information dictionary.
func readMetadata(r *lpdf.Reader) domain.PDFMetadata {
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return domain.PDFMetadata{}
	}
	return domain.PDFMetadata{
		Title:        info.Key("Title").Text(),
		Author:       info.Key("Author").Text(),
		Subject:      info.Key("Subject").Text(),
		Keywords:     info.Key("Keywords").Text(),
		Creator:      info.Key("Creator").Text(),
		Producer:     info.Key("Producer").Text(),
		CreationDate: info.Key("CreationDate").Text(),
	}
}

// Glyph is a positioned run of text on a row.
type Glyph struct {
	X        float64
	W        float64
	FontSize float64
	S        string
}

func convertRows(rows lpdf.Rows) [][]Glyph {
	out := make([][]Glyph, 0, len(rows))
	for _, row := range rows {
		glyphs := make([]Glyph, 0, len(row.Content))
		for _, t := range row.Content {
			glyphs = append(glyphs, Glyph{X: t.X, W: t.W, FontSize: t.FontSize, S: t.S})
		}
		out = append(out, glyphs)
	}
	return out
}

// SplitCells groups the glyphs of a row into cells. A horizontal gap wider
// than the font size starts a new cell.
func SplitCells(row []Glyph) []string {
	if len(row) == 0 {
		return nil
	}
	sorted := make([]Glyph, len(row))
	copy(sorted, row)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var cells []string
	var cur strings.Builder
	prevEnd := sorted[0].X
	for i, g := range sorted {
		gap := g.X - prevEnd
		threshold := g.FontSize
		if threshold <= 0 {
			threshold = 10
		}
		if i > 0 && gap > threshold {
			if cell := strings.TrimSpace(cur.String()); cell != "" {
				cells = append(cells, cell)
			}
			cur.Reset()
		}
		cur.WriteString(g.S)
		prevEnd = g.X + g.W
	}
	if cell := strings.TrimSpace(cur.String()); cell != "" {
		cells = append(cells, cell)
	}
	return cells
}

// DetectTables returns runs of at least two consecutive rows that split
// into two or more cells.
func DetectTables(page int, rows [][]Glyph) []domain.Table {
	var tables []domain.Table
	var run [][]string

	flush := func() {
		if len(run) >= minTableRows {
			tables = append(tables, domain.Table{Page: page, Data: run})
		}
		run = nil
	}

	for _, row := range rows {
		cells := SplitCells(row)
		if len(cells) >= 2 {
			run = append(run, cells)
			continue
		}
		flush()
	}
	flush()

	return tables
}
