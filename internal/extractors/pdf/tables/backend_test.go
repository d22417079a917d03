package tables

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// word lays out a string as one glyph per character at 6pt advance.
func word(x float64, s string) []Glyph {
	glyphs := make([]Glyph, 0, len(s))
	for i, r := range s {
		glyphs = append(glyphs, Glyph{X: x + float64(i)*6, W: 6, FontSize: 10, S: string(r)})
	}
	return glyphs
}

func row(words ...[]Glyph) []Glyph {
	var out []Glyph
	for _, w := range words {
		out = append(out, w...)
	}
	return out
}

func TestSplitCells(t *testing.T) {
	r := row(word(10, "Model"), word(120, "F1"), word(200, "0.91"))

	assert.Equal(t, []string{"Model", "F1", "0.91"}, SplitCells(r))
}

func TestSplitCells_NarrowGapStaysInCell(t *testing.T) {
	// 4pt gap is below the 10pt font size.
	r := row(word(10, "deep"), word(38, "learning"))

	assert.Equal(t, []string{"deeplearning"}, SplitCells(r))
}

func TestSplitCells_Empty(t *testing.T) {
	assert.Nil(t, SplitCells(nil))
}

func TestDetectTables(t *testing.T) {
	rows := [][]Glyph{
		row(word(10, "Results are shown below")),
		row(word(10, "Model"), word(120, "Acc")),
		row(word(10, "BERT"), word(120, "0.91")),
		row(word(10, "GPT"), word(120, "0.88")),
		row(word(10, "Discussion follows")),
		row(word(10, "lonely"), word(120, "row")),
	}

	tables := DetectTables(3, rows)

	require.Len(t, tables, 1)
	assert.Equal(t, 3, tables[0].Page)
	assert.Equal(t, [][]string{
		{"Model", "Acc"},
		{"BERT", "0.91"},
		{"GPT", "0.88"},
	}, tables[0].Data)
}

func TestRead_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o600))

	_, _, _, err := New().Read(context.Background(), path)
	assert.Error(t, err)
}

// misnumberedPDF writes a PDF whose xref entry for object 2 holds the
// offset of object 1.
func misnumberedPDF(t *testing.T) string {
	t.Helper()

	header := "%PDF-1.4\n"
	catalog := "1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n"
	pageTree := "2 0 obj\n<< /Type /Pages /Kids [] /Count 1 >>\nendobj\n"
	body := header + catalog + pageTree

	catalogAt := len(header)
	xref := fmt.Sprintf("xref\n0 3\n%010d 65535 f \n%010d 00000 n \n%010d 00000 n \n", 0, catalogAt, catalogAt)
	trailer := fmt.Sprintf("trailer\n<< /Size 3 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(body))

	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte(body+xref+trailer), 0o600))
	return path
}

func TestRead_BrokenObjectReference(t *testing.T) {
	path := misnumberedPDF(t)

	var (
		pages []domain.Page
		err   error
	)
	require.NotPanics(t, func() {
		pages, _, _, err = New().Read(context.Background(), path)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read pdf")
	assert.Nil(t, pages)
}

func TestName(t *testing.T) {
	assert.Equal(t, "pdf-tables", New().Name())
}
