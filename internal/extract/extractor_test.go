package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tallyhq/tally/internal/common"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ledger.txt", "2024-01-01 Coffee -5.00\n\n2024-01-02 Salary 100.00\n")

	e := New(nil)
	doc, ok := e.File(context.Background(), path)
	require.True(t, ok)
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, "ledger.txt", doc.ID)
	assert.Equal(t, "2024-01-01 Coffee -5.00", doc.Lines[0].Text)
	assert.Equal(t, "2024-01-02 Salary 100.00", doc.Lines[1].Text)
}

func TestFileUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.docx", "not a statement")

	e := New(nil)
	_, ok := e.File(context.Background(), path)
	assert.False(t, ok)
}

func TestFileUnreadableYieldsEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	// A .pdf that is not actually a PDF must produce an empty document,
	// not an error.
	path := writeFile(t, dir, "broken.pdf", "plain text masquerading as pdf")

	e := New(nil)
	doc, ok := e.File(context.Background(), path)
	require.True(t, ok)
	assert.Empty(t, doc.Lines)
}

func TestUnreadableDocumentError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.pdf", "plain text masquerading as pdf")

	e := New(nil)
	_, err := e.pdfLines(path, "broken.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDocumentUnreadable)

	_, err = e.spreadsheetLines(writeFile(t, dir, "broken.xlsx", "not a workbook"), "broken.xlsx")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDocumentUnreadable)
}

func TestFileSpreadsheet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Date", "Description", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"2024-01-01", "Coffee", "-5.00"}))
	require.NoError(t, f.SaveAs(path))

	e := New(nil)
	doc, ok := e.File(context.Background(), path)
	require.True(t, ok)
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, "2024-01-01,Coffee,-5.00", doc.Lines[1].Text)
}

func TestFileSpreadsheetQuotesCommaCells(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"2024-01-01", "Coffee, large", "-5.00"}))
	require.NoError(t, f.SaveAs(path))

	e := New(nil)
	doc, ok := e.File(context.Background(), path)
	require.True(t, ok)
	require.Len(t, doc.Lines, 1)
	// The comma inside the cell must survive a CSV re-parse.
	assert.Equal(t, `2024-01-01,"Coffee, large",-5.00`, doc.Lines[0].Text)
}

func TestDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "2024-01-01 Coffee -5.00\n")
	writeFile(t, dir, "ignored.bin", "xx")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o750))

	e := New(nil)
	docs, err := e.Directory(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestDirectoryMissing(t *testing.T) {
	e := New(nil)
	_, err := e.Directory(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
