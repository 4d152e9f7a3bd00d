// Package extract turns raw financial documents into sequences of text lines.
//
// The extractor never fails a run: unsupported document types yield no
// document, and documents that cannot be opened or decoded yield an empty
// line sequence plus a diagnostic. Page order is preserved; in-page line
// order follows whatever the underlying text-extraction facility emits.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/model"
)

// Document is one extracted input document. Lines carry the text content
// for the line-oriented statement parsers; Raw carries the original bytes
// for formats (OFX) whose parser needs the whole file.
type Document struct {
	ID    string
	Path  string
	Lines []model.RawLine
	Raw   []byte
}

// Text returns the document's full extracted text, lines joined by newlines.
// Parsers use it for content-marker checks.
func (d *Document) Text() string {
	var sb strings.Builder
	for i, line := range d.Lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line.Text)
	}
	return sb.String()
}

// Extractor dispatches files to the per-format text extraction routines.
type Extractor struct {
	logger *slog.Logger
}

// New creates an extractor. A nil logger falls back to the default.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Directory extracts every supported document under dir, in name order.
// A missing or unreadable directory is the one failure mode that propagates:
// the run must end before anything is written.
func (e *Extractor) Directory(ctx context.Context, dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", dir, err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		doc, ok := e.File(ctx, filepath.Join(dir, entry.Name()))
		if !ok {
			e.logger.Debug("skipping unsupported file", "file", entry.Name())
			continue
		}
		docs = append(docs, doc)
	}

	e.logger.Info("extracted input documents", "dir", dir, "documents", len(docs))
	return docs, nil
}

// File extracts a single document. The second return value is false for
// unsupported file types. Extraction failures are recorded as diagnostics
// and produce a document with no lines; they never abort the run.
func (e *Extractor) File(_ context.Context, path string) (Document, bool) {
	doc := Document{
		ID:   filepath.Base(path),
		Path: path,
	}

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		doc.Lines, err = e.pdfLines(path, doc.ID)
	case ".txt", ".csv":
		doc.Lines, err = e.textLines(path, doc.ID)
	case ".xlsx":
		doc.Lines, err = e.spreadsheetLines(path, doc.ID)
	case ".ofx", ".qfx":
		if doc.Raw, err = os.ReadFile(path); err != nil {
			err = fmt.Errorf("%w: %v", common.ErrDocumentUnreadable, err)
		}
	default:
		return Document{}, false
	}

	if err != nil {
		e.logger.Warn("document unreadable, skipping",
			"file", doc.ID,
			"error", err)
		doc.Lines = nil
		doc.Raw = nil
	}
	return doc, true
}
