package extract

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/model"
)

// textLines reads a plain-text or delimited-text document line by line.
func (e *Extractor) textLines(path, docID string) ([]model.RawLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open text document: %v", common.ErrDocumentUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	var lines []model.RawLine
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	index := 0
	for scanner.Scan() {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			index++
			continue
		}
		lines = append(lines, model.RawLine{
			DocID: docID,
			Page:  1,
			Index: index,
			Text:  text,
		})
		index++
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read text document: %w", err)
	}
	return lines, nil
}
