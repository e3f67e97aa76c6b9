package core

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofileup/gofileup/internal/model"
)

// Category mappings travel between stores as pipe-delimited lines:
// name|folder_id|folder_code. The folder code may be empty.

// ExportCategories writes mappings one per line.
func ExportCategories(w io.Writer, mappings []*model.CategoryMapping) error {
	for _, m := range mappings {
		if _, err := fmt.Fprintf(w, "%s|%s|%s\n", m.Name, m.FolderID, m.FolderCode); err != nil {
			return err
		}
	}
	return nil
}

// ParseCategoryLine parses one export line.
func ParseCategoryLine(line string) (*model.CategoryMapping, error) {
	parts := strings.Split(line, "|")
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected name|folder_id|folder_code, got %d field(s)", len(parts))
	}
	name := strings.TrimSpace(parts[0])
	folderID := strings.TrimSpace(parts[1])
	if name == "" || folderID == "" {
		return nil, fmt.Errorf("name and folder_id must not be empty")
	}
	return &model.CategoryMapping{
		Name:       name,
		FolderID:   folderID,
		FolderCode: strings.TrimSpace(parts[2]),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// ImportCategories reads an export stream, skipping blank lines.
// A malformed line aborts the parse with its line number.
func ImportCategories(r io.Reader) ([]*model.CategoryMapping, error) {
	var mappings []*model.CategoryMapping
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		m, err := ParseCategoryLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		mappings = append(mappings, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return mappings, nil
}
