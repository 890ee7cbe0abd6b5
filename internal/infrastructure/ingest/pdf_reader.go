package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// ManuscriptReader extracts plain text from uploaded manuscript files so
// the text can seed a draft body. PDF pages go through mupdf; plain text
// files are read as-is.
type ManuscriptReader struct {
	logger *zap.Logger
}

// NewManuscriptReader creates a new manuscript reader
func NewManuscriptReader(logger *zap.Logger) *ManuscriptReader {
	return &ManuscriptReader{logger: logger}
}

// ExtractText extracts the text content of a manuscript file
func (r *ManuscriptReader) ExtractText(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("manuscript file not found: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return r.extractPDF(path)
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read manuscript: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

// extractPDF pulls the text of every page and joins them with blank lines
func (r *ManuscriptReader) extractPDF(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	r.logger.Debug("Processing PDF", zap.String("path", path), zap.Int("total_pages", pageCount))

	var pages []string
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		text, err := doc.Text(pageNum)
		if err != nil {
			r.logger.Warn("Failed to extract page text",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			pages = append(pages, trimmed)
		}
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("no text extracted from PDF: %s", path)
	}

	r.logger.Info("Extracted manuscript text",
		zap.String("path", path),
		zap.Int("pages", len(pages)))

	return strings.Join(pages, "\n\n"), nil
}
