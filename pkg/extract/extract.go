// Package extract pulls plain text out of uploaded knowledge-base documents
// so it can be embedded by the remote embed-document function. Extraction is
// format-specific and runs entirely locally; unsupported types are rejected
// before any network call.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Result is the extracted plain text plus basic stats.
type Result struct {
	Text      string `json:"text"`
	WordCount int    `json:"wordCount"`
	Format    string `json:"format"`
	Pages     int    `json:"pages,omitempty"` // PDF only
}

// supported maps a lowercased file extension to its extractor.
var supported = map[string]func(data []byte) (*Result, error){
	".pdf":  fromPDF,
	".docx": fromDOCX,
	".txt":  fromPlainText,
	".md":   fromPlainText,
	".csv":  fromCSV,
	".xlsx": fromXLSX,
}

// IsSupported reports whether the filename's extension has an extractor.
func IsSupported(filename string) bool {
	_, ok := supported[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// SupportedExtensions lists the accepted upload extensions for UI messages.
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".txt", ".md", ".csv", ".xlsx"}
}

// FromFile extracts plain text from a document, dispatching on extension.
// Word count is the whitespace-delimited token count of the extracted text.
func FromFile(filename string, data []byte) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	extractor, ok := supported[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}

	result, err := extractor(data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", filename, err)
	}

	result.Format = strings.TrimPrefix(ext, ".")
	result.WordCount = len(strings.Fields(result.Text))
	return result, nil
}

func fromPlainText(data []byte) (*Result, error) {
	return &Result{Text: string(data)}, nil
}

// fromPDF concatenates the plain text of every page. Pages that fail to
// decode are skipped rather than failing the whole document.
func fromPDF(data []byte) (*Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %v", err)
	}

	totalPages := reader.NumPage()
	var sb strings.Builder
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return &Result{Text: sb.String(), Pages: totalPages}, nil
}
