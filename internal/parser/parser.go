// Package parser extracts plain text from uploaded documents.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/smartdoc/internal/domain"
)

// Format is a supported document format.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// FormatOf resolves the format from a file name's extension, case-insensitively.
func FormatOf(filename string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch Format(ext) {
	case FormatDOCX, FormatPDF:
		return Format(ext), nil
	}
	return "", fmt.Errorf("%w: .%s (only .docx and .pdf are supported)", domain.ErrUnsupportedFormat, ext)
}

// Parse extracts the text of a document, choosing the parser by file name.
func Parse(filename string, data []byte) (string, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return "", err
	}
	switch format {
	case FormatDOCX:
		return ParseDOCX(data)
	default:
		return ParsePDF(data)
	}
}
