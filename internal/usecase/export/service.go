// Package export renders highlighted documents as PDF.
package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/kailas-cloud/smartdoc/internal/domain"
)

// DefaultFilename is used when the client does not name the download.
const DefaultFilename = "highlighted_document.pdf"

// DefaultMaxPages bounds the rendered document.
const DefaultMaxPages = 500

const (
	pageMargin = 15.0
	fontFamily = "Helvetica"
)

// Config tunes the PDF layout.
type Config struct {
	FontSize float64 // points
	Title    string
	MaxPages int
}

// Service renders the HTML produced by the highlighter (or the web client) to PDF,
// keeping highlight fills.
type Service struct {
	cfg    Config
	logger *zap.Logger
}

// New creates an export service.
func New(cfg Config, logger *zap.Logger) *Service {
	if cfg.FontSize <= 0 {
		cfg.FontSize = 12
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.Title == "" {
		cfg.Title = "Highlighted Document"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, logger: logger}
}

// SanitizeFilename keeps a client-supplied download name safe for a
// Content-Disposition header and makes sure it ends in .pdf.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == '"' || r == ';':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == ".pdf" {
		return DefaultFilename
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

// RenderPDF lays out htmlContent on A4 pages and returns the PDF bytes.
func (s *Service) RenderPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return nil, fmt.Errorf("%w: no highlighted html content provided", domain.ErrInvalidInput)
	}

	start := time.Now()
	runs, err := extractRuns(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExportFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(s.cfg.Title, true)
	doc.SetCreator("smartdoc", true)
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.SetCellMargin(0)
	doc.AddPage()
	doc.SetTextColor(31, 41, 55)

	if err := s.layout(doc, runs); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExportFailed, err)
	}

	s.logger.Debug("PDF rendered",
		zap.Int("runs", len(runs)),
		zap.Int("bytes", buf.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return buf.Bytes(), nil
}

// layout flows runs word by word, wrapping at the right margin. Highlighted words are
// drawn as filled cells. It stops with ErrInvalidInput once the page limit is passed.
func (s *Service) layout(doc *fpdf.Fpdf, runs []run) error {
	tr := doc.UnicodeTranslatorFromDescriptor("")
	lineH := s.cfg.FontSize * 0.3528 * 1.6 // pt to mm, relaxed leading
	pageW, _ := doc.GetPageSize()
	right := pageW - pageMargin

	for _, r := range runs {
		if doc.PageNo() > s.cfg.MaxPages {
			return fmt.Errorf("%w: document exceeds %d pages", domain.ErrInvalidInput, s.cfg.MaxPages)
		}
		if r.newline {
			doc.Ln(lineH)
			continue
		}
		style := ""
		if r.bold {
			style = "B"
		}
		doc.SetFont(fontFamily, style, s.cfg.FontSize)
		if r.fill != nil {
			doc.SetFillColor(r.fill.r, r.fill.g, r.fill.b)
		}

		for _, tok := range splitKeepSpaces(r.text) {
			txt := tr(tok)
			w := doc.GetStringWidth(txt)
			atLineStart := doc.GetX() <= pageMargin+0.01
			if tok == " " && atLineStart {
				continue
			}
			if !atLineStart && doc.GetX()+w > right {
				doc.Ln(lineH)
				if tok == " " {
					continue
				}
			}
			doc.CellFormat(w, lineH, txt, "", 0, "L", r.fill != nil, 0, "")
		}
	}
	if doc.PageNo() > s.cfg.MaxPages {
		return fmt.Errorf("%w: document exceeds %d pages", domain.ErrInvalidInput, s.cfg.MaxPages)
	}
	return nil
}

// splitKeepSpaces splits s into words and single-space separators.
// Runs of whitespace collapse to one space.
func splitKeepSpaces(s string) []string {
	var out []string
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	if len(fields) == 0 {
		if s != "" {
			return []string{" "}
		}
		return nil
	}
	if unicode.IsSpace(rune(s[0])) {
		out = append(out, " ")
	}
	for i, f := range fields {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, f)
	}
	if last := s[len(s)-1]; unicode.IsSpace(rune(last)) {
		out = append(out, " ")
	}
	return out
}
